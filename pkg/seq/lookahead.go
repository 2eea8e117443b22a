package seq

import "context"

// Peeked is the result of looking one item ahead.
type Peeked[T any] struct {
	Item T
	OK   bool
}

type bufferedSeq[T any] struct {
	head    T
	hasHead bool
	tail    Seq[T]
}

func (b *bufferedSeq[T]) Next(ctx context.Context) (T, bool, error) {
	if b.hasHead {
		item := b.head
		b.hasHead = false
		var zero T
		b.head = zero
		return item, true, nil
	}
	return b.tail.Next(ctx)
}

// Lookahead pulls at most one item from s and returns it together with a
// sequence yielding exactly the items of s in order, the peeked item first.
// The producer of the peeked item is not re-invoked when the returned
// sequence is consumed. Callers must consume the returned sequence instead
// of s; pulling from both would drop the buffered item.
func Lookahead[T any](ctx context.Context, s Seq[T]) (Peeked[T], Seq[T], error) {
	item, ok, err := s.Next(ctx)
	if err != nil {
		return Peeked[T]{}, nil, err
	}
	if !ok {
		return Peeked[T]{}, s, nil
	}
	return Peeked[T]{Item: item, OK: true}, &bufferedSeq[T]{head: item, hasHead: true, tail: s}, nil
}
