// Package seq provides lazy pull-based sequences for the enrichment
// pipeline: mapping, page windowing, and single-item lookahead. Sequences
// are consumed item by item so upstream providers are never asked for more
// than the consumer actually needs.
package seq

import "context"

// Seq is a lazy sequence of items. Next returns the next item and true, or
// a zero item and false once the sequence is exhausted. A non-nil error
// terminates the sequence; callers must not call Next again after an error.
type Seq[T any] interface {
	Next(ctx context.Context) (T, bool, error)
}

// Func adapts a function to a Seq.
type Func[T any] func(ctx context.Context) (T, bool, error)

// Next implements Seq.
func (f Func[T]) Next(ctx context.Context) (T, bool, error) {
	return f(ctx)
}

type sliceSeq[T any] struct {
	items []T
	pos   int
}

// FromSlice returns a Seq yielding the items of a slice in order.
func FromSlice[T any](items []T) Seq[T] {
	return &sliceSeq[T]{items: items}
}

func (s *sliceSeq[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if s.pos >= len(s.items) {
		return zero, false, nil
	}
	item := s.items[s.pos]
	s.pos++
	return item, true, nil
}

type mapSeq[T, U any] struct {
	src Seq[T]
	fn  func(T) U
}

// Map returns a Seq applying fn to each item of src, lazily. Items are
// transformed one at a time as the consumer pulls them; length and order
// are preserved.
func Map[T, U any](src Seq[T], fn func(T) U) Seq[U] {
	return &mapSeq[T, U]{src: src, fn: fn}
}

func (m *mapSeq[T, U]) Next(ctx context.Context) (U, bool, error) {
	var zero U
	item, ok, err := m.src.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	return m.fn(item), true, nil
}

// Counted wraps a sequence and counts the items pulled through it.
type Counted[T any] struct {
	src   Seq[T]
	count int
}

// NewCounted wraps src in a counting sequence.
func NewCounted[T any](src Seq[T]) *Counted[T] {
	return &Counted[T]{src: src}
}

// Next implements Seq.
func (c *Counted[T]) Next(ctx context.Context) (T, bool, error) {
	item, ok, err := c.src.Next(ctx)
	if ok {
		c.count++
	}
	return item, ok, err
}

// Count returns the number of items yielded so far.
func (c *Counted[T]) Count() int {
	return c.count
}

// Collect materializes the whole remaining sequence into a slice.
// Only safe for bounded sequences (e.g. a windowed page).
func Collect[T any](ctx context.Context, s Seq[T]) ([]T, error) {
	var items []T
	for {
		item, ok, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return items, nil
		}
		items = append(items, item)
	}
}
