package seq

import "context"

type windowSeq[T any] struct {
	src     Seq[T]
	skip    int
	limit   int
	skipped bool
	yielded int
}

// Window returns the sub-sequence of src corresponding to one page.
// itemsPerPage == 0 disables windowing: src is returned unchanged and page
// is ignored. Otherwise the first (page-1)*itemsPerPage items are skipped
// lazily on the first pull (page < 1 is clamped to 1) and at most
// itemsPerPage further items are yielded. Skipped items are pulled from
// src and discarded; nothing beyond the window is ever requested, so
// Window must be applied before any expensive per-item stage.
func Window[T any](src Seq[T], page, itemsPerPage int) Seq[T] {
	if itemsPerPage <= 0 {
		return src
	}
	if page < 1 {
		page = 1
	}
	return &windowSeq[T]{
		src:   src,
		skip:  (page - 1) * itemsPerPage,
		limit: itemsPerPage,
	}
}

func (w *windowSeq[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if !w.skipped {
		w.skipped = true
		for i := 0; i < w.skip; i++ {
			if err := ctx.Err(); err != nil {
				return zero, false, err
			}
			_, ok, err := w.src.Next(ctx)
			if err != nil {
				return zero, false, err
			}
			if !ok {
				w.yielded = w.limit
				return zero, false, nil
			}
		}
	}
	if w.yielded >= w.limit {
		return zero, false, nil
	}
	item, ok, err := w.src.Next(ctx)
	if err != nil || !ok {
		w.yielded = w.limit
		return zero, false, err
	}
	w.yielded++
	return item, true, nil
}
