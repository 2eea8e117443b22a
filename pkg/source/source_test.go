package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/preprintlabs/listings/pkg/article"
	"github.com/preprintlabs/listings/pkg/seq"
)

// slicePages serves a fixed slice page by page and counts fetches.
type slicePages struct {
	items   []article.Mention
	fetches int
	err     error
}

func (s *slicePages) FetchPage(ctx context.Context, pageNum, pageSize int) ([]article.Mention, error) {
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	start := (pageNum - 1) * pageSize
	if start >= len(s.items) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(s.items) {
		end = len(s.items)
	}
	return s.items[start:end], nil
}

func mentions(n int) []article.Mention {
	items := make([]article.Mention, n)
	for i := range items {
		items[i] = article.Mention{DOI: fmt.Sprintf("10.1101/%04d", i+1)}
	}
	return items
}

func TestPaged_YieldsAllInOrder(t *testing.T) {
	upstream := &slicePages{items: mentions(7)}
	s := Paged("test", upstream, 3)

	collected, err := seq.Collect(context.Background(), s)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if len(collected) != 7 {
		t.Fatalf("Collected %d items, want 7", len(collected))
	}
	for i, m := range collected {
		want := fmt.Sprintf("10.1101/%04d", i+1)
		if m.DOI != want {
			t.Errorf("item %d = %q, want %q", i, m.DOI, want)
		}
	}
	// Pages of 3: [1-3], [4-6], [7] (short page ends the sequence)
	if upstream.fetches != 3 {
		t.Errorf("fetches = %d, want 3", upstream.fetches)
	}
}

func TestPaged_LazyFetch(t *testing.T) {
	upstream := &slicePages{items: mentions(9)}
	s := Paged("test", upstream, 3)
	ctx := context.Background()

	// Pulling the first three items needs exactly one page
	for i := 0; i < 3; i++ {
		if _, ok, err := s.Next(ctx); err != nil || !ok {
			t.Fatalf("Next() = ok=%v err=%v", ok, err)
		}
	}
	if upstream.fetches != 1 {
		t.Errorf("fetches = %d after first page, want 1", upstream.fetches)
	}

	// The fourth item triggers the second page
	if _, ok, err := s.Next(ctx); err != nil || !ok {
		t.Fatalf("Next() = ok=%v err=%v", ok, err)
	}
	if upstream.fetches != 2 {
		t.Errorf("fetches = %d after fourth item, want 2", upstream.fetches)
	}
}

func TestPaged_IdempotentAtEnd(t *testing.T) {
	upstream := &slicePages{items: mentions(2)}
	s := Paged("test", upstream, 3)
	ctx := context.Background()

	if _, err := seq.Collect(ctx, s); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	fetchesAtEnd := upstream.fetches

	// Further pulls return no items without fetching
	for i := 0; i < 3; i++ {
		_, ok, err := s.Next(ctx)
		if err != nil {
			t.Fatalf("Next() after end error = %v", err)
		}
		if ok {
			t.Fatal("Next() after end should not yield items")
		}
	}
	if upstream.fetches != fetchesAtEnd {
		t.Errorf("fetches = %d after end, want %d", upstream.fetches, fetchesAtEnd)
	}
}

func TestPaged_EmptyUpstream(t *testing.T) {
	upstream := &slicePages{}
	s := Paged("test", upstream, 10)

	collected, err := seq.Collect(context.Background(), s)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(collected) != 0 {
		t.Errorf("Collected %d items, want 0", len(collected))
	}
	if upstream.fetches != 1 {
		t.Errorf("fetches = %d, want 1", upstream.fetches)
	}
}

func TestPaged_FetchErrorPropagates(t *testing.T) {
	upstreamErr := errors.New("upstream down")
	upstream := &slicePages{err: upstreamErr}
	s := Paged("test", upstream, 10)

	_, ok, err := s.Next(context.Background())
	if ok {
		t.Error("Next() should not yield on error")
	}
	if !errors.Is(err, upstreamErr) {
		t.Errorf("Next() error = %v, want wrapped upstream error", err)
	}
}

func TestPaged_ContextCancelled(t *testing.T) {
	upstream := &slicePages{items: mentions(5)}
	s := Paged("test", upstream, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := s.Next(ctx)
	if ok {
		t.Error("Next() should not yield after cancel")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}

func TestPageFetcherFunc(t *testing.T) {
	var called bool
	f := PageFetcherFunc(func(ctx context.Context, pageNum, pageSize int) ([]article.Mention, error) {
		called = true
		return nil, nil
	})

	if _, err := f.FetchPage(context.Background(), 1, 10); err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if !called {
		t.Error("adapter should call the wrapped function")
	}
}

func TestFromSlice(t *testing.T) {
	items := mentions(3)
	collected, err := seq.Collect(context.Background(), FromSlice(items))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(collected) != 3 {
		t.Errorf("Collected %d items, want 3", len(collected))
	}
}
