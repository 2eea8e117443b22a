package seq

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// countingSeq yields n sequential ints and records how many items were
// pulled from it.
type countingSeq struct {
	n     int
	pulls int
}

func (c *countingSeq) Next(ctx context.Context) (int, bool, error) {
	if c.pulls >= c.n {
		return 0, false, nil
	}
	c.pulls++
	return c.pulls, true, nil
}

func TestFromSlice_YieldsInOrder(t *testing.T) {
	s := FromSlice([]string{"a", "b", "c"})

	items, err := Collect(context.Background(), s)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(items) != 3 || items[0] != "a" || items[1] != "b" || items[2] != "c" {
		t.Errorf("Collect() = %v, want [a b c]", items)
	}
}

func TestFromSlice_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := FromSlice([]int{1, 2, 3})
	_, _, err := s.Next(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}

func TestMap_PreservesLengthAndOrder(t *testing.T) {
	src := FromSlice([]int{1, 2, 3, 4})
	mapped := Map(src, func(v int) int { return v * 10 })

	items, err := Collect(context.Background(), mapped)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	want := []int{10, 20, 30, 40}
	if len(items) != len(want) {
		t.Fatalf("Collect() returned %d items, want %d", len(items), len(want))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %d, want %d", i, items[i], want[i])
		}
	}
}

func TestMap_IsLazy(t *testing.T) {
	src := &countingSeq{n: 100}
	calls := 0
	mapped := Map[int, int](src, func(v int) int {
		calls++
		return v
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, ok, err := mapped.Next(ctx); !ok || err != nil {
			t.Fatalf("Next() = ok=%v err=%v", ok, err)
		}
	}

	if calls != 3 {
		t.Errorf("map fn called %d times, want 3", calls)
	}
	if src.pulls != 3 {
		t.Errorf("upstream pulled %d times, want 3", src.pulls)
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name         string
		total        int
		page         int
		itemsPerPage int
		want         []int
	}{
		{
			name:         "page 2 of 7 items with 3 per page",
			total:        7,
			page:         2,
			itemsPerPage: 3,
			want:         []int{4, 5, 6},
		},
		{
			name:         "2 items fit on first page of 5",
			total:        2,
			page:         1,
			itemsPerPage: 5,
			want:         []int{1, 2},
		},
		{
			name:         "last partial page",
			total:        7,
			page:         3,
			itemsPerPage: 3,
			want:         []int{7},
		},
		{
			name:         "page beyond end",
			total:        4,
			page:         5,
			itemsPerPage: 3,
			want:         nil,
		},
		{
			name:         "page clamped to 1",
			total:        3,
			page:         0,
			itemsPerPage: 2,
			want:         []int{1, 2},
		},
		{
			name:         "empty sequence",
			total:        0,
			page:         1,
			itemsPerPage: 3,
			want:         nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingSeq{n: tt.total}
			items, err := Collect(context.Background(), Window[int](src, tt.page, tt.itemsPerPage))
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			if fmt.Sprint(items) != fmt.Sprint(tt.want) {
				t.Errorf("Window() = %v, want %v", items, tt.want)
			}
		})
	}
}

func TestWindow_NoLimitReturnsEverything(t *testing.T) {
	src := FromSlice([]int{1, 2, 3})
	items, err := Collect(context.Background(), Window(src, 7, 0))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(items) != 3 {
		t.Errorf("Window() with no limit returned %d items, want 3", len(items))
	}
}

func TestWindow_SkipIsCheap(t *testing.T) {
	// Skipped items must only cost a pull from the upstream; an expensive
	// stage applied after the window must never see them.
	src := &countingSeq{n: 100}
	windowed := Window[int](src, 2, 3)
	expensive := Map(windowed, func(v int) int {
		if v <= 3 {
			t.Errorf("expensive stage saw skipped item %d", v)
		}
		return v
	})

	items, err := Collect(context.Background(), expensive)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Collect() returned %d items, want 3", len(items))
	}
	// offset (3) + page (3), nothing more.
	if src.pulls != 6 {
		t.Errorf("upstream pulled %d times, want 6", src.pulls)
	}
}

func TestWindow_UpstreamErrorPropagates(t *testing.T) {
	wantErr := errors.New("upstream failed")
	src := Func[int](func(ctx context.Context) (int, bool, error) {
		return 0, false, wantErr
	})

	_, err := Collect(context.Background(), Window[int](src, 2, 3))
	if !errors.Is(err, wantErr) {
		t.Errorf("Collect() error = %v, want %v", err, wantErr)
	}
}

func TestLookahead(t *testing.T) {
	ctx := context.Background()

	t.Run("peek then consume everything", func(t *testing.T) {
		src := &countingSeq{n: 3}

		peeked, rest, err := Lookahead[int](ctx, src)
		if err != nil {
			t.Fatalf("Lookahead() error = %v", err)
		}
		if !peeked.OK || peeked.Item != 1 {
			t.Errorf("Lookahead() peeked = %+v, want item 1", peeked)
		}

		items, err := Collect(ctx, rest)
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		if fmt.Sprint(items) != "[1 2 3]" {
			t.Errorf("Collect() = %v, want [1 2 3]", items)
		}
		// The peeked item must not have been produced twice.
		if src.pulls != 3 {
			t.Errorf("upstream pulled %d times, want 3", src.pulls)
		}
	})

	t.Run("empty sequence", func(t *testing.T) {
		peeked, rest, err := Lookahead[int](ctx, FromSlice[int](nil))
		if err != nil {
			t.Fatalf("Lookahead() error = %v", err)
		}
		if peeked.OK {
			t.Errorf("Lookahead() peeked = %+v, want absent", peeked)
		}
		items, err := Collect(ctx, rest)
		if err != nil || len(items) != 0 {
			t.Errorf("Collect() = %v, %v, want empty", items, err)
		}
	})

	t.Run("error propagates", func(t *testing.T) {
		wantErr := errors.New("boom")
		src := Func[int](func(ctx context.Context) (int, bool, error) {
			return 0, false, wantErr
		})
		_, _, err := Lookahead[int](ctx, src)
		if !errors.Is(err, wantErr) {
			t.Errorf("Lookahead() error = %v, want %v", err, wantErr)
		}
	})
}
