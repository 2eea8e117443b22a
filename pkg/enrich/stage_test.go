package enrich

import (
	"context"
	"testing"

	"github.com/preprintlabs/listings/pkg/article"
	"github.com/preprintlabs/listings/pkg/seq"
)

func TestStatsStage_PreservesLengthAndOrder(t *testing.T) {
	stage := NewStatsStage(fakeStats{"10.1101/0002": 5})
	input := mentions(4)

	items, err := seq.Collect(context.Background(), stage.Enrich(seq.FromSlice(input)))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(items) != len(input) {
		t.Fatalf("stage returned %d items, want %d", len(items), len(input))
	}
	for i := range input {
		if items[i].DOI != input[i].DOI {
			t.Errorf("item %d DOI = %q, want %q", i, items[i].DOI, input[i].DOI)
		}
		if items[i].Stats == nil {
			t.Errorf("item %d stats slot not populated", i)
		}
	}
	if items[1].Stats.EvaluationCount != 5 {
		t.Errorf("item 1 evaluation count = %d, want 5", items[1].Stats.EvaluationCount)
	}
	if items[0].Stats.EvaluationCount != 0 {
		t.Errorf("item 0 evaluation count = %d, want 0 for unknown DOI", items[0].Stats.EvaluationCount)
	}
}

func TestMetadataStage_DeduplicatesDOIs(t *testing.T) {
	provider := &fakeMetadataProvider{metaByDOI: map[string]article.Metadata{
		"10.1101/0001": {DOI: "10.1101/0001", Title: "shared"},
	}}
	stage := NewMetadataStage(provider)

	input := []article.Mention{
		{DOI: "10.1101/0001"},
		{DOI: "10.1101/0001"},
	}
	items, err := seq.Collect(context.Background(), stage.Enrich(seq.FromSlice(input)))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("stage returned %d items, want 2 (duplicates are kept)", len(items))
	}
	for i, m := range items {
		if m.Meta == nil || m.Meta.Title != "shared" {
			t.Errorf("item %d meta = %+v, want shared title", i, m.Meta)
		}
	}
	if got := len(provider.requestedDOIs[0]); got != 1 {
		t.Errorf("provider asked for %d DOIs, want 1 after dedup", got)
	}
}

func TestMetadataStage_IsLazyUntilPulled(t *testing.T) {
	provider := &fakeMetadataProvider{}
	stage := NewMetadataStage(provider)

	_ = stage.Enrich(seq.FromSlice(mentions(3)))
	if provider.calls != 0 {
		t.Errorf("provider called %d times before first pull, want 0", provider.calls)
	}
}

func TestImageStage_MissKeepsSlotEmpty(t *testing.T) {
	stage := NewImageStage(fakeImages{"10.1101/0001": "https://images.example/1.png"})

	items, err := seq.Collect(context.Background(), stage.Enrich(seq.FromSlice(mentions(2))))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if items[0].Images == nil || items[0].Images.URL != "https://images.example/1.png" {
		t.Errorf("item 0 image = %+v, want mapped url", items[0].Images)
	}
	if items[1].Images != nil {
		t.Errorf("item 1 image = %+v, want empty slot", items[1].Images)
	}
}
