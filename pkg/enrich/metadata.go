package enrich

import (
	"context"

	"github.com/preprintlabs/listings/pkg/article"
	"github.com/preprintlabs/listings/pkg/seq"
)

// MetadataProvider looks up descriptive metadata for a batch of DOIs in one
// request. The result map is keyed by the requested DOI strings; DOIs the
// provider has no record for are simply absent from the map. A transport
// failure fails the whole batch.
type MetadataProvider interface {
	LookupMany(ctx context.Context, dois []string) (map[string]article.Metadata, error)
}

// MetadataStage populates the metadata slot via one batched provider call
// per consumed sequence. It buffers the whole input, so it must only be
// applied to a page-bounded sequence, after windowing.
type MetadataStage struct {
	provider MetadataProvider
}

// NewMetadataStage creates a metadata enrichment stage.
func NewMetadataStage(provider MetadataProvider) *MetadataStage {
	return &MetadataStage{provider: provider}
}

// Enrich implements Stage.
func (s *MetadataStage) Enrich(src seq.Seq[article.Mention]) seq.Seq[article.Mention] {
	return &metadataSeq{src: src, provider: s.provider}
}

type metadataSeq struct {
	src      seq.Seq[article.Mention]
	provider MetadataProvider
	fetched  bool
	buffered []article.Mention
	pos      int
}

func (s *metadataSeq) Next(ctx context.Context) (article.Mention, bool, error) {
	var zero article.Mention
	if !s.fetched {
		s.fetched = true
		if err := s.fetch(ctx); err != nil {
			return zero, false, err
		}
	}
	if s.pos >= len(s.buffered) {
		return zero, false, nil
	}
	item := s.buffered[s.pos]
	s.pos++
	return item, true, nil
}

func (s *metadataSeq) fetch(ctx context.Context) error {
	mentions, err := seq.Collect(ctx, s.src)
	if err != nil {
		return err
	}
	if len(mentions) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(mentions))
	dois := make([]string, 0, len(mentions))
	for _, m := range mentions {
		if _, ok := seen[m.DOI]; ok {
			continue
		}
		seen[m.DOI] = struct{}{}
		dois = append(dois, m.DOI)
	}

	metaByDOI, err := s.provider.LookupMany(ctx, dois)
	if err != nil {
		return err
	}

	for i, m := range mentions {
		if meta, ok := metaByDOI[m.DOI]; ok {
			mentions[i] = m.WithMeta(meta)
		}
	}
	s.buffered = mentions
	return nil
}
