package crossref

import (
	"strings"
	"time"

	"github.com/preprintlabs/listings/pkg/article"
)

// worksResponse is the envelope of a /works query response.
type worksResponse struct {
	Message worksMessage `json:"message"`
}

type worksMessage struct {
	Items []workItem `json:"items"`
}

// workItem is one work record as returned by the Crossref API.
type workItem struct {
	DOI       string       `json:"DOI"`
	Title     []string     `json:"title"`
	Abstract  string       `json:"abstract"`
	Author    []workAuthor `json:"author"`
	Accepted  *workDate    `json:"accepted"`
	Published *workDate    `json:"published"`
}

type workAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	// Name is set for corporate authors instead of given/family.
	Name string `json:"name"`
}

type workDate struct {
	DateParts [][]int `json:"date-parts"`
}

// metadataFromWork converts one work record into article metadata.
// The DOI is the caller's requested DOI, not the record's, so lookups
// keyed by the request round-trip exactly.
func metadataFromWork(doi string, work workItem) article.Metadata {
	return article.Metadata{
		DOI:           doi,
		Title:         strings.Join(work.Title, "\n"),
		Abstract:      cleanAbstract(work.Abstract),
		AuthorNames:   authorNames(work.Author),
		PublishedDate: publishedDate(work),
	}
}

// authorNames renders author records as display names. Corporate authors
// carry a literal name; personal authors are "Given Family".
func authorNames(authors []workAuthor) []string {
	if len(authors) == 0 {
		return nil
	}
	names := make([]string, 0, len(authors))
	for _, author := range authors {
		if author.Name != "" {
			names = append(names, author.Name)
			continue
		}
		name := strings.TrimSpace(author.Given + " " + author.Family)
		names = append(names, name)
	}
	return names
}

// publishedDate picks the later of the accepted and published dates.
// Crossref records the acceptance date of preprint revisions, which can
// be later than the originally published date.
func publishedDate(work workItem) *time.Time {
	accepted := dateFromParts(work.Accepted)
	published := dateFromParts(work.Published)
	if accepted != nil && published != nil {
		if accepted.After(*published) {
			return accepted
		}
		return published
	}
	if accepted != nil {
		return accepted
	}
	return published
}

// dateFromParts converts a Crossref date-parts field to a time.
// Incomplete dates (year only, year-month) are treated as absent.
func dateFromParts(d *workDate) *time.Time {
	if d == nil || len(d.DateParts) == 0 {
		return nil
	}
	parts := d.DateParts[0]
	if len(parts) != 3 {
		return nil
	}
	t := time.Date(parts[0], time.Month(parts[1]), parts[2], 0, 0, 0, 0, time.UTC)
	return &t
}

// cleanAbstract strips the JATS XML tags Crossref embeds in abstracts,
// leaving plain text. Abstracts without markup pass through unchanged.
func cleanAbstract(abstract string) string {
	if abstract == "" || !strings.HasPrefix(abstract, "<") {
		return abstract
	}

	var b strings.Builder
	b.Grow(len(abstract))
	inTag := false
	for _, r := range abstract {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
