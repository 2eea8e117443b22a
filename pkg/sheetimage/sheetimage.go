// Package sheetimage provides article images from a curated Google
// Sheet. The sheet maps DOIs to image URLs; the mapping is loaded in one
// call, held as an atomically swapped snapshot, and refreshed in the
// background, so lookups during page assembly never touch the network.
package sheetimage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/preprintlabs/listings/pkg/article"
)

// DefaultSheetRange covers the DOI and image URL columns.
const DefaultSheetRange = "A:B"

var imageMappingSize = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "listings_image_mapping_size",
	Help: "Number of DOI to image URL entries in the current mapping",
})

// Common provider errors.
var (
	// ErrSheetNotFound indicates the spreadsheet or range does not exist.
	ErrSheetNotFound = errors.New("sheetimage: spreadsheet or range not found")

	// ErrSheetForbidden indicates the API key cannot read the spreadsheet.
	ErrSheetForbidden = errors.New("sheetimage: access to spreadsheet denied")
)

// Config holds the provider configuration.
type Config struct {
	// SpreadsheetID of the curated image sheet.
	SpreadsheetID string

	// SheetName is the tab holding the DOI to image URL mapping.
	SheetName string

	// SheetRange within the tab. Defaults to DefaultSheetRange.
	SheetRange string

	// APIKey authorizes read access to the sheet.
	APIKey string
}

// valuesReader fetches a cell range. The Sheets service satisfies this
// through an adapter; tests substitute a fake.
type valuesReader interface {
	Read(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
}

// Provider resolves article image URLs from the sheet mapping.
type Provider struct {
	values        valuesReader
	spreadsheetID string
	readRange     string
	logger        zerolog.Logger

	mapping atomic.Pointer[map[string]string]
}

// New creates a provider backed by the Google Sheets API.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Provider, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	service, err := sheets.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return newProvider(&sheetsValues{service: service}, cfg, logger), nil
}

func newProvider(values valuesReader, cfg Config, logger zerolog.Logger) *Provider {
	sheetRange := cfg.SheetRange
	if sheetRange == "" {
		sheetRange = DefaultSheetRange
	}
	readRange := sheetRange
	if cfg.SheetName != "" {
		readRange = cfg.SheetName + "!" + sheetRange
	}

	return &Provider{
		values:        values,
		spreadsheetID: cfg.SpreadsheetID,
		readRange:     readRange,
		logger:        logger.With().Str("component", "sheet-image-provider").Logger(),
	}
}

// Refresh reloads the mapping from the sheet and swaps in the new
// snapshot. On failure the previous snapshot stays in place.
func (p *Provider) Refresh(ctx context.Context) error {
	values, err := p.values.Read(ctx, p.spreadsheetID, p.readRange)
	if err != nil {
		return wrapSheetError(err)
	}

	mapping := parseMapping(values)
	p.mapping.Store(&mapping)
	imageMappingSize.Set(float64(len(mapping)))

	p.logger.Debug().
		Int("entries", len(mapping)).
		Str("range", p.readRange).
		Msg("Image mapping refreshed")

	return nil
}

// ImageFor returns the image reference for a DOI, if the sheet has one.
// Safe to call before the first refresh.
func (p *Provider) ImageFor(doi string) (article.ImageRef, bool) {
	mapping := p.mapping.Load()
	if mapping == nil {
		return article.ImageRef{}, false
	}
	url, ok := (*mapping)[doi]
	if !ok {
		return article.ImageRef{}, false
	}
	return article.ImageRef{URL: url}, true
}

// parseMapping converts sheet rows into the DOI to URL mapping. The
// first row is the header; rows without both columns or with a blank
// URL are dropped.
func parseMapping(values [][]interface{}) map[string]string {
	mapping := make(map[string]string)
	for i, row := range values {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			continue
		}
		doi, ok := row[0].(string)
		if !ok || doi == "" {
			continue
		}
		url, ok := row[1].(string)
		if !ok || url == "" {
			continue
		}
		mapping[doi] = url
	}
	return mapping
}

// wrapSheetError converts googleapi errors to provider errors.
func wrapSheetError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch gerr.Code {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrSheetNotFound, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrSheetForbidden, err)
	default:
		return err
	}
}

// sheetsValues adapts the Sheets service to the valuesReader interface.
type sheetsValues struct {
	service *sheets.Service
}

func (s *sheetsValues) Read(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := s.service.Spreadsheets.Values.
		Get(spreadsheetID, readRange).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}
