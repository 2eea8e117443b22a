package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/preprintlabs/listings/pkg/article"
	"github.com/preprintlabs/listings/pkg/crossref"
	"github.com/preprintlabs/listings/pkg/enrich"
	"github.com/preprintlabs/listings/pkg/events"
	"github.com/preprintlabs/listings/pkg/logging"
	"github.com/preprintlabs/listings/pkg/objcache"
	"github.com/preprintlabs/listings/pkg/refresh"
	"github.com/preprintlabs/listings/pkg/sheetimage"
	"github.com/preprintlabs/listings/pkg/source"
)

func main() {
	// Configuration from environment
	redisURL := getEnv("REDIS_URL", "localhost:6379")
	port := getEnv("PORT", "8080")
	userAgent := getEnv("USER_AGENT", "listings/0.1.0 (mailto:ops@example.org)")
	eventsURL := getEnv("EVENTS_URL", "")
	sheetID := getEnv("IMAGE_SHEET_ID", "")
	sheetName := getEnv("IMAGE_SHEET_NAME", "article-images")
	sheetsAPIKey := getEnv("SHEETS_API_KEY", "")
	eventsMaxAge := getEnvDuration("EVENTS_MAX_AGE", 10*time.Minute)
	refreshInterval := getEnvDuration("REFRESH_INTERVAL", 5*time.Minute)

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") == "true",
		Output: os.Stderr,
	})

	if eventsURL == "" {
		logger.Fatal().Msg("EVENTS_URL is required")
	}

	// Setup Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("redis_url", redisURL).Msg("Connected to Redis")

	// Event model: bulk load behind the TTL cache, folds swapped atomically
	eventCache := objcache.NewInMemory[[]events.Event]("events", eventsMaxAge)
	model := events.NewModel(
		events.NewHTTPSource(eventsURL),
		eventCache,
		logging.NewLogger("event-model"),
	)

	// Crossref metadata provider
	metadataProvider, err := crossref.New(
		crossref.DefaultConfig(redisClient, userAgent),
		logger,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Crossref client")
	}

	// Image provider is optional; without a sheet every image slot stays empty
	var images enrich.ImageLookup = noImages{}
	tasks := []refresh.Task{
		{Name: "events", Interval: refreshInterval, Run: model.Refresh},
	}
	if sheetID != "" && sheetsAPIKey != "" {
		imageProvider, err := sheetimage.New(ctx, sheetimage.Config{
			SpreadsheetID: sheetID,
			SheetName:     sheetName,
			APIKey:        sheetsAPIKey,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create sheet image provider")
		}
		images = imageProvider
		tasks = append(tasks, refresh.Task{
			Name:     "image-mapping",
			Interval: refreshInterval,
			Run:      imageProvider.Refresh,
		})
	} else {
		logger.Warn().Msg("No image sheet configured, image slots will stay empty")
	}

	aggregator := enrich.NewAggregator(model, metadataProvider, images, logger)

	// Background refresh; the scheduler runs each task immediately, so the
	// first page request after startup already sees folded snapshots.
	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	refresh.NewScheduler(logging.NewLogger("refresh"), tasks...).Start(schedulerCtx)

	// HTTP Server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(redisClient))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/lists/", listArticlesHandler(model, aggregator, logger))

	addr := ":" + port
	logger.Info().
		Str("addr", addr).
		Str("user_agent", userAgent).
		Msg("Starting listings server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

// articlesResponse is the JSON shape of one enriched listing page.
type articlesResponse struct {
	Articles  []articleView  `json:"articles"`
	PageState pageStateView  `json:"page_state"`
}

type articleView struct {
	DOI             string     `json:"doi"`
	CreatedAt       time.Time  `json:"created_at"`
	Comment         string     `json:"comment,omitempty"`
	Title           string     `json:"title,omitempty"`
	Abstract        string     `json:"abstract,omitempty"`
	AuthorNames     []string   `json:"author_names,omitempty"`
	PublishedDate   *time.Time `json:"published_date,omitempty"`
	EvaluationCount int        `json:"evaluation_count"`
	ImageURL        string     `json:"image_url,omitempty"`
}

type pageStateView struct {
	Page        int  `json:"page"`
	IsEmpty     bool `json:"is_empty"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
	PageCount   int  `json:"page_count,omitempty"`
	TotalSeen   int  `json:"total_seen"`
}

// listMentions is the part of the event model the handler needs.
type listMentions interface {
	MentionsFor(listID string) ([]article.Mention, bool)
}

func listArticlesHandler(
	lists listMentions,
	aggregator *enrich.Aggregator,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Path: /api/lists/{id}/articles
		rest := strings.TrimPrefix(r.URL.Path, "/api/lists/")
		parts := strings.Split(rest, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] != "articles" {
			http.NotFound(w, r)
			return
		}
		listID := parts[0]

		page, err := queryInt(r, "page", 1)
		if err != nil {
			http.Error(w, "invalid page parameter", http.StatusBadRequest)
			return
		}
		itemsPerPage, err := queryInt(r, "items_per_page", 10)
		if err != nil {
			http.Error(w, "invalid items_per_page parameter", http.StatusBadRequest)
			return
		}

		mentions, ok := lists.MentionsFor(listID)
		if !ok {
			http.Error(w, "list not found", http.StatusNotFound)
			return
		}

		items, state, err := aggregator.GetPage(r.Context(), source.FromSlice(mentions), page, itemsPerPage)
		if err != nil {
			if errors.Is(err, enrich.ErrInvalidItemsPerPage) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			logger.Error().Err(err).Str("list_id", listID).Msg("Failed to assemble page")
			http.Error(w, "upstream provider failed", http.StatusBadGateway)
			return
		}

		views := make([]articleView, len(items))
		for i, m := range items {
			views[i] = viewFromMention(m)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(articlesResponse{
			Articles: views,
			PageState: pageStateView{
				Page:        state.Page,
				IsEmpty:     state.IsEmpty,
				HasPrevious: state.HasPrevious,
				HasNext:     state.HasNext,
				PageCount:   state.PageCount,
				TotalSeen:   state.TotalSeen,
			},
		})
	}
}

func viewFromMention(m article.Mention) articleView {
	view := articleView{
		DOI:       m.DOI,
		CreatedAt: m.CreatedAt,
		Comment:   m.Comment,
	}
	if m.Meta != nil {
		view.Title = m.Meta.Title
		view.Abstract = m.Meta.Abstract
		view.AuthorNames = m.Meta.AuthorNames
		view.PublishedDate = m.Meta.PublishedDate
	}
	if m.Stats != nil {
		view.EvaluationCount = m.Stats.EvaluationCount
	}
	if m.Images != nil {
		view.ImageURL = m.Images.URL
	}
	return view
}

// noImages keeps every image slot empty when no sheet is configured.
type noImages struct{}

func (noImages) ImageFor(string) (article.ImageRef, bool) {
	return article.ImageRef{}, false
}

func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
