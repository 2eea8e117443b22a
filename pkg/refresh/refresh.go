// Package refresh runs periodic background reloads of caches and snapshots
// so request serving rarely observes cold data. Each task runs once at
// startup and then at its fixed interval; a failed run is logged and the
// schedule continues. Overlapping reloads of the same underlying value are
// prevented by the caches' own single-flight loading, not by the scheduler.
package refresh

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	refreshRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listings_refresh_runs_total",
		Help: "Total background refresh runs by task and outcome",
	}, []string{"task", "outcome"})

	refreshDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "listings_refresh_duration_seconds",
		Help:    "Background refresh duration in seconds by task",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"task"})
)

// Task is one periodically executed reload action.
type Task struct {
	// Name identifies the task in logs and metrics.
	Name string

	// Interval between runs. Must be positive.
	Interval time.Duration

	// Run performs the reload, typically by forcing a cache refresh.
	Run func(ctx context.Context) error
}

// Scheduler runs refresh tasks for the process lifetime.
type Scheduler struct {
	tasks  []Task
	logger zerolog.Logger
}

// NewScheduler creates a scheduler for the given tasks.
func NewScheduler(logger zerolog.Logger, tasks ...Task) *Scheduler {
	return &Scheduler{
		tasks:  tasks,
		logger: logger,
	}
}

// Start launches one goroutine per task. Each task runs immediately, so the
// first real request never pays the full cold-load latency, and then at its
// interval until ctx is cancelled. Start returns without blocking.
func (s *Scheduler) Start(ctx context.Context) {
	for _, task := range s.tasks {
		go s.runLoop(ctx, task)
	}
}

func (s *Scheduler) runLoop(ctx context.Context, task Task) {
	s.logger.Info().
		Str("task", task.Name).
		Dur("interval", task.Interval).
		Msg("Starting background refresh task")

	s.runOnce(ctx, task)

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str("task", task.Name).Msg("Stopping background refresh task")
			return
		case <-ticker.C:
			s.runOnce(ctx, task)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, task Task) {
	start := time.Now()
	err := task.Run(ctx)
	refreshDuration.WithLabelValues(task.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		refreshRunsTotal.WithLabelValues(task.Name, "failure").Inc()
		s.logger.Error().
			Err(err).
			Str("task", task.Name).
			Dur("duration", time.Since(start)).
			Msg("Background refresh failed")
		return
	}

	refreshRunsTotal.WithLabelValues(task.Name, "success").Inc()
	s.logger.Debug().
		Str("task", task.Name).
		Dur("duration", time.Since(start)).
		Msg("Background refresh complete")
}
