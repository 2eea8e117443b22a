//go:build integration

package ratelimit

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container and returns a client
func setupRedis(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestTracker_Integration_GetState(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	tracker := NewTracker(redisClient, logger)
	ctx := context.Background()

	// Default state when Redis is empty
	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}

	if state.Limit != DefaultLimit {
		t.Errorf("Default Limit = %d, want %d", state.Limit, DefaultLimit)
	}
	if state.Interval != DefaultInterval {
		t.Errorf("Default Interval = %v, want %v", state.Interval, DefaultInterval)
	}
}

func TestTracker_Integration_UpdateAndGet(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	tracker := NewTracker(redisClient, logger)
	ctx := context.Background()

	headers := http.Header{}
	headers.Set("X-Rate-Limit-Limit", "50")
	headers.Set("X-Rate-Limit-Interval", "1s")

	if err := tracker.UpdateFromHeaders(ctx, headers); err != nil {
		t.Fatalf("UpdateFromHeaders() error = %v", err)
	}

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}

	if state.Limit != 50 {
		t.Errorf("Limit = %d, want 50", state.Limit)
	}
	if state.Interval != 1*time.Second {
		t.Errorf("Interval = %v, want 1s", state.Interval)
	}
	if state.RequestsPerSecond() != 50 {
		t.Errorf("RequestsPerSecond() = %v, want 50", state.RequestsPerSecond())
	}
	if state.IsStale(1 * time.Minute) {
		t.Error("Freshly updated state should not be stale")
	}
}

func TestTracker_Integration_SharedState(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	ctx := context.Background()

	// Two trackers sharing the same Redis see the same state
	writer := NewTracker(redisClient, logger)
	reader := NewTracker(redisClient, logger)

	headers := http.Header{}
	headers.Set("X-Rate-Limit-Limit", "100")
	headers.Set("X-Rate-Limit-Interval", "10s")

	if err := writer.UpdateFromHeaders(ctx, headers); err != nil {
		t.Fatalf("UpdateFromHeaders() error = %v", err)
	}

	state, err := reader.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if state.Limit != 100 || state.Interval != 10*time.Second {
		t.Errorf("Shared state = %d/%v, want 100/10s", state.Limit, state.Interval)
	}
}
