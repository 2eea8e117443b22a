package ratelimit

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		expected    time.Duration
		shouldError bool
	}{
		{
			name:     "duration with unit",
			value:    "1s",
			expected: 1 * time.Second,
		},
		{
			name:     "longer duration",
			value:    "10s",
			expected: 10 * time.Second,
		},
		{
			name:     "bare integer treated as seconds",
			value:    "5",
			expected: 5 * time.Second,
		},
		{
			name:        "garbage value",
			value:       "soon",
			shouldError: true,
		},
		{
			name:        "negative duration",
			value:       "-1s",
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseInterval(tt.value)
			if tt.shouldError {
				if err == nil {
					t.Errorf("parseInterval(%q) expected error, got %v", tt.value, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseInterval(%q) error = %v", tt.value, err)
			}
			if result != tt.expected {
				t.Errorf("parseInterval(%q) = %v, want %v", tt.value, result, tt.expected)
			}
		})
	}
}

func TestUpdateFromHeaders_MissingLimitHeader(t *testing.T) {
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	// No Redis needed: missing limit header returns before any state access
	tracker := NewTracker(nil, logger)

	headers := http.Header{}
	headers.Set("X-Rate-Limit-Interval", "1s")

	if err := tracker.UpdateFromHeaders(context.Background(), headers); err != nil {
		t.Errorf("UpdateFromHeaders() with missing limit header should be a no-op, got %v", err)
	}
}

func TestUpdateFromHeaders_InvalidHeaders(t *testing.T) {
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	tracker := NewTracker(nil, logger)

	tests := []struct {
		name           string
		limitHeader    string
		intervalHeader string
	}{
		{
			name:           "invalid limit header",
			limitHeader:    "invalid",
			intervalHeader: "1s",
		},
		{
			name:           "missing interval header",
			limitHeader:    "50",
			intervalHeader: "",
		},
		{
			name:           "invalid interval header",
			limitHeader:    "50",
			intervalHeader: "soon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			headers.Set("X-Rate-Limit-Limit", tt.limitHeader)
			if tt.intervalHeader != "" {
				headers.Set("X-Rate-Limit-Interval", tt.intervalHeader)
			}

			// Parsing fails before any Redis access
			if err := tracker.UpdateFromHeaders(context.Background(), headers); err == nil {
				t.Error("UpdateFromHeaders() expected error for invalid headers")
			}
		})
	}
}
