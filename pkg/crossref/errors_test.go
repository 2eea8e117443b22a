package crossref

import (
	"errors"
	"fmt"
	"testing"
)

func TestProviderError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ProviderError
		expected string
	}{
		{
			name: "without wrapped error",
			err: &ProviderError{
				Provider:   ProviderName,
				StatusCode: 500,
				Class:      ErrorClassServer,
				Message:    "500 Internal Server Error",
			},
			expected: "crossref server error (status 500): 500 Internal Server Error",
		},
		{
			name: "with wrapped error",
			err: &ProviderError{
				Provider:   ProviderName,
				StatusCode: 200,
				Class:      ErrorClassServer,
				Message:    "decode response",
				Err:        fmt.Errorf("unexpected EOF"),
			},
			expected: "crossref server error (status 200): decode response: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &ProviderError{
		Provider: ProviderName,
		Class:    ErrorClassNetwork,
		Message:  "request failed",
		Err:      inner,
	}

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		statusCode int
		expected   ErrorClass
	}{
		{429, ErrorClassRateLimit},
		{400, ErrorClassClient},
		{404, ErrorClassClient},
		{499, ErrorClassClient},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
		{200, ""},
		{304, ""},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.statusCode); got != tt.expected {
			t.Errorf("classifyStatus(%d) = %q, want %q", tt.statusCode, got, tt.expected)
		}
	}
}

func TestClassifyError(t *testing.T) {
	provErr := &ProviderError{Class: ErrorClassRateLimit}
	if got := classifyError(provErr); got != ErrorClassRateLimit {
		t.Errorf("classifyError(ProviderError) = %q, want %q", got, ErrorClassRateLimit)
	}

	wrapped := fmt.Errorf("attempt failed: %w", provErr)
	if got := classifyError(wrapped); got != ErrorClassRateLimit {
		t.Errorf("classifyError(wrapped) = %q, want %q", got, ErrorClassRateLimit)
	}

	if got := classifyError(errors.New("dial tcp: refused")); got != ErrorClassNetwork {
		t.Errorf("classifyError(plain) = %q, want %q", got, ErrorClassNetwork)
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected bool
	}{
		{ErrorClassClient, false},
		{ErrorClassServer, true},
		{ErrorClassRateLimit, true},
		{ErrorClassNetwork, true},
		{"", false},
	}

	for _, tt := range tests {
		if got := shouldRetry(tt.class); got != tt.expected {
			t.Errorf("shouldRetry(%q) = %v, want %v", tt.class, got, tt.expected)
		}
	}
}
