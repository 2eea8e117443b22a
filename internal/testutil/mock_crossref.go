// Package testutil provides testing utilities for the listings service.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockWork is one work record served by the mock Crossref server.
type MockWork struct {
	DOI       string       `json:"DOI"`
	Title     []string     `json:"title"`
	Abstract  string       `json:"abstract,omitempty"`
	Author    []MockAuthor `json:"author,omitempty"`
	Published *MockDate    `json:"published,omitempty"`
	Accepted  *MockDate    `json:"accepted,omitempty"`
}

// MockAuthor mirrors the Crossref author record.
type MockAuthor struct {
	Given  string `json:"given,omitempty"`
	Family string `json:"family,omitempty"`
	Name   string `json:"name,omitempty"`
}

// MockDate mirrors the Crossref date-parts record.
type MockDate struct {
	DateParts [][]int `json:"date-parts"`
}

// MockCrossref is a configurable mock Crossref API for testing. It
// serves /works queries from a registered set of work records and
// advertises rate limit headers like the real API.
type MockCrossref struct {
	server *httptest.Server

	mu       sync.RWMutex
	works    map[string]MockWork // keyed by lowercase DOI
	failures int                 // remaining responses to fail
	failCode int

	RequestCount int
	LastFilter   string
}

// NewMockCrossref creates a new mock Crossref server.
func NewMockCrossref() *MockCrossref {
	mock := &MockCrossref{
		works: make(map[string]MockWork),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handleWorks))
	return mock
}

// URL returns the mock server URL.
func (m *MockCrossref) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCrossref) Close() {
	m.server.Close()
}

// AddWork registers a work record to serve.
func (m *MockCrossref) AddWork(work MockWork) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.works[strings.ToLower(work.DOI)] = work
}

// FailNext makes the next n responses return the given status code.
func (m *MockCrossref) FailNext(n, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
	m.failCode = statusCode
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockCrossref) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

func (m *MockCrossref) handleWorks(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.RequestCount++
	filter := r.URL.Query().Get("filter")
	m.LastFilter = filter

	if m.failures > 0 {
		m.failures--
		code := m.failCode
		m.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write([]byte(`{"status":"error"}`))
		return
	}
	m.mu.Unlock()

	if r.URL.Path != "/works" {
		http.NotFound(w, r)
		return
	}

	// filter=doi:A,doi:B
	var items []MockWork
	m.mu.RLock()
	for _, part := range strings.Split(filter, ",") {
		doi := strings.TrimPrefix(part, "doi:")
		if work, ok := m.works[strings.ToLower(doi)]; ok {
			items = append(items, work)
		}
	}
	m.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Rate-Limit-Limit", "50")
	w.Header().Set("X-Rate-Limit-Interval", "1s")

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"message": map[string]interface{}{
			"items": items,
		},
	})
}
