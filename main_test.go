package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	v1 "quickshop/api/v1"
	"quickshop/internal/jobs"
	sharedinfra "quickshop/internal/shared/infrastructure"
)

type idleRunner struct{}

func (idleRunner) TryRun(context.Context, time.Time) (jobs.Outcome, error) {
	return jobs.Outcome{}, sharedinfra.ErrRunInProgress
}

type noSummaries struct{}

func (noSummaries) ReadSummary(time.Time) ([]byte, error) { return []byte(`{}`), nil }

func testMux() *http.ServeMux {
	handlers := v1.NewHandlers(idleRunner{}, noSummaries{},
		sharedinfra.NewTTLCache[[]byte](4, time.Minute), sharedinfra.DiscardLogger())
	metrics := sharedinfra.NewMetrics()
	metrics.ObserveStage("ENRICH", time.Millisecond)
	return newMux(handlers, metrics)
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		method   string
		target   string
		want     int
		contains string
	}{
		{http.MethodGet, "/api/health", http.StatusOK, `"status":"ok"`},
		{http.MethodGet, "/metrics", http.StatusOK, "quickshop_etl_stage_duration_seconds"},
		{http.MethodPost, "/api/v1/runs?date=2025-10-23", http.StatusConflict, "already in progress"},
		{http.MethodGet, "/api/v1/summary?date=2025-10-23", http.StatusOK, "{}"},
	}

	mux := testMux()
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			if rec.Code != tt.want {
				t.Fatalf("Expected %d, got %d", tt.want, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("Expected body to contain %q, got %s", tt.contains, rec.Body)
			}
		})
	}
}

// BenchmarkHealth coût minimal d'une requête sur le mux
func BenchmarkHealth(b *testing.B) {
	mux := testMux()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		mux.ServeHTTP(httptest.NewRecorder(), req)
	}
}
