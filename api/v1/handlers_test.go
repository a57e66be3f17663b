package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	analyticsapp "quickshop/internal/analytics/application"
	etldomain "quickshop/internal/etl/domain"
	"quickshop/internal/jobs"
	sharedinfra "quickshop/internal/shared/infrastructure"
)

type stubRunner struct {
	outcome jobs.Outcome
	err     error
	dates   []time.Time
}

func (s *stubRunner) TryRun(_ context.Context, date time.Time) (jobs.Outcome, error) {
	s.dates = append(s.dates, date)
	return s.outcome, s.err
}

type stubSummaries struct {
	data  map[string][]byte
	reads int
}

func (s *stubSummaries) ReadSummary(date time.Time) ([]byte, error) {
	s.reads++
	data, ok := s.data[date.Format("2006-01-02")]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func newTestHandlers(runner DailyRunner, summaries SummaryReader) (*Handlers, *http.ServeMux) {
	h := NewHandlers(runner, summaries, sharedinfra.NewTTLCache[[]byte](4, time.Minute), sharedinfra.DiscardLogger())
	mux := http.NewServeMux()
	h.Register(mux)
	return h, mux
}

func TestTriggerRun(t *testing.T) {
	runner := &stubRunner{outcome: jobs.Outcome{
		Result:  etldomain.RunResult{RunID: "r1", Status: etldomain.StatusSucceeded, RowCount: 1, HasOrders: true},
		Reports: &analyticsapp.Reports{SummaryPath: "reports/summary_2025-10-23.json"},
	}}
	_, mux := newTestHandlers(runner, &stubSummaries{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/runs?date=2025-10-23", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp runResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Run.RunID != "r1" || resp.SummaryPath == "" {
		t.Errorf("Unexpected response %+v", resp)
	}
	if len(runner.dates) != 1 || !runner.dates[0].Equal(time.Date(2025, 10, 23, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected one run for 2025-10-23, got %v", runner.dates)
	}
}

func TestTriggerRunStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		err    error
		want   int
	}{
		{"busy", http.MethodPost, "/api/v1/runs?date=2025-10-23", sharedinfra.ErrRunInProgress, http.StatusConflict},
		{"missing input", http.MethodPost, "/api/v1/runs?date=2025-10-23", &etldomain.MissingInputError{Path: "products.csv"}, http.StatusUnprocessableEntity},
		{"write failure", http.MethodPost, "/api/v1/runs?date=2025-10-23", errors.New("disk full"), http.StatusInternalServerError},
		{"missing date", http.MethodPost, "/api/v1/runs", nil, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/api/v1/runs?date=23-10-2025", nil, http.StatusBadRequest},
		{"wrong method", http.MethodGet, "/api/v1/runs?date=2025-10-23", nil, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mux := newTestHandlers(&stubRunner{err: tt.err}, &stubSummaries{})
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			if rec.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, rec.Code, rec.Body)
			}
		})
	}
}

func TestGetSummaryCaching(t *testing.T) {
	summaries := &stubSummaries{data: map[string][]byte{
		"2025-10-23": []byte(`{"date":"2025-10-23","total_orders":1}`),
	}}
	h, mux := newTestHandlers(&stubRunner{}, summaries)

	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/summary?date=2025-10-23", nil))
		return rec
	}

	first := get()
	if first.Code != http.StatusOK || first.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("Expected 200 MISS, got %d %q", first.Code, first.Header().Get("X-Cache"))
	}
	second := get()
	if second.Header().Get("X-Cache") != "HIT" || summaries.reads != 1 {
		t.Errorf("Expected cached response, reads=%d", summaries.reads)
	}

	InvalidateSummary(h.cache)(etldomain.RunResult{LogicalDate: time.Date(2025, 10, 23, 0, 0, 0, 0, time.UTC)})
	if third := get(); third.Header().Get("X-Cache") != "MISS" || summaries.reads != 2 {
		t.Errorf("Expected a re-read after invalidation, reads=%d", summaries.reads)
	}
}

func TestGetSummaryNotFound(t *testing.T) {
	_, mux := newTestHandlers(&stubRunner{}, &stubSummaries{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/summary?date=2025-10-22", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

// BenchmarkGetSummary_CacheHit lecture depuis le cache partagé
func BenchmarkGetSummary_CacheHit(b *testing.B) {
	summaries := &stubSummaries{data: map[string][]byte{"2025-10-23": []byte(`{}`)}}
	_, mux := newTestHandlers(&stubRunner{}, summaries)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary?date=2025-10-23", nil)
	mux.ServeHTTP(httptest.NewRecorder(), req)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		mux.ServeHTTP(httptest.NewRecorder(), req)
	}
}
