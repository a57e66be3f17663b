package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	etldomain "quickshop/internal/etl/domain"
	"quickshop/internal/jobs"
	shareddomain "quickshop/internal/shared/domain"
	sharedinfra "quickshop/internal/shared/infrastructure"
)

// DailyRunner déclenche le job quotidien sans attendre un job en cours
type DailyRunner interface {
	TryRun(ctx context.Context, date time.Time) (jobs.Outcome, error)
}

// SummaryReader relit un résumé quotidien déjà écrit
type SummaryReader interface {
	ReadSummary(date time.Time) ([]byte, error)
}

// Handlers handlers HTTP de l'API v1
type Handlers struct {
	runner    DailyRunner
	summaries SummaryReader
	cache     *sharedinfra.TTLCache[[]byte]
	logger    *sharedinfra.Logger
}

// NewHandlers crée les handlers; cache est partagé avec le hook d'invalidation du job
func NewHandlers(
	runner DailyRunner,
	summaries SummaryReader,
	cache *sharedinfra.TTLCache[[]byte],
	logger *sharedinfra.Logger,
) *Handlers {
	return &Handlers{runner: runner, summaries: summaries, cache: cache, logger: logger}
}

// Register enregistre les routes v1 sur mux
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/runs", h.TriggerRun)
	mux.HandleFunc("/api/v1/summary", h.GetSummary)
}

type runResponse struct {
	Run         etldomain.RunResult `json:"run"`
	SummaryPath string              `json:"summary_path,omitempty"`
	AlertsPath  string              `json:"alerts_path,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// TriggerRun handler pour POST /api/v1/runs?date=YYYY-MM-DD
func (h *Handlers) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	// L'exécution va au bout même si le client se déconnecte
	outcome, err := h.runner.TryRun(context.WithoutCancel(r.Context()), date)
	if errors.Is(err, sharedinfra.ErrRunInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	resp := runResponse{Run: outcome.Result}
	if outcome.Reports != nil {
		resp.SummaryPath = outcome.Reports.SummaryPath
		resp.AlertsPath = outcome.Reports.AlertsPath
	}
	status := http.StatusOK
	if err != nil {
		h.logger.Errorf("daily run for %s failed: %v", date.Format(shareddomain.DateLayout), err)
		resp.Error = err.Error()
		status = statusFor(err)
	}
	writeJSON(w, status, resp)
}

// GetSummary handler pour GET /api/v1/summary?date=YYYY-MM-DD
func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	key := SummaryCacheKey(date)
	if data, hit := h.cache.Get(key); hit {
		w.Header().Set("X-Cache", "HIT")
		writeRawJSON(w, data)
		return
	}

	data, err := h.summaries.ReadSummary(date)
	if errors.Is(err, os.ErrNotExist) {
		writeError(w, http.StatusNotFound, "no summary for "+date.Format(shareddomain.DateLayout))
		return
	}
	if err != nil {
		h.logger.Errorf("read summary: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.cache.Set(key, data)
	w.Header().Set("X-Cache", "MISS")
	writeRawJSON(w, data)
}

// SummaryCacheKey clé de cache du résumé d'un jour
func SummaryCacheKey(date time.Time) string {
	return sharedinfra.NewCacheKeyBuilder("summary").AddDate(date).Build()
}

// InvalidateSummary hook de fin d'exécution: le résumé du jour rejoué est évincé
func InvalidateSummary(cache *sharedinfra.TTLCache[[]byte]) func(etldomain.RunResult) {
	return func(result etldomain.RunResult) {
		if result.LogicalDate.IsZero() {
			cache.DeletePrefix("summary:")
			return
		}
		cache.Delete(SummaryCacheKey(result.LogicalDate))
	}
}

func dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing date parameter (YYYY-MM-DD)")
		return time.Time{}, false
	}
	date, err := shareddomain.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date "+raw+", expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// statusFor: entrées manquantes ou invalides → 422, le reste → 500
func statusFor(err error) int {
	var (
		missing *etldomain.MissingInputError
		schema  *etldomain.SchemaError
		invalid *etldomain.ValidationError
	)
	switch {
	case errors.As(err, &missing), errors.As(err, &schema), errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
