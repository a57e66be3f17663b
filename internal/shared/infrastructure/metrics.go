package infrastructure

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics registre Prometheus dédié à l'ETL (pas de registre global)
type Metrics struct {
	reg             *prometheus.Registry
	RunsTotal       *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
	FilesDiscovered prometheus.Gauge
	RowsWritten     prometheus.Gauge
	LastSuccess     prometheus.Gauge
	NotifyFailures  prometheus.Counter
}

// NewMetrics crée et enregistre les métriques
func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quickshop_etl_runs_total",
		Help: "Pipeline runs by final status.",
	}, []string{"status"})
	stage := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quickshop_etl_stage_duration_seconds",
		Help:    "Duration of each pipeline stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
	files := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "quickshop_etl_files_discovered",
		Help: "Order files discovered by the last run.",
	})
	rows := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "quickshop_etl_rows_written",
		Help: "Enriched rows written by the last run.",
	})
	last := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "quickshop_etl_last_success_timestamp_seconds",
		Help: "Unix time of the last successful run.",
	})
	notify := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quickshop_etl_notify_failures_total",
		Help: "Completion notifications that could not be delivered.",
	})

	r.MustRegister(runs, stage, files, rows, last, notify)
	return &Metrics{
		reg:             r,
		RunsTotal:       runs,
		StageDuration:   stage,
		FilesDiscovered: files,
		RowsWritten:     rows,
		LastSuccess:     last,
		NotifyFailures:  notify,
	}
}

// ObserveStage enregistre la durée d'une étape
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun enregistre le résultat d'une exécution
func (m *Metrics) RecordRun(status string, files, rows int, succeeded bool, at time.Time) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.FilesDiscovered.Set(float64(files))
	m.RowsWritten.Set(float64(rows))
	if succeeded {
		m.LastSuccess.Set(float64(at.Unix()))
	}
}

// RecordNotifyFailure compte une notification perdue
func (m *Metrics) RecordNotifyFailure() {
	if m == nil {
		return
	}
	m.NotifyFailures.Inc()
}

// Registry expose le registre sous-jacent (tests, gatherers)
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler handler HTTP /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// WriteTextfile écrit les métriques au format texte (node_exporter textfile collector)
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
