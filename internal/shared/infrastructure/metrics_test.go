package infrastructure

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestMetricsRecordRun(t *testing.T) {
	m := NewMetrics()
	at := time.Date(2025, 10, 24, 6, 0, 0, 0, time.UTC)

	m.RecordRun("succeeded", 3, 120, true, at)
	m.RecordRun("failed", 0, 0, false, at.Add(time.Hour))

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	values := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			name := mf.GetName()
			for _, label := range metric.GetLabel() {
				name += "/" + label.GetValue()
			}
			switch {
			case metric.GetCounter() != nil:
				values[name] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[name] = metric.GetGauge().GetValue()
			}
		}
	}

	if got := values["quickshop_etl_runs_total/succeeded"]; got != 1 {
		t.Errorf("Expected 1 succeeded run, got %v", got)
	}
	if got := values["quickshop_etl_last_success_timestamp_seconds"]; got != float64(at.Unix()) {
		t.Errorf("Failed run must not move last success, got %v", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveStage("ENRICH", time.Second)
	m.RecordRun("failed", 0, 0, false, time.Now())
	m.RecordNotifyFailure()
}

func TestMetricsWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.ObserveStage("ENRICH", 250*time.Millisecond)
	path := filepath.Join(t.TempDir(), "quickshop.prom")

	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), `quickshop_etl_stage_duration_seconds_count{stage="ENRICH"} 1`) {
		t.Errorf("Expected stage histogram in textfile, got:\n%s", content)
	}
}
