package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	etldomain "quickshop/internal/etl/domain"
	sharedinfra "quickshop/internal/shared/infrastructure"
)

type fakeKafkaWriter struct {
	msgs []kafka.Message
	fail bool
}

func (f *fakeKafkaWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

type countingNotifier struct {
	calls int
	err   error
}

func (c *countingNotifier) Notify(context.Context, RunEvent) error {
	c.calls++
	return c.err
}

func sampleEvent() RunEvent {
	return NewRunEvent(etldomain.RunResult{
		RunID:       "run-1",
		Status:      etldomain.StatusSucceeded,
		LogicalDate: time.Date(2025, 10, 23, 0, 0, 0, 0, time.UTC),
		RowCount:    1,
		Artifact:    etldomain.Artifact{Format: etldomain.OutputFormatParquet, Location: "output/orders_2025-10-23.parquet"},
	}, time.Date(2025, 10, 24, 6, 0, 0, 0, time.UTC))
}

func TestKafkaNotifierPublishesKeyedEvent(t *testing.T) {
	fk := &fakeKafkaWriter{}

	if err := newKafkaNotifierWith(fk).Notify(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if len(fk.msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(fk.msgs))
	}
	if string(fk.msgs[0].Key) != "2025-10-23" {
		t.Errorf("Expected key 2025-10-23, got %q", fk.msgs[0].Key)
	}
	var got RunEvent
	if err := json.Unmarshal(fk.msgs[0].Value, &got); err != nil {
		t.Fatalf("Invalid JSON payload: %v", err)
	}
	if got.RunID != "run-1" || got.Status != "succeeded" || got.RowCount != 1 {
		t.Errorf("Unexpected event %+v", got)
	}
}

func TestKafkaNotifierFailure(t *testing.T) {
	err := newKafkaNotifierWith(&fakeKafkaWriter{fail: true}).Notify(context.Background(), sampleEvent())
	if err == nil || !strings.Contains(err.Error(), "publish run event") {
		t.Errorf("Expected wrapped publish error, got %v", err)
	}
}

func TestMultiNotifierCallsEveryone(t *testing.T) {
	failing := &countingNotifier{err: errors.New("boom")}
	ok := &countingNotifier{}

	err := MultiNotifier{failing, ok}.Notify(context.Background(), sampleEvent())

	if err == nil {
		t.Error("Expected aggregated error")
	}
	if failing.calls != 1 || ok.calls != 1 {
		t.Errorf("Expected every notifier called once, got %d and %d", failing.calls, ok.calls)
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := sharedinfra.NewLogger(&buf, false)

	if err := NewLogNotifier(logger).Notify(context.Background(), sampleEvent()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "run run-1 for 2025-10-23") {
		t.Errorf("Unexpected log output %q", buf.String())
	}
}
