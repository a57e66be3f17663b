package domain

import (
	"testing"
	"time"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name      string
		qty       int64
		unitPrice float64
		want      string
	}{
		{"classic tee", 2, 19.99, "39.98"},
		{"single", 1, 79.99, "79.99"},
		{"half up", 1, 0.125, "0.13"},
		{"half up three", 3, 0.335, "1.01"},
		{"zero qty", 0, 12.5, "0.00"},
		{"float artifact", 3, 0.1, "0.30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(tt.qty, tt.unitPrice).String()
			if got != tt.want {
				t.Errorf("LineTotal(%d, %v) = %s, want %s", tt.qty, tt.unitPrice, got, tt.want)
			}
		})
	}
}

func TestMoneyAddAndRound(t *testing.T) {
	total := ZeroMoney()
	for _, f := range []float64{0.1, 0.2, 39.98} {
		total = total.AddFloat(f)
	}
	if total.Rounded().Amount() != 40.28 {
		t.Errorf("Expected 40.28, got %v", total.Rounded().Amount())
	}
	if _, err := NewMoney(-1); err == nil {
		t.Error("Expected error for negative amount")
	}
}

func TestDateRangeContains(t *testing.T) {
	start := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)

	dr, err := NewDateRange(&start, &end)
	if err != nil {
		t.Fatalf("NewDateRange: %v", err)
	}

	if !dr.Contains(time.Date(2025, 10, 31, 23, 59, 59, 0, time.UTC)) {
		t.Error("End bound should include the whole end day")
	}
	if dr.Contains(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("Day after end should be excluded")
	}
	if dr.Contains(time.Date(2025, 9, 30, 12, 0, 0, 0, time.UTC)) {
		t.Error("Day before start should be excluded")
	}

	openEnd, _ := NewDateRange(&start, nil)
	if !openEnd.Contains(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("Open-ended range should include any later day")
	}
	if Unbounded().IsBounded() {
		t.Error("Unbounded range should not be bounded")
	}
}

func TestDateRangeValidation(t *testing.T) {
	start := time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	if _, err := NewDateRange(&start, &end); err == nil {
		t.Error("Expected error when start is after end")
	}

	day := SingleDay(time.Date(2025, 10, 23, 17, 30, 0, 0, time.UTC))
	if !day.IsSingleDay() {
		t.Error("SingleDay should be a single day range")
	}
	if got := day.String(); got != "[2025-10-23, 2025-10-23]" {
		t.Errorf("Unexpected String(): %s", got)
	}
}
