package infrastructure

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path := filepath.Join(dir, "summary_2025-10-23.json")

	if err := WriteFileAtomic(path, []byte("first")); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second")); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil || string(content) != "second" {
		t.Errorf("Expected overwritten content, got %q (%v)", content, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected no temp file left behind, got %d entries", len(entries))
	}
}

func TestWriteFileAtomicFailureLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "alerts_2025-10-23.csv")
	if err := os.MkdirAll(filepath.Join(target, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileAtomic(target, []byte("product_id\n")); err == nil {
		t.Fatal("Expected an error when the target is a directory")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("Temp file %s left behind", e.Name())
		}
	}
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		t.Error("Existing target must be left untouched")
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	header := []string{"product_id", "product_name", "stock_on_hand"}
	rows := [][]any{
		{int64(1002), "Mug", int64(8)},
		{int64(1003), "Lamp", int64(42)},
	}

	data, err := EncodeXLSX(AlertsSheet, header, rows)
	if err != nil {
		t.Fatalf("EncodeXLSX failed: %v", err)
	}
	got, err := DecodeXLSX(data, AlertsSheet)
	if err != nil {
		t.Fatalf("DecodeXLSX failed: %v", err)
	}

	want := [][]string{
		{"product_id", "product_name", "stock_on_hand"},
		{"1002", "Mug", "8"},
		{"1003", "Lamp", "42"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecodeXLSX = %v, want %v", got, want)
	}
}
