package infrastructure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"quickshop/internal/etl/domain"
	ordersdomain "quickshop/internal/orders/domain"
	"quickshop/internal/testhelpers"
)

func sampleTable(name string) *domain.Table {
	t := domain.NewTable(name, []domain.Column{
		{Name: "product_id", Type: domain.TypeInteger},
		{Name: "price", Type: domain.TypeDecimal},
		{Name: "restocked", Type: domain.TypeDate},
		{Name: "label", Type: domain.TypeText},
	})
	t.Rows = append(t.Rows,
		[]any{int64(1001), 19.99, time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC), "Classic Tee"},
		[]any{nil, nil, nil, nil},
		[]any{int64(-5), 0.1, time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), ""},
	)
	return t
}

func openPebble(t *testing.T) *PebbleStore {
	t.Helper()
	store, err := NewPebbleStore(filepath.Join(t.TempDir(), "quickshop_etl.db"))
	if err != nil {
		t.Fatalf("NewPebbleStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPebbleStoreRoundTrip(t *testing.T) {
	store := openPebble(t)
	ctx := context.Background()
	want := sampleTable("products")

	if err := store.ReplaceTable(ctx, want); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}
	got, err := store.ReadTable(ctx, "products")
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}

	if !reflect.DeepEqual(got.Columns, want.Columns) {
		t.Errorf("Columns = %v, want %v", got.Columns, want.Columns)
	}
	if !reflect.DeepEqual(got.Rows, want.Rows) {
		t.Errorf("Rows = %v, want %v", got.Rows, want.Rows)
	}
}

func TestPebbleStoreReplaceDoesNotAppend(t *testing.T) {
	store := openPebble(t)
	ctx := context.Background()

	if err := store.ReplaceTable(ctx, sampleTable("orders_20251023")); err != nil {
		t.Fatal(err)
	}
	smaller := sampleTable("orders_20251023")
	smaller.Rows = smaller.Rows[:1]
	if err := store.ReplaceTable(ctx, smaller); err != nil {
		t.Fatal(err)
	}
	// table voisine au préfixe proche: ne doit pas être touchée
	if err := store.ReplaceTable(ctx, sampleTable("orders_20251023_to_20251024")); err != nil {
		t.Fatal(err)
	}

	got, err := store.ReadTable(ctx, "orders_20251023")
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 1 {
		t.Errorf("Expected 1 row after replace, got %d", got.Len())
	}

	tables, err := store.Tables(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 2 {
		t.Errorf("Expected 2 tables, got %v", tables)
	}
}

func TestPebbleStoreMissingTable(t *testing.T) {
	_, err := openPebble(t).ReadTable(context.Background(), "nope")
	if !errors.Is(err, domain.ErrTableNotFound) {
		t.Errorf("Expected ErrTableNotFound, got %v", err)
	}
}

func TestPebbleStoreRejectsUnsafeNames(t *testing.T) {
	err := openPebble(t).ReplaceTable(context.Background(), sampleTable("orders; DROP"))
	if !errors.Is(err, domain.ErrWrite) {
		t.Errorf("Expected ErrWrite, got %v", err)
	}
}

func TestParquetEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "orders_2025-10-23.parquet")

	if err := NewParquetWriter().WriteOrders(path, nil); err != nil {
		t.Fatalf("WriteOrders failed: %v", err)
	}
	rows, err := NewParquetReader().ReadOrders(path)
	if err != nil {
		t.Fatalf("ReadOrders failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected 0 rows, got %d", len(rows))
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected no leftover temp file, got %d entries", len(entries))
	}
}

func TestParquetWriteFailureLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	// la cible est un répertoire: le rename final échoue
	target := filepath.Join(dir, "orders_2025-10-23.parquet")
	testhelpers.WriteFile(t, target, "keep.txt", "previous")

	err := NewParquetWriter().WriteOrders(target, nil)

	var writeErr *domain.WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Expected WriteError, got %v", err)
	}
	if !errors.Is(err, domain.ErrWrite) || writeErr.Target != target {
		t.Errorf("Unexpected write error %+v", writeErr)
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

func TestParquetFileIsWorldReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders_2025-10-23.parquet")

	if err := NewParquetWriter().WriteOrders(path, nil); err != nil {
		t.Fatalf("WriteOrders failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("Expected mode 0644, got %v", perm)
	}
}

func TestParquetRoundTripKeepsNulls(t *testing.T) {
	name, stock := "Classic Tee", int64(120)
	total := 39.98
	id, qty, pid := int64(60001), int64(2), int64(1001)
	price := 19.99
	date := time.Date(2025, 10, 23, 0, 0, 0, 0, time.UTC)
	orders := []ordersdomain.EnrichedOrder{
		{
			Order: ordersdomain.Order{
				OrderID: &id, OrderDate: &date, ProductID: &pid, Qty: &qty, UnitPrice: &price,
				OrderStatus: "completed", Source: "orders_20251023.csv",
			},
			OrderTotal: &total, ProductName: &name, StockOnHand: &stock,
		},
	}
	path := filepath.Join(t.TempDir(), "orders.parquet")

	if err := NewParquetWriter().WriteOrders(path, orders); err != nil {
		t.Fatalf("WriteOrders failed: %v", err)
	}
	got, err := NewParquetReader().ReadOrders(path)
	if err != nil {
		t.Fatalf("ReadOrders failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(got))
	}
	if got[0].UserID != nil || got[0].Category != nil {
		t.Error("Expected NULL user_id and category to survive the round trip")
	}
	if !got[0].OrderDate.Equal(date) || *got[0].OrderTotal != total {
		t.Errorf("Unexpected row %+v", got[0])
	}
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	testhelpers.SkipIfNoDatabase(t)
	db := testhelpers.SetupTestDB(t)
	store := NewPostgresStore(db, "postgres")
	ctx := context.Background()
	want := sampleTable("qs_test_products")

	if err := store.ReplaceTable(ctx, want); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}
	if err := store.ReplaceTable(ctx, want); err != nil {
		t.Fatalf("Second ReplaceTable failed: %v", err)
	}
	defer db.Exec("DROP TABLE IF EXISTS qs_test_products")

	got, err := store.ReadTable(ctx, "qs_test_products")
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if got.Len() != want.Len() {
		t.Fatalf("Expected %d rows, got %d", want.Len(), got.Len())
	}
	if !reflect.DeepEqual(got.Rows[0], want.Rows[0]) {
		t.Errorf("Row 0 = %v, want %v", got.Rows[0], want.Rows[0])
	}
}
