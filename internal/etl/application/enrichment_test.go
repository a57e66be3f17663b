package application

import (
	"errors"
	"testing"
	"time"

	catalogdomain "quickshop/internal/catalog/domain"
	"quickshop/internal/etl/domain"
	ordersdomain "quickshop/internal/orders/domain"
	shareddomain "quickshop/internal/shared/domain"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }
func day(s string) *time.Time {
	t, _ := time.Parse(shareddomain.DateLayout, s)
	return &t
}

func order(id, productID, qty int64, price float64, status string) ordersdomain.Order {
	return ordersdomain.Order{
		OrderID:     i64(id),
		OrderDate:   day("2025-10-23"),
		UserID:      i64(9000 + id%100),
		ProductID:   i64(productID),
		Qty:         i64(qty),
		UnitPrice:   f64(price),
		OrderStatus: status,
		Source:      "orders_20251023.csv",
	}
}

func classicTee() ([]catalogdomain.Product, []catalogdomain.InventoryEntry) {
	products := []catalogdomain.Product{
		{ProductID: i64(1001), ProductName: "Classic Tee", Category: "Apparel", Price: f64(19.99)},
	}
	inventory := []catalogdomain.InventoryEntry{
		{ProductID: i64(1001), WarehouseID: "W1", StockOnHand: i64(120), LastRestockDate: day("2025-10-18")},
	}
	return products, inventory
}

func TestEnrichClassicTeeScenario(t *testing.T) {
	products, inventory := classicTee()
	orders := []ordersdomain.Order{
		order(60001, 1001, 2, 19.99, "completed"),
		order(60002, 1001, 1, 19.99, "cancelled"),
	}

	enriched, err := Enrich(orders, products, inventory)
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}

	if len(enriched) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(enriched))
	}
	got := enriched[0]
	if *got.OrderID != 60001 {
		t.Errorf("Expected order_id 60001, got %d", *got.OrderID)
	}
	if got.OrderTotal == nil || *got.OrderTotal != 39.98 {
		t.Errorf("Expected order_total 39.98, got %v", got.OrderTotal)
	}
	if got.ProductName == nil || *got.ProductName != "Classic Tee" {
		t.Errorf("Expected product_name Classic Tee, got %v", got.ProductName)
	}
	if got.StockOnHand == nil || *got.StockOnHand != 120 {
		t.Errorf("Expected stock_on_hand 120, got %v", got.StockOnHand)
	}
}

func TestEnrichStatusIsCaseInsensitive(t *testing.T) {
	products, inventory := classicTee()
	orders := []ordersdomain.Order{
		order(1, 1001, 1, 1, "COMPLETED"),
		order(2, 1001, 1, 1, "Completed"),
		order(3, 1001, 1, 1, "pending"),
		order(4, 1001, 1, 1, ""),
	}

	enriched, err := Enrich(orders, products, inventory)
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if len(enriched) != 2 {
		t.Fatalf("Expected 2 completed rows, got %d", len(enriched))
	}
	for _, e := range enriched {
		if !e.IsCompleted() {
			t.Errorf("Non-completed order %d in output", *e.OrderID)
		}
	}
}

func TestEnrichKeepsUnmatchedOrders(t *testing.T) {
	products, inventory := classicTee()
	orders := []ordersdomain.Order{order(70001, 4242, 1, 5, "completed")}

	enriched, err := Enrich(orders, products, inventory)
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if len(enriched) != 1 {
		t.Fatalf("Expected unmatched order to be kept, got %d rows", len(enriched))
	}
	if enriched[0].ProductName != nil || enriched[0].Category != nil || enriched[0].StockOnHand != nil {
		t.Errorf("Expected absent enrichment fields, got %+v", enriched[0])
	}
}

func TestEnrichTotalsMatchRounding(t *testing.T) {
	orders := []ordersdomain.Order{
		order(1, 1, 3, 0.335, "completed"),
		order(2, 1, 7, 13.37, "completed"),
		order(3, 1, 1, 0.125, "completed"),
		{OrderID: i64(4), OrderStatus: "completed"},
	}

	enriched, err := Enrich(orders, nil, nil)
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	for _, e := range enriched {
		if e.Qty == nil || e.UnitPrice == nil {
			if e.OrderTotal != nil {
				t.Errorf("Expected NULL total for order %d", *e.OrderID)
			}
			continue
		}
		want := shareddomain.LineTotal(*e.Qty, *e.UnitPrice).Amount()
		if e.OrderTotal == nil || *e.OrderTotal != want {
			t.Errorf("Order %d: total %v, want %v", *e.OrderID, e.OrderTotal, want)
		}
	}
}

func TestEnrichDeduplicatesReferenceTables(t *testing.T) {
	products := []catalogdomain.Product{
		{ProductID: i64(1), ProductName: "First", Category: "A"},
		{ProductID: i64(1), ProductName: "Second", Category: "B"},
		{ProductName: "No id"},
	}
	inventory := []catalogdomain.InventoryEntry{
		{ProductID: i64(1), WarehouseID: "W1", StockOnHand: i64(5)},
		{ProductID: i64(1), WarehouseID: "W2", StockOnHand: i64(50)},
	}
	orders := []ordersdomain.Order{order(1, 1, 1, 1, "completed")}

	enriched, err := Enrich(orders, products, inventory)
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if len(enriched) != 1 {
		t.Fatalf("Join must not multiply orders, got %d rows", len(enriched))
	}
	if *enriched[0].ProductName != "First" || *enriched[0].StockOnHand != 5 {
		t.Errorf("Expected first occurrence to win, got %s / %d", *enriched[0].ProductName, *enriched[0].StockOnHand)
	}
}

func TestEnrichEmptyInput(t *testing.T) {
	products, inventory := classicTee()

	enriched, err := Enrich(nil, products, inventory)
	if err != nil {
		t.Fatalf("Expected no error on empty input, got %v", err)
	}
	if enriched == nil || len(enriched) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", enriched)
	}
}

func TestIndexProductsRejectsDuplicateKeys(t *testing.T) {
	_, err := indexProducts([]catalogdomain.Product{
		{ProductID: i64(7)},
		{ProductID: i64(7)},
	})
	if !errors.Is(err, domain.ErrJoinCardinality) {
		t.Errorf("Expected ErrJoinCardinality, got %v", err)
	}
}

func TestFilterByDate(t *testing.T) {
	orders := []ordersdomain.Order{
		order(1, 1, 1, 1, "completed"),
		{OrderID: i64(2), OrderDate: day("2025-10-22")},
		{OrderID: i64(3)},
	}

	if got := FilterByDate(orders, shareddomain.Unbounded()); len(got) != 3 {
		t.Errorf("Unbounded range should keep all rows, got %d", len(got))
	}

	got := FilterByDate(orders, shareddomain.SingleDay(*day("2025-10-23")))
	if len(got) != 1 || *got[0].OrderID != 1 {
		t.Errorf("Expected only order 1, got %d rows", len(got))
	}
}
