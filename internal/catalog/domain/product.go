package domain

import (
	"time"

	etldomain "quickshop/internal/etl/domain"
)

// ProductID représente l'identifiant unique d'un produit
type ProductID int64

// Product représente une ligne de la table de référence products
type Product struct {
	ProductID   *int64
	ProductName string
	Category    string
	Price       *float64
}

// Key retourne la clé de jointure (false si product_id est NULL)
func (p Product) Key() (ProductID, bool) {
	if p.ProductID == nil {
		return 0, false
	}
	return ProductID(*p.ProductID), true
}

// InventoryEntry représente une ligne de la table de référence inventory.
// Un produit peut avoir une entrée par entrepôt (many-to-one vers Product).
type InventoryEntry struct {
	ProductID       *int64
	WarehouseID     string
	StockOnHand     *int64
	LastRestockDate *time.Time
}

// Key retourne la clé de jointure (false si product_id est NULL)
func (e InventoryEntry) Key() (ProductID, bool) {
	if e.ProductID == nil {
		return 0, false
	}
	return ProductID(*e.ProductID), true
}

// ProductsFromTable construit les records typés depuis une table validée
func ProductsFromTable(t *etldomain.Table) []Product {
	products := make([]Product, 0, t.Len())
	for _, row := range t.Rows {
		products = append(products, Product{
			ProductID:   t.Int(row, "product_id"),
			ProductName: t.Text(row, "product_name"),
			Category:    t.Text(row, "category"),
			Price:       t.Float(row, "price"),
		})
	}
	return products
}

// InventoryFromTable construit les records typés depuis une table validée
func InventoryFromTable(t *etldomain.Table) []InventoryEntry {
	entries := make([]InventoryEntry, 0, t.Len())
	for _, row := range t.Rows {
		entries = append(entries, InventoryEntry{
			ProductID:       t.Int(row, "product_id"),
			WarehouseID:     t.Text(row, "warehouse_id"),
			StockOnHand:     t.Int(row, "stock_on_hand"),
			LastRestockDate: t.Date(row, "last_restock_date"),
		})
	}
	return entries
}

// DedupProducts garde la première occurrence de chaque product_id (ordre d'entrée).
// Les lignes sans product_id ne peuvent pas être jointes et sont écartées.
func DedupProducts(products []Product) []Product {
	seen := make(map[ProductID]struct{}, len(products))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		key, ok := p.Key()
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// DedupInventory garde la première entrée d'inventaire de chaque product_id
func DedupInventory(entries []InventoryEntry) []InventoryEntry {
	seen := make(map[ProductID]struct{}, len(entries))
	out := make([]InventoryEntry, 0, len(entries))
	for _, e := range entries {
		key, ok := e.Key()
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
