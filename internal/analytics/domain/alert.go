package domain

import (
	"sort"

	catalogdomain "quickshop/internal/catalog/domain"
)

// Seuils de stock (bornes incluses)
const (
	CriticalStockThreshold int64 = 10
	LowStockThreshold      int64 = 50
	AlertStockThreshold    int64 = 100
)

// StockStatus niveau d'alerte d'un stock
type StockStatus string

const (
	StockCritical StockStatus = "Critical"
	StockLow      StockStatus = "Low"
	StockWarning  StockStatus = "Warning"
)

// StatusForStock retourne le niveau d'alerte, false si le stock est suffisant
func StatusForStock(stock int64) (StockStatus, bool) {
	switch {
	case stock <= CriticalStockThreshold:
		return StockCritical, true
	case stock <= LowStockThreshold:
		return StockLow, true
	case stock <= AlertStockThreshold:
		return StockWarning, true
	default:
		return "", false
	}
}

// InventoryAlert ligne du rapport de stock bas
type InventoryAlert struct {
	ProductID   int64
	ProductName string
	Category    string
	WarehouseID string
	StockOnHand int64
	Status      StockStatus
}

// BuildInventoryAlerts joint inventaire et produits (jointure interne) et garde
// les stocks ≤ AlertStockThreshold, triés par stock croissant.
// Une ligne d'alerte par entrée d'inventaire (un produit peut être en alerte
// dans plusieurs entrepôts); seuls les produits sont dédoublonnés.
// Les entrées sans stock connu sont ignorées.
func BuildInventoryAlerts(products []catalogdomain.Product, inventory []catalogdomain.InventoryEntry) []InventoryAlert {
	index := make(map[catalogdomain.ProductID]catalogdomain.Product)
	for _, p := range catalogdomain.DedupProducts(products) {
		key, _ := p.Key()
		index[key] = p
	}

	alerts := make([]InventoryAlert, 0)
	for _, e := range inventory {
		key, ok := e.Key()
		if !ok || e.StockOnHand == nil {
			continue
		}
		p, ok := index[key]
		if !ok {
			continue
		}
		status, alert := StatusForStock(*e.StockOnHand)
		if !alert {
			continue
		}
		alerts = append(alerts, InventoryAlert{
			ProductID:   int64(key),
			ProductName: p.ProductName,
			Category:    p.Category,
			WarehouseID: e.WarehouseID,
			StockOnHand: *e.StockOnHand,
			Status:      status,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].StockOnHand < alerts[j].StockOnHand
	})
	return alerts
}
