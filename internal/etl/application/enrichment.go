package application

import (
	catalogdomain "quickshop/internal/catalog/domain"
	"quickshop/internal/etl/domain"
	ordersdomain "quickshop/internal/orders/domain"
	shareddomain "quickshop/internal/shared/domain"
)

// Enrich calcule order_total, garde les commandes "completed" puis joint
// (left join) les produits et l'inventaire sur product_id.
//
// Ordre des étapes (déterministe, ne pas changer):
//  1. order_total = round_half_up(qty × unit_price, 2)
//  2. filtre order_status == "completed" (insensible à la casse)
//  3. left join products  → product_name, category
//  4. left join inventory → stock_on_hand
//
// Les tables de référence sont dédoublonnées sur product_id (première
// occurrence). Une commande sans correspondance est conservée avec des
// champs d'enrichissement nil.
func Enrich(
	orders []ordersdomain.Order,
	products []catalogdomain.Product,
	inventory []catalogdomain.InventoryEntry,
) ([]ordersdomain.EnrichedOrder, error) {
	if len(orders) == 0 {
		return []ordersdomain.EnrichedOrder{}, nil
	}

	// 1. Totaux (avant filtrage, sur toutes les lignes)
	withTotals := make([]ordersdomain.EnrichedOrder, len(orders))
	for i, o := range orders {
		withTotals[i] = ordersdomain.EnrichedOrder{Order: o, OrderTotal: orderTotal(o)}
	}

	// 2. Filtre sur le statut
	completed := withTotals[:0:0]
	for _, eo := range withTotals {
		if eo.IsCompleted() {
			completed = append(completed, eo)
		}
	}

	// 3. Index produits (many-to-one garanti ou erreur)
	productIndex, err := indexProducts(catalogdomain.DedupProducts(products))
	if err != nil {
		return nil, err
	}
	for i := range completed {
		key, ok := productKey(completed[i].ProductID)
		if !ok {
			continue
		}
		if p, found := productIndex[key]; found {
			name, category := p.ProductName, p.Category
			completed[i].ProductName = &name
			completed[i].Category = &category
		}
	}

	// 4. Index inventaire
	stockIndex, err := indexInventory(catalogdomain.DedupInventory(inventory))
	if err != nil {
		return nil, err
	}
	for i := range completed {
		key, ok := productKey(completed[i].ProductID)
		if !ok {
			continue
		}
		if e, found := stockIndex[key]; found && e.StockOnHand != nil {
			stock := *e.StockOnHand
			completed[i].StockOnHand = &stock
		}
	}

	return completed, nil
}

// orderTotal nil si qty ou unit_price est NULL
func orderTotal(o ordersdomain.Order) *float64 {
	if o.Qty == nil || o.UnitPrice == nil {
		return nil
	}
	total := shareddomain.LineTotal(*o.Qty, *o.UnitPrice).Amount()
	return &total
}

func productKey(id *int64) (catalogdomain.ProductID, bool) {
	if id == nil {
		return 0, false
	}
	return catalogdomain.ProductID(*id), true
}

// indexProducts construit l'index de jointure et refuse toute clé dupliquée
// (une commande ne doit jamais se multiplier lors de la jointure).
// Enrich lui passe des références déjà dédoublonnées: l'erreur ne peut venir
// que d'un appel sans DedupProducts.
func indexProducts(products []catalogdomain.Product) (map[catalogdomain.ProductID]catalogdomain.Product, error) {
	index := make(map[catalogdomain.ProductID]catalogdomain.Product, len(products))
	for _, p := range products {
		key, ok := p.Key()
		if !ok {
			continue
		}
		if _, dup := index[key]; dup {
			return nil, &domain.JoinCardinalityError{Kind: domain.RecordKindProducts, ProductID: int64(key)}
		}
		index[key] = p
	}
	return index, nil
}

// indexInventory même garde-fou, sur l'inventaire dédoublonné
func indexInventory(entries []catalogdomain.InventoryEntry) (map[catalogdomain.ProductID]catalogdomain.InventoryEntry, error) {
	index := make(map[catalogdomain.ProductID]catalogdomain.InventoryEntry, len(entries))
	for _, e := range entries {
		key, ok := e.Key()
		if !ok {
			continue
		}
		if _, dup := index[key]; dup {
			return nil, &domain.JoinCardinalityError{Kind: domain.RecordKindInventory, ProductID: int64(key)}
		}
		index[key] = e
	}
	return index, nil
}
