package domain

import (
	"strings"
	"time"

	etldomain "quickshop/internal/etl/domain"
)

// OrderStatus représente le statut d'une commande (comparaison insensible à la casse)
type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusPending   OrderStatus = "pending"
)

// Order représente une ligne d'extraction de commandes validée
type Order struct {
	OrderID     *int64
	OrderDate   *time.Time
	UserID      *int64
	ProductID   *int64
	Qty         *int64
	UnitPrice   *float64
	OrderStatus string
	Source      string // fichier d'origine (traçabilité)

	// Extra colonnes passthrough de l'extraction (texte brut), par nom
	Extra map[string]string
}

// IsCompleted vérifie le statut "completed" sans tenir compte de la casse
func (o Order) IsCompleted() bool {
	return OrderStatus(strings.ToLower(o.OrderStatus)) == OrderStatusCompleted
}

// EnrichedOrder représente une commande complétée enrichie.
// Les champs d'enrichissement sont nil quand aucune référence ne correspond.
type EnrichedOrder struct {
	Order
	OrderTotal  *float64
	ProductName *string
	Category    *string
	StockOnHand *int64
}

// OrdersFromTable construit les records typés depuis une table validée.
// Les colonnes passthrough (voir PassthroughColumns) sont conservées dans Extra.
func OrdersFromTable(t *etldomain.Table) []Order {
	extra := PassthroughColumns(t)
	orders := make([]Order, 0, t.Len())
	for _, row := range t.Rows {
		o := Order{
			OrderID:     t.Int(row, "order_id"),
			OrderDate:   t.Date(row, "order_date"),
			UserID:      t.Int(row, "user_id"),
			ProductID:   t.Int(row, "product_id"),
			Qty:         t.Int(row, "qty"),
			UnitPrice:   t.Float(row, "unit_price"),
			OrderStatus: t.Text(row, "order_status"),
			Source:      t.Text(row, etldomain.SourceColumn),
		}
		if len(extra) > 0 {
			o.Extra = make(map[string]string, len(extra))
			for _, name := range extra {
				if i := t.ColumnIndex(name); row[i] != nil {
					o.Extra[name] = t.Text(row, name)
				}
			}
		}
		orders = append(orders, o)
	}
	return orders
}

// PassthroughColumns colonnes de t qui ne sont ni du schéma orders ni de la
// table de faits (ex: coupon, channel), dans l'ordre de t.
func PassthroughColumns(t *etldomain.Table) []string {
	known := make(map[string]struct{}, len(EnrichedColumns)+len(etldomain.OrdersSchema.Columns))
	for _, c := range EnrichedColumns {
		known[c.Name] = struct{}{}
	}
	for _, c := range etldomain.OrdersSchema.Columns {
		known[c.Name] = struct{}{}
	}

	var extra []string
	for _, c := range t.Columns {
		if _, ok := known[c.Name]; !ok {
			extra = append(extra, c.Name)
		}
	}
	return extra
}

// EnrichedColumns ordre stable des colonnes de la table de faits:
// identité/date/statut, produit/catégorie, quantité/prix/total,
// enrichissement, puis traçabilité. Les colonnes passthrough se placent
// juste avant _source (voir FactColumns).
var EnrichedColumns = []etldomain.Column{
	{Name: "order_id", Type: etldomain.TypeInteger},
	{Name: "order_date", Type: etldomain.TypeDate},
	{Name: "user_id", Type: etldomain.TypeInteger},
	{Name: "order_status", Type: etldomain.TypeText},
	{Name: "product_id", Type: etldomain.TypeInteger},
	{Name: "product_name", Type: etldomain.TypeText},
	{Name: "category", Type: etldomain.TypeText},
	{Name: "qty", Type: etldomain.TypeInteger},
	{Name: "unit_price", Type: etldomain.TypeDecimal},
	{Name: "order_total", Type: etldomain.TypeDecimal},
	{Name: "stock_on_hand", Type: etldomain.TypeInteger},
	{Name: etldomain.SourceColumn, Type: etldomain.TypeText},
}

// FactColumns colonnes de la table de faits: EnrichedColumns avec les
// colonnes passthrough (texte) insérées après stock_on_hand.
func FactColumns(extra ...string) []etldomain.Column {
	last := len(EnrichedColumns) - 1
	columns := make([]etldomain.Column, 0, len(EnrichedColumns)+len(extra))
	columns = append(columns, EnrichedColumns[:last]...)
	for _, name := range extra {
		columns = append(columns, etldomain.Column{Name: name, Type: etldomain.TypeText})
	}
	return append(columns, EnrichedColumns[last])
}

// EnrichedToTable convertit les commandes enrichies en table typée (mode table-store).
// extra liste les colonnes passthrough à reporter, dans leur ordre d'entrée.
func EnrichedToTable(name string, orders []EnrichedOrder, extra ...string) *etldomain.Table {
	t := etldomain.NewTable(name, FactColumns(extra...))
	for _, o := range orders {
		row := make([]any, 0, len(t.Columns))
		row = append(row,
			intCell(o.OrderID),
			dateCell(o.OrderDate),
			intCell(o.UserID),
			o.OrderStatus,
			intCell(o.ProductID),
			textCell(o.ProductName),
			textCell(o.Category),
			intCell(o.Qty),
			floatCell(o.UnitPrice),
			floatCell(o.OrderTotal),
			intCell(o.StockOnHand),
		)
		for _, col := range extra {
			if v, ok := o.Extra[col]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		t.Rows = append(t.Rows, append(row, o.Source))
	}
	return t
}

// EnrichedFromTable relit une table de faits (lecture aval par les rapports)
func EnrichedFromTable(t *etldomain.Table) []EnrichedOrder {
	base := OrdersFromTable(t)
	out := make([]EnrichedOrder, len(base))
	for i, row := range t.Rows {
		out[i] = EnrichedOrder{
			Order:       base[i],
			OrderTotal:  t.Float(row, "order_total"),
			ProductName: t.OptionalText(row, "product_name"),
			Category:    t.OptionalText(row, "category"),
			StockOnHand: t.Int(row, "stock_on_hand"),
		}
	}
	return out
}

func intCell(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatCell(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func dateCell(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}

func textCell(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
