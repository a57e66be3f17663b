package domain

// RecordKind identifie le type d'enregistrement validé (utilisé dans les erreurs)
type RecordKind string

const (
	RecordKindProducts  RecordKind = "products"
	RecordKindInventory RecordKind = "inventory"
	RecordKindOrders    RecordKind = "orders"
)

// LogicalType représente le type logique d'une colonne
type LogicalType string

const (
	TypeInteger LogicalType = "integer"
	TypeDecimal LogicalType = "decimal"
	TypeDate    LogicalType = "date"
	TypeText    LogicalType = "text"
)

// Column décrit une colonne typée
type Column struct {
	Name string
	Type LogicalType
}

// Schema associe un type d'enregistrement à ses colonnes obligatoires (ordre conservé)
type Schema struct {
	Kind    RecordKind
	Columns []Column
}

// Names retourne les noms de colonnes dans l'ordre du schéma
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// SourceColumn colonne de traçabilité ajoutée à chaque ligne de commande
const SourceColumn = "_source"

// ProductsSchema products.csv
var ProductsSchema = Schema{
	Kind: RecordKindProducts,
	Columns: []Column{
		{Name: "product_id", Type: TypeInteger},
		{Name: "product_name", Type: TypeText},
		{Name: "category", Type: TypeText},
		{Name: "price", Type: TypeDecimal},
	},
}

// InventorySchema inventory.csv
var InventorySchema = Schema{
	Kind: RecordKindInventory,
	Columns: []Column{
		{Name: "product_id", Type: TypeInteger},
		{Name: "warehouse_id", Type: TypeText},
		{Name: "stock_on_hand", Type: TypeInteger},
		{Name: "last_restock_date", Type: TypeDate},
	},
}

// OrdersSchema orders*.csv (order_total n'est jamais lu, il est recalculé)
var OrdersSchema = Schema{
	Kind: RecordKindOrders,
	Columns: []Column{
		{Name: "order_id", Type: TypeInteger},
		{Name: "order_date", Type: TypeDate},
		{Name: "user_id", Type: TypeInteger},
		{Name: "product_id", Type: TypeInteger},
		{Name: "qty", Type: TypeInteger},
		{Name: "unit_price", Type: TypeDecimal},
		{Name: "order_status", Type: TypeText},
	},
}
