package application

import (
	"quickshop/internal/etl/domain"
)

// Validate vérifie la présence des colonnes du schéma puis convertit chaque cellule.
// Retourne une NOUVELLE table (l'entrée n'est jamais modifiée):
//   - colonnes du schéma d'abord, dans l'ordre du schéma, typées
//   - colonnes supplémentaires ensuite (ex: _source), conservées en texte
//
// Tout ou rien: la première cellule invalide rejette la table entière.
// Le nombre de lignes est toujours conservé.
func Validate(raw domain.RawTable, schema domain.Schema) (*domain.Table, error) {
	// 1. Présence: on liste TOUTES les colonnes manquantes
	var missing []string
	for _, c := range schema.Columns {
		if raw.ColumnIndex(c.Name) < 0 {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.SchemaError{Kind: schema.Kind, Missing: missing}
	}

	// 2. Plan de colonnes: schéma puis passthrough
	columns := make([]domain.Column, 0, len(raw.Columns))
	sources := make([]int, 0, len(raw.Columns))
	inSchema := make(map[string]struct{}, len(schema.Columns))
	for _, c := range schema.Columns {
		columns = append(columns, c)
		sources = append(sources, raw.ColumnIndex(c.Name))
		inSchema[c.Name] = struct{}{}
	}
	for i, name := range raw.Columns {
		if _, ok := inSchema[name]; ok {
			continue
		}
		columns = append(columns, domain.Column{Name: name, Type: domain.TypeText})
		sources = append(sources, i)
	}

	// 3. Conversion cellule par cellule
	out := domain.NewTable(string(schema.Kind), columns)
	out.Rows = make([][]any, 0, raw.Len())
	for r, rawRow := range raw.Rows {
		row := make([]any, len(columns))
		for c, col := range columns {
			cell := ""
			if src := sources[c]; src < len(rawRow) {
				cell = rawRow[src]
			}
			v, err := coerceCell(cell, col.Type)
			if err != nil {
				return nil, &domain.ValidationError{
					Kind:   schema.Kind,
					Column: col.Name,
					Type:   col.Type,
					Row:    r + 1,
					Value:  cell,
					Err:    err,
				}
			}
			row[c] = v
		}
		out.Rows = append(out.Rows, row)
	}

	return out, nil
}

// ValidateProducts valide products.csv
func ValidateProducts(raw domain.RawTable) (*domain.Table, error) {
	return Validate(raw, domain.ProductsSchema)
}

// ValidateInventory valide inventory.csv
func ValidateInventory(raw domain.RawTable) (*domain.Table, error) {
	return Validate(raw, domain.InventorySchema)
}

// ValidateOrders valide les extractions de commandes concaténées
func ValidateOrders(raw domain.RawTable) (*domain.Table, error) {
	return Validate(raw, domain.OrdersSchema)
}
