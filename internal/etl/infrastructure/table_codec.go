package infrastructure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"quickshop/internal/etl/domain"
	shareddomain "quickshop/internal/shared/domain"
)

// tableNamePattern noms de tables acceptés par les stores (identifiant SQL simple)
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateTableName refuse tout nom qui ne serait pas un identifiant sûr
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

type columnMeta struct {
	Name string             `json:"name"`
	Type domain.LogicalType `json:"type"`
}

type tableMeta struct {
	Columns []columnMeta `json:"columns"`
	Rows    int          `json:"rows"`
}

func newTableMeta(t *domain.Table) tableMeta {
	cols := make([]columnMeta, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = columnMeta{Name: c.Name, Type: c.Type}
	}
	return tableMeta{Columns: cols, Rows: t.Len()}
}

func (m tableMeta) columns() []domain.Column {
	cols := make([]domain.Column, len(m.Columns))
	for i, c := range m.Columns {
		cols[i] = domain.Column{Name: c.Name, Type: c.Type}
	}
	return cols
}

// encodeRow sérialise une ligne en tableau JSON (dates au format YYYY-MM-DD)
func encodeRow(columns []domain.Column, row []any) ([]byte, error) {
	cells := make([]any, len(row))
	for i, v := range row {
		if ts, ok := v.(time.Time); ok && columns[i].Type == domain.TypeDate {
			cells[i] = ts.Format(shareddomain.DateLayout)
			continue
		}
		cells[i] = v
	}
	return json.Marshal(cells)
}

// decodeRow relit une ligne en respectant le type logique de chaque colonne
func decodeRow(columns []domain.Column, data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var cells []any
	if err := dec.Decode(&cells); err != nil {
		return nil, err
	}
	if len(cells) != len(columns) {
		return nil, fmt.Errorf("row has %d cells, expected %d", len(cells), len(columns))
	}

	row := make([]any, len(cells))
	for i, raw := range cells {
		if raw == nil {
			continue
		}
		v, err := decodeCell(columns[i].Type, raw)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", columns[i].Name, err)
		}
		row[i] = v
	}
	return row, nil
}

func decodeCell(typ domain.LogicalType, raw any) (any, error) {
	switch typ {
	case domain.TypeInteger:
		n, ok := raw.(json.Number)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", raw)
		}
		return n.Int64()
	case domain.TypeDecimal:
		n, ok := raw.(json.Number)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", raw)
		}
		return n.Float64()
	case domain.TypeDate:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected date string, got %T", raw)
		}
		return time.Parse(shareddomain.DateLayout, s)
	default:
		s, ok := raw.(string)
		if !ok {
			return fmt.Sprint(raw), nil
		}
		return s, nil
	}
}
