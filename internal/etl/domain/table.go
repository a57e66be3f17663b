package domain

import (
	"fmt"
	"time"
)

// RawTable représente un extrait CSV non typé (toutes les cellules sont des strings)
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Len retourne le nombre de lignes
func (t RawTable) Len() int {
	return len(t.Rows)
}

// ColumnIndex retourne la position d'une colonne, -1 si absente
func (t RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Table représente une table typée et nommée.
// Valeurs possibles d'une cellule selon le type de colonne:
//   - TypeInteger: int64 ou nil
//   - TypeDecimal: float64 ou nil
//   - TypeDate:    time.Time (minuit UTC) ou nil
//   - TypeText:    string (nil pour les colonnes d'enrichissement sans correspondance)
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// NewTable crée une table vide avec les colonnes données
func NewTable(name string, columns []Column) *Table {
	return &Table{
		Name:    name,
		Columns: append([]Column{}, columns...),
		Rows:    make([][]any, 0),
	}
}

// Len retourne le nombre de lignes
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex retourne la position d'une colonne, -1 si absente
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnNames retourne les noms de colonnes dans l'ordre
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// AppendRow ajoute une ligne (la longueur doit correspondre aux colonnes)
func (t *Table) AppendRow(row []any) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("table %s: row has %d cells, expected %d", t.Name, len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// WithName retourne une copie superficielle de la table sous un autre nom
func (t *Table) WithName(name string) *Table {
	return &Table{Name: name, Columns: t.Columns, Rows: t.Rows}
}

// Accesseurs typés utilisés par les builders de records

// Int retourne la cellule entière (nil si NULL ou colonne absente)
func (t *Table) Int(row []any, col string) *int64 {
	i := t.ColumnIndex(col)
	if i < 0 || row[i] == nil {
		return nil
	}
	if v, ok := row[i].(int64); ok {
		return &v
	}
	return nil
}

// Float retourne la cellule décimale (nil si NULL ou colonne absente)
func (t *Table) Float(row []any, col string) *float64 {
	i := t.ColumnIndex(col)
	if i < 0 || row[i] == nil {
		return nil
	}
	if v, ok := row[i].(float64); ok {
		return &v
	}
	return nil
}

// Date retourne la cellule date (nil si NULL ou colonne absente)
func (t *Table) Date(row []any, col string) *time.Time {
	i := t.ColumnIndex(col)
	if i < 0 || row[i] == nil {
		return nil
	}
	if v, ok := row[i].(time.Time); ok {
		return &v
	}
	return nil
}

// Text retourne la cellule texte ("" si absente)
func (t *Table) Text(row []any, col string) string {
	i := t.ColumnIndex(col)
	if i < 0 || row[i] == nil {
		return ""
	}
	if v, ok := row[i].(string); ok {
		return v
	}
	return fmt.Sprint(row[i])
}

// OptionalText retourne la cellule texte ou nil si NULL
func (t *Table) OptionalText(row []any, col string) *string {
	i := t.ColumnIndex(col)
	if i < 0 || row[i] == nil {
		return nil
	}
	s := t.Text(row, col)
	return &s
}
