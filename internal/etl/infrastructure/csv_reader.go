package infrastructure

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"quickshop/internal/etl/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVReader lit les extractions CSV en tables brutes (non typées)
type CSVReader struct{}

// NewCSVReader crée un nouveau lecteur CSV
func NewCSVReader() *CSVReader {
	return &CSVReader{}
}

// ReadCSV lit un fichier CSV avec en-tête. Les lignes plus courtes que l'en-tête
// sont complétées par le validateur (cellules vides = NULL).
func (r *CSVReader) ReadCSV(path string) (domain.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RawTable{}, err
	}
	defer f.Close()

	return readCSV(f, path)
}

func readCSV(src io.Reader, label string) (domain.RawTable, error) {
	br := bufio.NewReader(src)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		// Fichier vide: aucune colonne, aucune ligne
		return domain.RawTable{Columns: []string{}, Rows: [][]string{}}, nil
	}
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read header of %s: %w", label, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([][]string, 0, 256)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.RawTable{}, fmt.Errorf("read %s: %w", label, err)
		}
		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return domain.RawTable{}, fmt.Errorf("read %s: line %d has %d fields, header has %d",
				label, line, len(record), len(header))
		}
		rows = append(rows, record)
	}

	return domain.RawTable{Columns: header, Rows: rows}, nil
}

// Concat concatène plusieurs tables brutes. L'union des colonnes est faite
// dans l'ordre de première apparition; les cellules absentes sont vides.
func Concat(tables ...domain.RawTable) domain.RawTable {
	var columns []string
	position := make(map[string]int)
	total := 0
	for _, t := range tables {
		total += t.Len()
		for _, c := range t.Columns {
			if _, ok := position[c]; !ok {
				position[c] = len(columns)
				columns = append(columns, c)
			}
		}
	}

	rows := make([][]string, 0, total)
	for _, t := range tables {
		mapping := make([]int, len(t.Columns))
		for i, c := range t.Columns {
			mapping[i] = position[c]
		}
		for _, rec := range t.Rows {
			row := make([]string, len(columns))
			for i, v := range rec {
				row[mapping[i]] = v
			}
			rows = append(rows, row)
		}
	}

	if columns == nil {
		columns = []string{}
	}
	return domain.RawTable{Columns: columns, Rows: rows}
}

// WithSource ajoute la colonne de traçabilité _source à toutes les lignes
func WithSource(t domain.RawTable, source string) domain.RawTable {
	if idx := t.ColumnIndex(domain.SourceColumn); idx >= 0 {
		rows := make([][]string, len(t.Rows))
		for i, rec := range t.Rows {
			row := make([]string, len(t.Columns))
			copy(row, rec)
			row[idx] = source
			rows[i] = row
		}
		return domain.RawTable{Columns: t.Columns, Rows: rows}
	}

	columns := append(append([]string{}, t.Columns...), domain.SourceColumn)
	rows := make([][]string, len(t.Rows))
	for i, rec := range t.Rows {
		row := make([]string, len(t.Columns)+1)
		copy(row, rec)
		row[len(t.Columns)] = source
		rows[i] = row
	}
	return domain.RawTable{Columns: columns, Rows: rows}
}
