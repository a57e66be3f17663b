package application

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"quickshop/internal/etl/domain"
	shareddomain "quickshop/internal/shared/domain"
)

// dateLayouts formats de date acceptés. Uniquement des formats non ambigus:
// 01/02/2006 (mois/jour ou jour/mois ?) est volontairement refusé.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"20060102",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339,
	time.RFC3339Nano,
}

var (
	errNotWholeNumber = errors.New("not a whole number")
	errNotFinite      = errors.New("not a finite number")
	errUnknownDate    = errors.New("unrecognized date format")
)

// coerceCell convertit une cellule brute dans son type logique.
// Une cellule vide donne NULL (nil) pour les types numériques et date.
func coerceCell(raw string, typ domain.LogicalType) (any, error) {
	if typ == domain.TypeText {
		return raw, nil
	}

	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}

	switch typ {
	case domain.TypeInteger:
		return parseInteger(s)
	case domain.TypeDecimal:
		return parseDecimal(s)
	case domain.TypeDate:
		return parseDate(s)
	default:
		return nil, fmt.Errorf("unsupported logical type %q", typ)
	}
}

// parseInteger accepte "42" mais aussi "42.0" (valeur entière écrite en décimal)
func parseInteger(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errNotWholeNumber
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, strconv.ErrRange
	}
	return int64(f), nil
}

func parseDecimal(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return shareddomain.NormalizeDate(t), nil
		}
	}
	return time.Time{}, errUnknownDate
}
