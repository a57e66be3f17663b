package domain

import (
	"errors"
	"time"
)

// Formats de date utilisés dans les noms de fichiers et de tables
const (
	DateLayout      = "2006-01-02"
	DateTokenLayout = "20060102"
)

// DateRange représente une période de jours calendaires, bornes incluses.
// DESIGN PATTERN: Value Object (DDD)
//   - Immutable: pas de setters, valeurs fixées à la création
//   - Chaque borne est optionnelle (période ouverte de ce côté)
//   - Les bornes sont normalisées à minuit UTC
type DateRange struct {
	start *time.Time
	end   *time.Time
}

// NewDateRange crée un DateRange à partir de bornes optionnelles
func NewDateRange(start, end *time.Time) (DateRange, error) {
	var dr DateRange
	if start != nil {
		s := NormalizeDate(*start)
		dr.start = &s
	}
	if end != nil {
		e := NormalizeDate(*end)
		dr.end = &e
	}
	if dr.start != nil && dr.end != nil && dr.start.After(*dr.end) {
		return DateRange{}, errors.New("start date must not be after end date")
	}
	return dr, nil
}

// SingleDay crée un DateRange couvrant un seul jour logique
func SingleDay(day time.Time) DateRange {
	d := NormalizeDate(day)
	return DateRange{start: &d, end: &d}
}

// Unbounded retourne une période sans borne
func Unbounded() DateRange {
	return DateRange{}
}

// NormalizeDate supprime la composante horaire (minuit UTC, même jour calendaire)
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parse une date YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t), nil
}

// Start retourne la borne de début si elle existe
func (dr DateRange) Start() (time.Time, bool) {
	if dr.start == nil {
		return time.Time{}, false
	}
	return *dr.start, true
}

// End retourne la borne de fin si elle existe
func (dr DateRange) End() (time.Time, bool) {
	if dr.end == nil {
		return time.Time{}, false
	}
	return *dr.end, true
}

// IsBounded vrai si au moins une borne est fournie
func (dr DateRange) IsBounded() bool {
	return dr.start != nil || dr.end != nil
}

// IsClosed vrai si les deux bornes sont fournies
func (dr DateRange) IsClosed() bool {
	return dr.start != nil && dr.end != nil
}

// IsSingleDay vrai si début et fin tombent le même jour
func (dr DateRange) IsSingleDay() bool {
	return dr.IsClosed() && dr.start.Equal(*dr.end)
}

// Contains vérifie si un jour tombe dans la période (fin incluse sur toute la journée)
func (dr DateRange) Contains(t time.Time) bool {
	d := NormalizeDate(t)
	if dr.start != nil && d.Before(*dr.start) {
		return false
	}
	if dr.end != nil && d.After(*dr.end) {
		return false
	}
	return true
}

// String retourne une représentation lisible pour les logs
func (dr DateRange) String() string {
	s, e := "*", "*"
	if dr.start != nil {
		s = dr.start.Format(DateLayout)
	}
	if dr.end != nil {
		e = dr.end.Format(DateLayout)
	}
	return "[" + s + ", " + e + "]"
}
