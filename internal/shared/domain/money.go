package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MoneyPlaces nombre de décimales conservées pour tous les montants
const MoneyPlaces int32 = 2

// Money représente une valeur monétaire exacte (pas d'erreur d'arrondi float)
type Money struct {
	amount decimal.Decimal
}

// NewMoney crée une nouvelle instance de Money avec validation
func NewMoney(amount float64) (Money, error) {
	if amount < 0 {
		return Money{}, errors.New("amount cannot be negative")
	}
	return Money{amount: decimal.NewFromFloat(amount)}, nil
}

// ZeroMoney retourne un montant nul
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// LineTotal calcule qty × prix unitaire arrondi au centime (arrondi half-up).
// decimal.NewFromFloat garde la représentation décimale la plus courte du
// float (19.99 reste 19.99), donc 2 × 19.99 = 39.98 exactement.
func LineTotal(qty int64, unitPrice float64) Money {
	total := decimal.NewFromInt(qty).Mul(decimal.NewFromFloat(unitPrice))
	return Money{amount: total.Round(MoneyPlaces)}
}

// Amount retourne le montant en float64 (pour les sorties Parquet / SQL / JSON)
func (m Money) Amount() float64 {
	f, _ := m.amount.Float64()
	return f
}

// Add additionne deux montants
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// AddFloat additionne un montant float (déjà arrondi en amont)
func (m Money) AddFloat(f float64) Money {
	return Money{amount: m.amount.Add(decimal.NewFromFloat(f))}
}

// Rounded retourne le montant arrondi au centime
func (m Money) Rounded() Money {
	return Money{amount: m.amount.Round(MoneyPlaces)}
}

// Cmp compare deux montants (-1, 0, 1)
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// IsZero vérifie si le montant est zéro
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// String retourne le montant formaté avec deux décimales
func (m Money) String() string {
	return m.amount.StringFixed(MoneyPlaces)
}
