package domain

import (
	"sort"
	"time"

	"quickshop/internal/shared/domain"
)

// CategoryRevenue chiffre d'affaires d'une catégorie
type CategoryRevenue struct {
	category string
	revenue  domain.Money
}

// Category retourne le nom de la catégorie
func (c CategoryRevenue) Category() string {
	return c.category
}

// Revenue retourne le CA arrondi de la catégorie
func (c CategoryRevenue) Revenue() domain.Money {
	return c.revenue
}

// Summary représente le résumé de revenus d'une journée logique
type Summary struct {
	date         time.Time
	totalOrders  int
	totalRevenue domain.Money
	topCategory  *string
	breakdown    []CategoryRevenue
}

// Date retourne la date logique du résumé
func (s *Summary) Date() time.Time {
	return s.date
}

// TotalOrders retourne le nombre de commandes complétées
func (s *Summary) TotalOrders() int {
	return s.totalOrders
}

// TotalRevenue retourne le CA total arrondi à 2 décimales
func (s *Summary) TotalRevenue() domain.Money {
	return s.totalRevenue
}

// TopCategory retourne la catégorie au plus fort CA (nil si aucune)
func (s *Summary) TopCategory() *string {
	return s.topCategory
}

// Breakdown retourne le CA par catégorie, trié par nom
func (s *Summary) Breakdown() []CategoryRevenue {
	return append([]CategoryRevenue{}, s.breakdown...)
}

// SummaryBuilder accumule les lignes de faits
type SummaryBuilder struct {
	date       time.Time
	orders     int
	revenue    domain.Money
	categories map[string]domain.Money
}

// NewSummaryBuilder crée un builder pour la date donnée
func NewSummaryBuilder(date time.Time) *SummaryBuilder {
	return &SummaryBuilder{
		date:       domain.NormalizeDate(date),
		revenue:    domain.ZeroMoney(),
		categories: make(map[string]domain.Money),
	}
}

// Add ajoute une commande. total nil = non comptée dans le CA;
// une catégorie absente ou vide n'entre pas dans la ventilation.
func (b *SummaryBuilder) Add(total *float64, category *string) {
	b.orders++
	if total == nil {
		return
	}
	b.revenue = b.revenue.AddFloat(*total)
	if category == nil || *category == "" {
		return
	}
	current, ok := b.categories[*category]
	if !ok {
		current = domain.ZeroMoney()
	}
	b.categories[*category] = current.AddFloat(*total)
}

// Build produit le résumé. En cas d'égalité, la catégorie de plus petit nom gagne.
func (b *SummaryBuilder) Build() *Summary {
	breakdown := make([]CategoryRevenue, 0, len(b.categories))
	for name, revenue := range b.categories {
		breakdown = append(breakdown, CategoryRevenue{category: name, revenue: revenue.Rounded()})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].category < breakdown[j].category
	})

	var top *string
	var best domain.Money
	for _, c := range breakdown {
		if top == nil || c.revenue.Cmp(best) > 0 {
			name := c.category
			top = &name
			best = c.revenue
		}
	}

	return &Summary{
		date:         b.date,
		totalOrders:  b.orders,
		totalRevenue: b.revenue.Rounded(),
		topCategory:  top,
		breakdown:    breakdown,
	}
}
