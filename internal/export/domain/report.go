package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	analyticsdomain "quickshop/internal/analytics/domain"
	shareddomain "quickshop/internal/shared/domain"
)

// AlertsFormat représente le format du rapport d'alertes de stock
type AlertsFormat string

const (
	AlertsFormatCSV  AlertsFormat = "csv"
	AlertsFormatXLSX AlertsFormat = "xlsx"
)

// ParseAlertsFormat valide un format d'alertes
func ParseAlertsFormat(s string) (AlertsFormat, error) {
	switch AlertsFormat(s) {
	case AlertsFormatCSV, AlertsFormatXLSX:
		return AlertsFormat(s), nil
	default:
		return "", errors.New("invalid alerts format: " + s)
	}
}

// SummaryFileName summary_<date>.json
func SummaryFileName(date time.Time) string {
	return fmt.Sprintf("summary_%s.json", date.Format(shareddomain.DateLayout))
}

// AlertsFileName inventory_alerts_<date>.<csv|xlsx>
func AlertsFileName(date time.Time, format AlertsFormat) string {
	return fmt.Sprintf("inventory_alerts_%s.%s", date.Format(shareddomain.DateLayout), format)
}

// SummaryDocument représentation JSON du résumé
type SummaryDocument struct {
	Date              string             `json:"date"`
	TotalOrders       int                `json:"total_orders"`
	TotalRevenue      float64            `json:"total_revenue"`
	TopCategory       *string            `json:"top_category"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
}

// NewSummaryDocument convertit le résumé du domaine
func NewSummaryDocument(s *analyticsdomain.Summary) SummaryDocument {
	breakdown := make(map[string]float64)
	for _, c := range s.Breakdown() {
		breakdown[c.Category()] = c.Revenue().Amount()
	}
	return SummaryDocument{
		Date:              s.Date().Format(shareddomain.DateLayout),
		TotalOrders:       s.TotalOrders(),
		TotalRevenue:      s.TotalRevenue().Amount(),
		TopCategory:       s.TopCategory(),
		CategoryBreakdown: breakdown,
	}
}

// AlertCSVHeaders en-têtes du rapport d'alertes
func AlertCSVHeaders() []string {
	return []string{
		"product_id",
		"product_name",
		"category",
		"warehouse_id",
		"stock_on_hand",
		"stock_status",
	}
}

// AlertRow convertit une alerte en ligne CSV/XLSX
func AlertRow(a analyticsdomain.InventoryAlert) []string {
	return []string{
		strconv.FormatInt(a.ProductID, 10),
		a.ProductName,
		a.Category,
		a.WarehouseID,
		strconv.FormatInt(a.StockOnHand, 10),
		string(a.Status),
	}
}
