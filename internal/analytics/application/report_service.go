package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quickshop/internal/analytics/domain"
	catalogdomain "quickshop/internal/catalog/domain"
	etldomain "quickshop/internal/etl/domain"
	ordersdomain "quickshop/internal/orders/domain"
	sharedinfra "quickshop/internal/shared/infrastructure"
)

var (
	// ErrNoOrders l'exécution n'a produit aucune commande: rapports non générés
	ErrNoOrders = errors.New("run produced no orders, reports skipped")
	// ErrNoReportDate l'exécution ne porte pas sur une journée logique unique
	ErrNoReportDate = errors.New("run has no logical date, reports need a single day")
)

// FactSource relit les données produites par une exécution
type FactSource interface {
	Orders(ctx context.Context, result etldomain.RunResult) ([]ordersdomain.EnrichedOrder, error)
	Reference(ctx context.Context, result etldomain.RunResult) ([]catalogdomain.Product, []catalogdomain.InventoryEntry, error)
}

// ReportWriter persiste les rapports
type ReportWriter interface {
	WriteSummary(summary *domain.Summary) (string, error)
	WriteAlerts(date time.Time, alerts []domain.InventoryAlert) (string, error)
}

// Reports rapports générés pour une exécution
type Reports struct {
	Summary     *domain.Summary
	Alerts      []domain.InventoryAlert
	SummaryPath string
	AlertsPath  string
}

// ReportService génère le résumé de revenus et les alertes de stock
// à partir du seul RunResult (jamais de relecture pour décider).
type ReportService struct {
	sources map[etldomain.OutputFormat]FactSource
	writer  ReportWriter
	logger  *sharedinfra.Logger
}

// NewReportService crée le service; sources associe un format d'artefact à son lecteur
func NewReportService(
	sources map[etldomain.OutputFormat]FactSource,
	writer ReportWriter,
	logger *sharedinfra.Logger,
) *ReportService {
	return &ReportService{sources: sources, writer: writer, logger: logger}
}

// Generate construit et écrit les rapports d'une exécution réussie
func (s *ReportService) Generate(ctx context.Context, result etldomain.RunResult) (*Reports, error) {
	if !result.HasOrders {
		s.logger.Infof("run %s has no orders; skipping summary and alerts", result.RunID)
		return nil, ErrNoOrders
	}
	if result.LogicalDate.IsZero() {
		return nil, ErrNoReportDate
	}

	source, ok := s.sources[result.Artifact.Format]
	if !ok {
		return nil, fmt.Errorf("no report source for artifact format %q", result.Artifact.Format)
	}

	orders, err := source.Orders(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("load fact rows: %w", err)
	}
	products, inventory, err := source.Reference(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("load reference tables: %w", err)
	}

	reports := &Reports{
		Summary: BuildSummary(result.LogicalDate, orders),
		Alerts:  domain.BuildInventoryAlerts(products, inventory),
	}

	if reports.SummaryPath, err = s.writer.WriteSummary(reports.Summary); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	if reports.AlertsPath, err = s.writer.WriteAlerts(result.LogicalDate, reports.Alerts); err != nil {
		return nil, fmt.Errorf("write alerts: %w", err)
	}

	s.logger.Infof("reports for %s: revenue=%s orders=%d alerts=%d",
		result.ReportDate(), reports.Summary.TotalRevenue(), reports.Summary.TotalOrders(), len(reports.Alerts))
	return reports, nil
}

// BuildSummary agrège les commandes enrichies d'une journée
func BuildSummary(date time.Time, orders []ordersdomain.EnrichedOrder) *domain.Summary {
	b := domain.NewSummaryBuilder(date)
	for _, o := range orders {
		b.Add(o.OrderTotal, o.Category)
	}
	return b.Build()
}
