package application

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	analyticsdomain "quickshop/internal/analytics/domain"
	"quickshop/internal/export/domain"
	"quickshop/internal/export/infrastructure"
)

// ReportExporter écrit les rapports quotidiens dans un répertoire
type ReportExporter struct {
	dir          string
	alertsFormat domain.AlertsFormat
}

// NewReportExporter crée un exporteur (alertes en CSV par défaut)
func NewReportExporter(dir string, alertsFormat domain.AlertsFormat) *ReportExporter {
	if alertsFormat == "" {
		alertsFormat = domain.AlertsFormatCSV
	}
	return &ReportExporter{dir: dir, alertsFormat: alertsFormat}
}

// WriteSummary écrit summary_<date>.json et retourne son chemin
func (e *ReportExporter) WriteSummary(summary *analyticsdomain.Summary) (string, error) {
	data, err := EncodeSummary(summary)
	if err != nil {
		return "", err
	}
	path := filepath.Join(e.dir, domain.SummaryFileName(summary.Date()))
	if err := infrastructure.WriteFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteAlerts écrit inventory_alerts_<date>.<csv|xlsx> et retourne son chemin.
// Le fichier est écrit même sans alerte (en-tête seul).
func (e *ReportExporter) WriteAlerts(date time.Time, alerts []analyticsdomain.InventoryAlert) (string, error) {
	var (
		data []byte
		err  error
	)
	switch e.alertsFormat {
	case domain.AlertsFormatXLSX:
		data, err = EncodeAlertsXLSX(alerts)
	default:
		data, err = EncodeAlertsCSV(alerts)
	}
	if err != nil {
		return "", err
	}

	path := filepath.Join(e.dir, domain.AlertsFileName(date, e.alertsFormat))
	if err := infrastructure.WriteFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// ReadSummary relit summary_<date>.json (os.ErrNotExist si le jour n'a pas de rapport)
func (e *ReportExporter) ReadSummary(date time.Time) ([]byte, error) {
	return os.ReadFile(filepath.Join(e.dir, domain.SummaryFileName(date)))
}

// EncodeSummary JSON indenté du résumé
func EncodeSummary(summary *analyticsdomain.Summary) ([]byte, error) {
	data, err := json.MarshalIndent(domain.NewSummaryDocument(summary), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// EncodeAlertsCSV génère le CSV en mémoire (buffer pré-alloué)
func EncodeAlertsCSV(alerts []analyticsdomain.InventoryAlert) ([]byte, error) {
	buffer := bytes.NewBuffer(make([]byte, 0, 64*(len(alerts)+1)))
	writer := csv.NewWriter(buffer)

	if err := writer.Write(domain.AlertCSVHeaders()); err != nil {
		return nil, err
	}
	for _, a := range alerts {
		if err := writer.Write(domain.AlertRow(a)); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// EncodeAlertsXLSX classeur d'une feuille "Alerts"; identifiants et stocks en numérique
func EncodeAlertsXLSX(alerts []analyticsdomain.InventoryAlert) ([]byte, error) {
	rows := make([][]any, len(alerts))
	for i, a := range alerts {
		rows[i] = []any{a.ProductID, a.ProductName, a.Category, a.WarehouseID, a.StockOnHand, string(a.Status)}
	}
	return infrastructure.EncodeXLSX(infrastructure.AlertsSheet, domain.AlertCSVHeaders(), rows)
}
