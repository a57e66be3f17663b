package notify

import (
	"context"
	"errors"
	"time"

	etldomain "quickshop/internal/etl/domain"
	sharedinfra "quickshop/internal/shared/infrastructure"
)

// RunEvent message publié à la fin d'une exécution quotidienne
type RunEvent struct {
	RunID       string             `json:"run_id"`
	Status      string             `json:"status"`
	LogicalDate string             `json:"logical_date"`
	RowCount    int                `json:"row_count"`
	Artifact    etldomain.Artifact `json:"artifact"`
	SummaryPath string             `json:"summary_path,omitempty"`
	AlertsPath  string             `json:"alerts_path,omitempty"`
	FinishedAt  time.Time          `json:"finished_at"`
}

// NewRunEvent construit l'événement depuis le résultat d'exécution
func NewRunEvent(result etldomain.RunResult, finishedAt time.Time) RunEvent {
	return RunEvent{
		RunID:       result.RunID,
		Status:      string(result.Status),
		LogicalDate: result.ReportDate(),
		RowCount:    result.RowCount,
		Artifact:    result.Artifact,
		FinishedAt:  finishedAt.UTC(),
	}
}

// Notifier publie la fin d'une exécution
type Notifier interface {
	Notify(ctx context.Context, event RunEvent) error
}

// LogNotifier écrit l'événement dans les logs
type LogNotifier struct {
	logger *sharedinfra.Logger
}

// NewLogNotifier crée un notifier de logs
func NewLogNotifier(logger *sharedinfra.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify journalise l'événement
func (n *LogNotifier) Notify(_ context.Context, event RunEvent) error {
	n.logger.Infof("run %s for %s finished with status %s (%d rows, artifact %s)",
		event.RunID, event.LogicalDate, event.Status, event.RowCount, event.Artifact.Location)
	return nil
}

// MultiNotifier diffuse vers plusieurs notifiers; chacun est appelé même si
// un précédent échoue.
type MultiNotifier []Notifier

// Notify appelle tous les notifiers et agrège leurs erreurs
func (m MultiNotifier) Notify(ctx context.Context, event RunEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
