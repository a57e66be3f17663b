package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	analyticsapp "quickshop/internal/analytics/application"
	etldomain "quickshop/internal/etl/domain"
	"quickshop/internal/notify"
	sharedinfra "quickshop/internal/shared/infrastructure"
)

// RunPipeline exécute une passe de l'ETL
type RunPipeline interface {
	Run(ctx context.Context, cfg etldomain.RunConfig) (etldomain.RunResult, error)
}

// ReportGenerator génère les rapports aval d'une exécution
type ReportGenerator interface {
	Generate(ctx context.Context, result etldomain.RunResult) (*analyticsapp.Reports, error)
}

// NotifyMetrics compteur des échecs de notification
type NotifyMetrics interface {
	RecordNotifyFailure()
}

// Outcome résultat complet d'un déclenchement quotidien
type Outcome struct {
	Result  etldomain.RunResult
	Reports *analyticsapp.Reports // nil si aucune commande
}

// DailyJob enchaîne verrou → pipeline (mode daily) → rapports → notification.
// Un seul job à la fois écrit dans la sortie.
type DailyJob struct {
	base       etldomain.RunConfig
	pipeline   RunPipeline
	reports    ReportGenerator
	notifier   notify.Notifier
	lock       *sharedinfra.RunLock
	metrics    NotifyMetrics
	onComplete func(etldomain.RunResult)
	logger     *sharedinfra.Logger
	now        func() time.Time
}

// Options collaborateurs optionnels du job
type Options struct {
	Reports    ReportGenerator
	Notifier   notify.Notifier
	Lock       *sharedinfra.RunLock
	Metrics    NotifyMetrics
	OnComplete func(etldomain.RunResult) // ex: invalidation du cache HTTP
	Logger     *sharedinfra.Logger
}

// NewDailyJob crée le job; base porte les répertoires, format et motif
func NewDailyJob(base etldomain.RunConfig, pipeline RunPipeline, opts Options) *DailyJob {
	j := &DailyJob{
		base:       base,
		pipeline:   pipeline,
		reports:    opts.Reports,
		notifier:   opts.Notifier,
		lock:       opts.Lock,
		metrics:    opts.Metrics,
		onComplete: opts.OnComplete,
		logger:     opts.Logger,
		now:        time.Now,
	}
	if j.lock == nil {
		j.lock = sharedinfra.NewRunLock()
	}
	return j
}

// TryRun exécute le job pour date, ou retourne ErrRunInProgress si un autre tourne
func (j *DailyJob) TryRun(ctx context.Context, date time.Time) (Outcome, error) {
	if err := j.lock.TryAcquire(); err != nil {
		return Outcome{}, err
	}
	defer j.lock.Release()
	return j.run(ctx, date)
}

// Run exécute le job pour date en attendant la fin d'un éventuel job en cours
func (j *DailyJob) Run(ctx context.Context, date time.Time) (Outcome, error) {
	if err := j.lock.Acquire(ctx); err != nil {
		return Outcome{}, err
	}
	defer j.lock.Release()
	return j.run(ctx, date)
}

func (j *DailyJob) run(ctx context.Context, date time.Time) (Outcome, error) {
	cfg := etldomain.NewDailyRunConfig(j.base, date)

	result, err := j.pipeline.Run(ctx, cfg)
	outcome := Outcome{Result: result}
	if err != nil {
		j.notify(ctx, outcome)
		return outcome, fmt.Errorf("daily run for %s: %w", cfg.LogicalDate.Format("2006-01-02"), err)
	}

	if j.reports != nil {
		reports, err := j.reports.Generate(ctx, result)
		switch {
		case errors.Is(err, analyticsapp.ErrNoOrders):
			j.logger.Debugf("run %s: no reports for an empty day", result.RunID)
		case err != nil:
			j.notify(ctx, outcome)
			return outcome, fmt.Errorf("reports for %s: %w", result.ReportDate(), err)
		default:
			outcome.Reports = reports
		}
	}

	if j.onComplete != nil {
		j.onComplete(result)
	}
	j.notify(ctx, outcome)
	return outcome, nil
}

// notify publie l'événement; un échec est journalisé et compté, jamais propagé
func (j *DailyJob) notify(ctx context.Context, outcome Outcome) {
	if j.notifier == nil {
		return
	}
	event := notify.NewRunEvent(outcome.Result, j.now())
	if outcome.Reports != nil {
		event.SummaryPath = outcome.Reports.SummaryPath
		event.AlertsPath = outcome.Reports.AlertsPath
	}
	if err := j.notifier.Notify(ctx, event); err != nil {
		j.logger.Warnf("notification for run %s failed: %v", outcome.Result.RunID, err)
		if j.metrics != nil {
			j.metrics.RecordNotifyFailure()
		}
	}
}
