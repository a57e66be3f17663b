package app

import (
	"errors"
	"fmt"
	"os"

	"quickshop/database"
	analyticsapp "quickshop/internal/analytics/application"
	analyticsinfra "quickshop/internal/analytics/infrastructure"
	"quickshop/internal/config"
	etlapp "quickshop/internal/etl/application"
	etldomain "quickshop/internal/etl/domain"
	etlinfra "quickshop/internal/etl/infrastructure"
	exportapp "quickshop/internal/export/application"
	"quickshop/internal/jobs"
	"quickshop/internal/notify"
	sharedinfra "quickshop/internal/shared/infrastructure"
)

// App graphe d'objets d'un processus, construit une fois depuis la Config
type App struct {
	Config   config.Config
	Logger   *sharedinfra.Logger
	Metrics  *sharedinfra.Metrics
	Store    etlapp.TableStore
	Pipeline *etlapp.Pipeline
	Reports  *analyticsapp.ReportService
	Job      *jobs.DailyJob
	Notifier notify.Notifier

	closers []func() error
}

// New câble store, pipeline, rapports, notifications et job quotidien.
// Le table-store n'est ouvert qu'en sortie "store".
func New(cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  sharedinfra.NewLogger(os.Stderr, cfg.Verbose),
		Metrics: sharedinfra.NewMetrics(),
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		a.Logger = o.logger
	}

	if cfg.OutputFormat == etldomain.OutputFormatStore {
		if err := a.openStore(); err != nil {
			return nil, err
		}
	}

	a.Pipeline = etlapp.NewPipeline(etlapp.Dependencies{
		Discoverer: etlinfra.NewFileDiscoverer(a.Logger),
		Store:      a.Store,
		Metrics:    a.Metrics,
		Logger:     a.Logger,
	})

	sources := map[etldomain.OutputFormat]analyticsapp.FactSource{
		etldomain.OutputFormatParquet: analyticsinfra.NewFileSource(cfg.InputDir),
	}
	if a.Store != nil {
		sources[etldomain.OutputFormatStore] = analyticsinfra.NewStoreSource(a.Store)
	}
	a.Reports = analyticsapp.NewReportService(sources,
		exportapp.NewReportExporter(cfg.ReportsDir, cfg.AlertsFormat), a.Logger)

	notifiers := notify.MultiNotifier{notify.NewLogNotifier(a.Logger)}
	if cfg.KafkaBootstrap != "" {
		kn := notify.NewKafkaNotifier(cfg.KafkaBootstrap, cfg.KafkaTopic)
		notifiers = append(notifiers, kn)
		a.closers = append(a.closers, kn.Close)
	}
	a.Notifier = notifiers

	base, err := cfg.RunConfig()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Job = jobs.NewDailyJob(base, a.Pipeline, jobs.Options{
		Reports:    a.Reports,
		Notifier:   a.Notifier,
		Metrics:    a.Metrics,
		OnComplete: o.onComplete,
		Logger:     a.Logger,
	})
	return a, nil
}

func (a *App) openStore() error {
	switch a.Config.StoreBackend {
	case config.BackendPostgres:
		db, err := database.Open(a.Config.DatabaseDSN)
		if err != nil {
			return err
		}
		a.Store = etlinfra.NewPostgresStore(db, "postgres")
		a.closers = append(a.closers, db.Close)
	default:
		store, err := etlinfra.NewPebbleStore(a.Config.StorePath())
		if err != nil {
			return fmt.Errorf("open table store: %w", err)
		}
		a.Store = store
		a.closers = append(a.closers, store.Close)
	}
	return nil
}

// DumpMetrics écrit les métriques dans le textfile configuré (node_exporter)
func (a *App) DumpMetrics() {
	if a.Config.MetricsTextfile == "" {
		return
	}
	if err := a.Metrics.WriteTextfile(a.Config.MetricsTextfile); err != nil {
		a.Logger.Warnf("metrics textfile: %v", err)
	}
}

// Close libère store, pool SQL et writer Kafka (ordre inverse d'ouverture)
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

type options struct {
	logger     *sharedinfra.Logger
	onComplete func(etldomain.RunResult)
}

// Option personnalise le câblage
type Option func(*options)

// WithLogger remplace le logger par défaut (stderr)
func WithLogger(l *sharedinfra.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRunCompleteHook appelé après chaque exécution quotidienne réussie
func WithRunCompleteHook(fn func(etldomain.RunResult)) Option {
	return func(o *options) { o.onComplete = fn }
}

