package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"quickshop/internal/app"
	"quickshop/internal/config"
)

// etl: exécution batch/backfill (aucune extraction trouvée = échec)
func main() {
	cfg := config.Load()
	cfg.RegisterFlags(flag.CommandLine)
	reports := flag.Bool("reports", false, "generate summary and alerts when the range is a single day")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal("❌ Erreur initialisation:", err)
	}

	code := run(ctx, a, *reports)
	a.DumpMetrics()
	a.Close()
	os.Exit(code)
}

func run(ctx context.Context, a *app.App, withReports bool) int {
	rc, err := a.Config.RunConfig()
	if err != nil {
		a.Logger.Errorf("invalid configuration: %v", err)
		return 2
	}

	result, err := a.Pipeline.Run(ctx, rc)
	if err != nil {
		a.Logger.Errorf("ETL failed at %s: %v", result.Stage, err)
		return 1
	}
	a.Logger.Infof("✅ ETL terminé: %d lignes -> %s", result.RowCount, result.Artifact.Location)

	if withReports && result.HasOrders {
		reports, err := a.Reports.Generate(ctx, result)
		if err != nil {
			a.Logger.Errorf("reports failed: %v", err)
			return 1
		}
		a.Logger.Infof("reports: %s, %s", reports.SummaryPath, reports.AlertsPath)
	}
	return 0
}
