package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quickshop/internal/app"
	"quickshop/internal/config"
	shareddomain "quickshop/internal/shared/domain"
)

// daily: déclenchement quotidien (cron / scheduler) pour une date logique.
// Une journée sans extraction est un succès vide.
func main() {
	cfg := config.Load()
	cfg.RegisterFlags(flag.CommandLine)
	date := flag.String("date", "", "logical date YYYY-MM-DD (default: yesterday, UTC)")
	flag.Parse()

	logical := time.Now().UTC().AddDate(0, 0, -1)
	if *date != "" {
		d, err := shareddomain.ParseDate(*date)
		if err != nil {
			log.Fatalf("❌ Date invalide %q: %v", *date, err)
		}
		logical = d
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal("❌ Erreur initialisation:", err)
	}

	code := 0
	outcome, err := a.Job.Run(ctx, logical)
	if err != nil {
		a.Logger.Errorf("daily run failed: %v", err)
		code = 1
	} else {
		a.Logger.Infof("✅ %s: status=%s rows=%d", outcome.Result.ReportDate(), outcome.Result.Status, outcome.Result.RowCount)
	}

	a.DumpMetrics()
	a.Close()
	os.Exit(code)
}
