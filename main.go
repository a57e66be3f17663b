package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	v1 "quickshop/api/v1"
	"quickshop/internal/app"
	"quickshop/internal/config"
	exportapp "quickshop/internal/export/application"
	sharedinfra "quickshop/internal/shared/infrastructure"
)

func main() {
	cfg := config.Load()
	cfg.RegisterFlags(flag.CommandLine)
	flag.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	flag.Parse()

	// Cache partagé entre le handler de résumé et le hook de fin d'exécution
	summaries := sharedinfra.NewTTLCache[[]byte](16, cfg.CacheTTL)

	a, err := app.New(cfg, app.WithRunCompleteHook(v1.InvalidateSummary(summaries)))
	if err != nil {
		log.Fatal("❌ Erreur initialisation:", err)
	}
	defer a.Close()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go summaries.RunSweeper(sweepCtx, cfg.CacheTTL, func(removed int) {
		a.Logger.Debugf("summary cache: %d expired entries removed", removed)
	})

	handlers := v1.NewHandlers(a.Job,
		exportapp.NewReportExporter(cfg.ReportsDir, cfg.AlertsFormat), summaries, a.Logger)

	a.Logger.Infof("QuickShop ETL API listening on %s (input=%s, output=%s)",
		cfg.HTTPAddr, cfg.InputDir, cfg.OutputFormat)
	if err := http.ListenAndServe(cfg.HTTPAddr, newMux(handlers, a.Metrics)); err != nil {
		stopSweep()
		a.Close()
		log.Println(err)
		os.Exit(1)
	}
}

// newMux routes publiques; pprof reste sur DefaultServeMux
func newMux(handlers *v1.Handlers, metrics *sharedinfra.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", healthHandler)
	handlers.Register(mux)
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"message": "QuickShop ETL: POST /api/v1/runs, GET /api/v1/summary",
	})
}
