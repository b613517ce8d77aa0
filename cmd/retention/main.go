package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ridehail/internal/app"
	"ridehail/internal/config"
	"ridehail/internal/repository/postgres"
	"ridehail/internal/service"
)

func main() {
	cfg := config.Load()

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer startupCancel()

	db, err := app.NewDatabase(startupCtx, cfg.Database, nil)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	retention := service.NewRetentionService(postgres.NewRetentionRepository(db))

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		log.Printf("metrics/health listening on %s", cfg.Retention.MetricsAddr)
		if err := http.ListenAndServe(cfg.Retention.MetricsAddr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("retention job running every %s", cfg.Retention.Interval)

	ticker := time.NewTicker(cfg.Retention.Interval)
	defer ticker.Stop()

	// Sweep once at startup, then on the interval.
	runSweep(ctx, retention)
	for {
		select {
		case <-ctx.Done():
			log.Println("shutting down retention job")
			return
		case <-ticker.C:
			runSweep(ctx, retention)
		}
	}
}

func runSweep(ctx context.Context, retention *service.RetentionService) {
	sweepCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()
	if err := retention.Sweep(sweepCtx); err != nil {
		log.Printf("retention sweep failed: %v", err)
	}
}
