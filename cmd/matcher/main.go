package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ridehail/internal/app"
	"ridehail/internal/config"
	"ridehail/internal/dispatch"
	"ridehail/internal/ingest"
	"ridehail/internal/observability"
	internalRedis "ridehail/internal/redis"
	"ridehail/internal/repository/postgres"
	"ridehail/internal/service"
)

func main() {
	var metricsAddr string
	flag.StringVar(&metricsAddr, "metrics-addr", ":2112", "address to serve prometheus metrics on")
	flag.Parse()

	cfg := config.Load()

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer startupCancel()

	db, err := app.NewDatabase(startupCtx, cfg.Database, nil)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := app.NewRedisClient(startupCtx, cfg.Redis, nil)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	userRepo := postgres.NewUserRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// The matcher pushes over FCM only. Websocket sessions live in the API
	// server process, so there is nothing to publish to here.
	var pusher service.Pusher
	if cfg.FCM.Key != "" {
		pusher = dispatch.NewFCMDispatcher(cfg.FCM.Endpoint, cfg.FCM.Key)
	}
	notifier := service.NewNotificationService(notificationRepo, userRepo, driverRepo, pusher, nil)

	matcher := service.NewMatchingService(postgres.NewTxRunner(db), lockStore, cacheStore, driverRepo, rideRepo, notifier)

	// Metrics and health endpoints.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "database not ready", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
		})
		log.Printf("metrics/health listening on %s", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reader := ingest.NewKafkaReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Group)
	defer reader.Close()

	log.Printf("matcher listening topic=%s brokers=%v group=%s", cfg.Kafka.Topic, cfg.Kafka.Brokers, cfg.Kafka.Group)

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("shutting down matcher")
				return
			}
			log.Printf("kafka read error: %v; backing off %s", err, backoff)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		// reset backoff on success
		backoff = time.Second

		var event ingest.RideRequestedEvent
		if err := json.Unmarshal(m.Value, &event); err != nil {
			observability.EventsConsumedTotal.WithLabelValues("invalid").Inc()
			log.Printf("invalid message: %v", err)
			continue
		}

		observability.EventsConsumedTotal.WithLabelValues(handleEvent(ctx, matcher, event.RideID)).Inc()
	}
}

// handleEvent runs one match attempt and reports the outcome. Delivery is at
// least once, so a ride that is already being matched or already past the
// requested state is expected and not an error.
func handleEvent(ctx context.Context, matcher *service.MatchingService, rideID string) string {
	result, err := matcher.Match(ctx, rideID)
	switch {
	case err == nil:
		log.Printf("ride %s matched to driver %s", rideID, result.DriverID)
		return "matched"
	case errors.Is(err, service.ErrNoDriverAvailable):
		log.Printf("ride %s: no drivers available", rideID)
		return "no_drivers"
	case errors.Is(err, service.ErrMatchingInProgress), errors.Is(err, service.ErrRideNotInRequestedState):
		return "skipped"
	default:
		log.Printf("ride %s match failed: %v", rideID, err)
		return "error"
	}
}
