package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"ridehail/internal/app"
	"ridehail/internal/config"
	"ridehail/internal/dispatch"
	"ridehail/internal/handler"
	"ridehail/internal/ingest"
	"ridehail/internal/payments"
	internalRedis "ridehail/internal/redis"
	"ridehail/internal/repository/postgres"
	"ridehail/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Ride request events go to Kafka; the matcher consumes them.
	producer := ingest.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()

	// Wire dependencies.
	server := wireServer(db, redisClient, producer, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, producer *ingest.KafkaProducer, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	userRepo := postgres.NewUserRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	heartbeatRepo := postgres.NewLocationUpdateRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)

	// Delivery channels for ride status updates.
	wsRegistry := dispatch.NewWSRegistry()
	var pusher service.Pusher
	if cfg.FCM.Key != "" {
		pusher = dispatch.NewFCMDispatcher(cfg.FCM.Endpoint, cfg.FCM.Key)
	}

	// Initialize services.
	notificationService := service.NewNotificationService(notificationRepo, userRepo, driverRepo, pusher, wsRegistry)
	surgeService := service.NewSurgeService(locationStore, rideRepo)

	var psp service.PSP = service.NewMockPSP()
	if cfg.Stripe.APIKey != "" {
		psp = payments.NewStripePSP(cfg.Stripe.APIKey)
	}
	settlementService := service.NewSettlementService(db, rideRepo, userRepo, transactionRepo, psp)

	rideService := service.NewRideService(db, rideRepo, driverRepo, surgeService, producer, notificationService, settlementService)
	driverService := service.NewDriverService(locationStore, cacheStore, driverRepo, heartbeatRepo)

	// Initialize handlers.
	userHandler := handler.NewUserHandler(userRepo)
	rideHandler := handler.NewRideHandler(rideService)
	driverHandler := handler.NewDriverHandler(driverService, driverRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	wsHandler := handler.NewWSHandler(wsRegistry)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		UserHandler:         userHandler,
		RideHandler:         rideHandler,
		DriverHandler:       driverHandler,
		NotificationHandler: notificationHandler,
		WSHandler:           wsHandler,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
