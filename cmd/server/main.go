package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"hail/internal/app"
	"hail/internal/auth"
	"hail/internal/config"
	"hail/internal/dispatch"
	"hail/internal/handler"
	"hail/internal/logging"
	"hail/internal/presence"
	"hail/internal/repository/postgres"
	"hail/internal/service"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the database driver can be
	// instrumented.
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
			log.Warn("failed to initialize New Relic", "err", err)
		} else {
			log.Info("New Relic enabled", "app", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info("connected to Redis")

	var journal *dispatch.Journal
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		journal = dispatch.NewJournal(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer journal.Close()
		log.Info("event journal enabled", "topic", cfg.Kafka.Topic)
	}

	server, err := wireServer(db, redisClient, journal, nrApp, cfg, log)
	if err != nil {
		log.Error("failed to wire server", "err", err)
		os.Exit(1)
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "err", err)
		os.Exit(1)
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	journal *dispatch.Journal,
	nrApp *newrelic.Application,
	cfg *config.Config,
	log *slog.Logger,
) (*http.Server, error) {
	// Repositories.
	userRepo := postgres.NewUserRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	bidRepo := postgres.NewBidRepository(db)
	billRepo := postgres.NewBillRepository(db)
	txManager := postgres.NewTxManager(db)

	// Presence and event fan-out.
	registry := presence.NewRegistry(presence.NewRedisGroups(redisClient), userRepo)
	hub := dispatch.NewHub(log)
	dispatcher := dispatch.NewDispatcher(hub, registry, journal, log)

	// Services.
	billingService := service.NewBillingService(billRepo)
	bidService := service.NewBidService(txManager, rideRepo, bidRepo, dispatcher)
	rideService := service.NewRideService(
		txManager, rideRepo, bidRepo, userRepo,
		billingService, service.NewCryptoOTP(), dispatcher,
	)

	// Handlers.
	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret)
	if err != nil {
		return nil, err
	}
	rideHandler := handler.NewRideHandler(rideService, billingService)
	bidHandler := handler.NewBidHandler(bidService, rideService)
	driverHandler := handler.NewDriverHandler(registry)
	wsHandler := handler.NewWSHandler(hub, registry, rideService, log)

	router := app.NewRouter(app.RouterDeps{
		RideHandler:   rideHandler,
		BidHandler:    bidHandler,
		DriverHandler: driverHandler,
		WSHandler:     wsHandler,
		Verifier:      verifier,
		RedisClient:   redisClient,
		NewRelicApp:   nrApp,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}
