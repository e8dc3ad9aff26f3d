package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/albisri/kasledger/internal/adapter/http"
	"github.com/albisri/kasledger/internal/adapter/http/handler"
	postgresRepo "github.com/albisri/kasledger/internal/adapter/repository/postgres"
	redisRepo "github.com/albisri/kasledger/internal/adapter/repository/redis"
	"github.com/albisri/kasledger/internal/infrastructure/config"
	"github.com/albisri/kasledger/internal/infrastructure/logger"
	"github.com/albisri/kasledger/internal/infrastructure/metrics"
	"github.com/albisri/kasledger/internal/infrastructure/postgres"
	"github.com/albisri/kasledger/internal/infrastructure/redis"
	"github.com/albisri/kasledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	appMetrics := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	sourceRepo := postgresRepo.NewSourceRegistry(pool)
	monitorRepo := postgresRepo.NewMonitorRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(appLogger)

	// Initialize use cases
	balanceCalc := usecase.NewBalanceCalculator(txManager, accountRepo, entryRepo)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, entryRepo, balanceCalc, idGen)
	entryUC := usecase.NewEntryUseCase(txManager, accountRepo, entryRepo, balanceCalc, idGen)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, entryRepo, balanceCalc, idGen, retrier, appMetrics)
	reconcilerUC := usecase.NewReconcilerUseCase(
		txManager, accountRepo, entryRepo, sourceRepo, balanceCalc,
		idGen, retrier, appMetrics, appLogger,
	)
	monitorUC := usecase.NewMonitorUseCase(monitorRepo, accountRepo, balanceCalc)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountUC)
	entryHandler := handler.NewEntryHandler(entryUC)
	transferHandler := handler.NewTransferHandler(transferUC)
	eventHandler := handler.NewEventHandler(reconcilerUC)
	monitorHandler := handler.NewMonitorHandler(monitorUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   accountHandler,
		EntryHandler:     entryHandler,
		TransferHandler:  transferHandler,
		EventHandler:     eventHandler,
		MonitorHandler:   monitorHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		Logger:           appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
