package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/adapter/http"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/adapter/http/handler"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/adapter/http/middleware"
	postgresRepo "github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/adapter/repository/postgres"
	redisRepo "github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/adapter/repository/redis"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/infrastructure/config"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/infrastructure/logger"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/infrastructure/metrics"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/infrastructure/postgres"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/infrastructure/redis"
	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	m := metrics.New()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns, postgres.NewMetricsTracer(m))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	chargeRepo := postgresRepo.NewChargeRepository(pool)
	postingRepo := postgresRepo.NewPostingRepository(pool)
	cashOpRepo := postgresRepo.NewCashOperationRepository(pool)
	clientRepo := postgresRepo.NewClientRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	// Use cases
	chargeUC := usecase.NewChargeUseCase(chargeRepo, idGen, m)
	postingUC := usecase.NewPostingUseCase(chargeRepo, postingRepo, clientRepo, idGen, m, log)
	cashRegisterUC := usecase.NewCashRegisterUseCase(txManager, cashOpRepo, chargeRepo, idGen, cache, m, log).
		WithRetrier(retrier)

	// Handlers
	chargeHandler := handler.NewChargeHandler(chargeUC)
	postingHandler := handler.NewPostingHandler(postingUC)
	cashRegisterHandler := handler.NewCashRegisterHandler(cashRegisterUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	routerCfg := httpAdapter.RouterConfig{
		ChargeHandler:       chargeHandler,
		PostingHandler:      postingHandler,
		CashRegisterHandler: cashRegisterHandler,
		HealthHandler:       healthHandler,
		IdempotencyStore:    idempotencyStore,
		Metrics:             m,
		Logger:              log,
	}

	if cfg.RateLimitRPS > 0 {
		routerCfg.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	router := httpAdapter.NewRouter(routerCfg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
