package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/rental-listing-service/internal/config"
	"github.com/iliyamo/rental-listing-service/internal/database"
	"github.com/iliyamo/rental-listing-service/internal/handler"
	"github.com/iliyamo/rental-listing-service/internal/logger"
	"github.com/iliyamo/rental-listing-service/internal/queue"
	"github.com/iliyamo/rental-listing-service/internal/repository"
	"github.com/iliyamo/rental-listing-service/internal/router"
	"github.com/iliyamo/rental-listing-service/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config
	logger.Init(cfg.ServiceName, cfg.Env)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// run returns instead of exiting so the deferred closes always happen.
func run(cfg config.Config) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("database connection (%s): %w", cfg.DBHost, err)
	}
	defer func() { _ = db.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("schema migration: %w", err)
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig()) // nil when unreachable
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	qcfg := config.LoadQueueConfig()
	var events service.EventPublisher
	if p := service.NewAMQPPublisher(qcfg); p != nil {
		events = p
		go func() {
			if err := queue.StartBookingConsumer(ctx, qcfg); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("booking consumer stopped")
			}
		}()
	}

	store := repository.NewStore(db)
	e := echo.New() // Create Echo instance
	router.Setup(e, router.Handlers{
		Health:   handler.Health(db),
		Auth:     handler.NewAuthHandler(cfg, store.Accounts, store.Tokens),
		Listings: handler.NewListingHandler(store.Accounts, store.Listings, store.Bookings, store.Reviews),
		Bookings: handler.NewBookingHandler(store.Accounts, store.Listings, store.Bookings, events),
		Reviews:  handler.NewReviewHandler(store.Accounts, store.Listings, store.Reviews),
		Accounts: handler.NewAccountHandler(store.Accounts, store.Listings, store.Bookings, store.Reviews),
	}, router.Edge{
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port // Address string with port
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Bool("queue", qcfg.Enabled).Bool("redis", rdb != nil).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}
