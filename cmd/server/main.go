package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"

	"github.com/rowanholt/vesta/internal"
	"github.com/rowanholt/vesta/internal/events"
	"github.com/rowanholt/vesta/internal/handler/api"
	"github.com/rowanholt/vesta/internal/middleware"
	"github.com/rowanholt/vesta/internal/postgres"
	"github.com/rowanholt/vesta/internal/routes"
	"github.com/rowanholt/vesta/internal/service"
	"github.com/rowanholt/vesta/internal/shipping"
)

func run() error {
	ctx := context.Background()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	logger.Info().Msg("connecting to database")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info().Msg("running database migrations")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)

	policy, err := shipping.NewThresholdPolicy(shipping.Settings{
		FreeShippingThreshold: cfg.Shipping.FreeThreshold,
		FlatRate:              cfg.Shipping.FlatRate,
	})
	if err != nil {
		return fmt.Errorf("invalid shipping settings: %w", err)
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.NATSUrl != "" {
		natsPub, err := events.NewNATSPublisher(cfg.NATSUrl, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsPub.Close()
		publisher = natsPub
		logger.Info().Str("url", cfg.NATSUrl).Msg("event publisher connected")
	}

	couponService := service.NewCouponService(store)
	cartService := service.NewCartService(store, couponService, policy)
	checkoutService := service.NewCheckoutService(store, couponService, policy, publisher, logger)
	orderService := service.NewOrderService(store, publisher, logger)
	statsService := service.NewStatsService(store)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.ErrorHandler(logger)

	var metrics *middleware.Metrics
	if cfg.Metrics.Enabled {
		metrics = middleware.NewMetrics(cfg.Metrics.Namespace)
	}

	routes.Register(e, routes.Deps{
		Cart:     api.NewCartHandler(cartService),
		Checkout: api.NewCheckoutHandler(checkoutService),
		Orders:   api.NewOrderHandler(orderService),
		Stats:    api.NewStatsHandler(statsService),
		Health:   api.NewHealthHandler(pool),
		Logger:   logger,
		Metrics:  metrics,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
