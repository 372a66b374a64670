package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sethvargo/go-retry"

	"github.com/cashya/shoppy-backend/api/routes"
	"github.com/cashya/shoppy-backend/internal/address"
	"github.com/cashya/shoppy-backend/internal/auth"
	"github.com/cashya/shoppy-backend/internal/cart"
	"github.com/cashya/shoppy-backend/internal/catalog"
	"github.com/cashya/shoppy-backend/internal/checkout"
	"github.com/cashya/shoppy-backend/internal/coupon"
	"github.com/cashya/shoppy-backend/internal/orders"
	"github.com/cashya/shoppy-backend/internal/pricing"
	"github.com/cashya/shoppy-backend/internal/wishlist"
	"github.com/cashya/shoppy-backend/pkg/config"
	"github.com/cashya/shoppy-backend/pkg/db"
	"github.com/cashya/shoppy-backend/pkg/logger"
	"github.com/cashya/shoppy-backend/pkg/metrics"
	"github.com/cashya/shoppy-backend/pkg/migrate"
	"github.com/cashya/shoppy-backend/pkg/recaptcha"
	"github.com/cashya/shoppy-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres and redis may come up after us on fresh deploys, so the boot
	// pings retry with backoff before giving up.
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))

	var dbClient *db.Client
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var connErr error
		dbClient, connErr = db.New(ctx, cfg.DB, logg)
		return retry.RetryableError(connErr)
	})
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var connErr error
		redisClient, connErr = redis.New(ctx, cfg.Redis, logg)
		return retry.RetryableError(connErr)
	})
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	svcs, err := buildServices(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(ctx, "failed to build services", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	addr := ":" + cfg.App.Port
	bootCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(bootCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, httpMetrics, registry, svcs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(bootCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(bootCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(bootCtx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (routes.Services, error) {
	gdb := dbClient.DB()

	catalogRepo := catalog.NewRepository(gdb)
	cartRepo := cart.NewRepository(gdb)
	couponRepo := coupon.NewRepository(gdb)
	orderRepo := orders.NewRepository(gdb)
	addressRepo := address.NewRepository(gdb)
	wishlistRepo := wishlist.NewRepository(gdb)
	userRepo := auth.NewRepository(gdb)

	catalogSvc, err := catalog.NewService(catalogRepo, dbClient, cfg.Media, logg)
	if err != nil {
		return routes.Services{}, err
	}

	engine := pricing.NewEngine(cfg.Pricing)
	cartSvc, err := cart.NewService(cartRepo, catalogRepo, couponRepo, engine, logg)
	if err != nil {
		return routes.Services{}, err
	}

	orderSvc, err := orders.NewService(orderRepo, dbClient, logg)
	if err != nil {
		return routes.Services{}, err
	}

	checkoutSvc, err := checkout.NewService(cartRepo, couponRepo, orderRepo, dbClient, logg)
	if err != nil {
		return routes.Services{}, err
	}

	addressSvc, err := address.NewService(addressRepo, dbClient, logg)
	if err != nil {
		return routes.Services{}, err
	}

	wishlistSvc, err := wishlist.NewService(wishlistRepo, catalogRepo, cfg.Media, logg)
	if err != nil {
		return routes.Services{}, err
	}

	verifier, err := recaptcha.NewFromConfig(cfg.Recaptcha)
	if err != nil {
		return routes.Services{}, err
	}
	authSvc, err := auth.NewService(userRepo, redisClient, verifier, cfg.JWT, cfg.OTP, cfg.AuthRate, cfg.App.IsDev(), logg)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:     authSvc,
		Catalog:  catalogSvc,
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Orders:   orderSvc,
		Address:  addressSvc,
		Wishlist: wishlistSvc,
	}, nil
}
