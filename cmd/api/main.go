package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/monplancbd/storefront/api/controllers"
	"github.com/monplancbd/storefront/api/routes"
	"github.com/monplancbd/storefront/internal/alerts"
	"github.com/monplancbd/storefront/internal/catalog"
	"github.com/monplancbd/storefront/internal/orders"
	"github.com/monplancbd/storefront/internal/stockfeed"
	"github.com/monplancbd/storefront/internal/store"
	"github.com/monplancbd/storefront/pkg/config"
	"github.com/monplancbd/storefront/pkg/db"
	"github.com/monplancbd/storefront/pkg/logger"
	"github.com/monplancbd/storefront/pkg/metrics"
	"github.com/monplancbd/storefront/pkg/migrate"
	"github.com/monplancbd/storefront/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	loader := catalog.NewLoader(cfg.Catalog, logg)
	products, err := loader.Fetch(context.Background())
	if err != nil {
		logg.Error(context.Background(), "failed to load catalog", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(context.Background(), "products", len(products)), "catalog loaded")

	sink := alerts.NewSink()
	st := store.New(products, store.Options{
		Carts:   redisClient,
		CartTTL: cfg.Session.TTL,
		Alerts:  sink,
		Metrics: storefrontMetrics,
		Logger:  logg,
	})

	ordersSvc := orders.NewService(orders.NewRepository(dbClient.DB()), cfg.Orders, logg)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener := stockfeed.NewListener(cfg.StockFeed, st, storefrontMetrics, logg)
	go func() {
		if err := listener.Run(rootCtx); err != nil && rootCtx.Err() == nil {
			logg.Error(rootCtx, "stock feed listener stopped", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront api")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			Storefront: st,
			Orders:     ordersSvc,
			Alerts:     sink,
			Metrics:    storefrontMetrics,
			Registry:   registry,
			Pingers: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
		}),
	}

	go func() {
		<-rootCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "storefront api stopped")
}
