package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Estevanavelar/naldogas-backend/api/routes"
	"github.com/Estevanavelar/naldogas-backend/internal/containers"
	"github.com/Estevanavelar/naldogas-backend/internal/customers"
	"github.com/Estevanavelar/naldogas-backend/internal/deliveries"
	"github.com/Estevanavelar/naldogas-backend/internal/products"
	"github.com/Estevanavelar/naldogas-backend/internal/receivables"
	"github.com/Estevanavelar/naldogas-backend/internal/sales"
	"github.com/Estevanavelar/naldogas-backend/pkg/config"
	"github.com/Estevanavelar/naldogas-backend/pkg/db"
	"github.com/Estevanavelar/naldogas-backend/pkg/logger"
	"github.com/Estevanavelar/naldogas-backend/pkg/metrics"
	"github.com/Estevanavelar/naldogas-backend/pkg/migrate"
	"github.com/Estevanavelar/naldogas-backend/pkg/outbox"
	"github.com/Estevanavelar/naldogas-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	conn := dbClient.DB()
	events := outbox.NewService(outbox.NewRepository(conn), logg)

	productRepo := products.NewRepository(conn)
	productService, err := products.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	customerService, err := customers.NewService(customers.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	containerService, err := containers.NewService(containers.NewRepository(conn), dbClient, events, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create container service", err)
		os.Exit(1)
	}

	receivableService, err := receivables.NewService(receivables.NewRepository(conn), dbClient, events, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create receivable service", err)
		os.Exit(1)
	}

	deliveryService, err := deliveries.NewService(deliveries.NewRepository(conn), dbClient, events, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}

	saleService, err := sales.NewService(
		dbClient,
		sales.NewRepository(conn),
		productService,
		productRepo,
		containerService,
		receivableService,
		deliveryService,
		customerService,
		events,
		logg,
		cfg.Receivables.DefaultDueIn(),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sale service", err)
		os.Exit(1)
	}

	ledgerMetrics := metrics.NewLedgerMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			productService,
			customerService,
			saleService,
			containerService,
			receivableService,
			deliveryService,
			ledgerMetrics,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
