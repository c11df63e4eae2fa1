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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/oms-backend/api/routes"
	"github.com/angelmondragon/oms-backend/internal/customers"
	"github.com/angelmondragon/oms-backend/internal/orders"
	"github.com/angelmondragon/oms-backend/internal/products"
	"github.com/angelmondragon/oms-backend/internal/reports"
	"github.com/angelmondragon/oms-backend/pkg/config"
	"github.com/angelmondragon/oms-backend/pkg/db"
	"github.com/angelmondragon/oms-backend/pkg/instance"
	"github.com/angelmondragon/oms-backend/pkg/logger"
	"github.com/angelmondragon/oms-backend/pkg/metrics"
	"github.com/angelmondragon/oms-backend/pkg/migrate"
	"github.com/angelmondragon/oms-backend/pkg/outbox"
	"github.com/angelmondragon/oms-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	closers := []func() error{dbClient.Close}
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	deps := routes.Deps{DBPinger: dbClient}
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		closers = append(closers, redisClient.Close)
		deps.RedisPinger = redisClient
		deps.IdempotencyStore = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, idempotency keys are ignored")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.HTTPMetrics = metrics.NewHTTPMetrics(registry)
	deps.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	conn := dbClient.DB()
	customersRepo := customers.NewRepository(conn)

	deps.Customers, err = customers.NewService(customersRepo, dbClient)
	if err != nil {
		return err
	}
	deps.Products, err = products.NewService(products.NewRepository(conn), dbClient)
	if err != nil {
		return err
	}
	deps.Orders, err = orders.NewService(orders.ServiceParams{
		Repo:      orders.NewRepository(conn),
		Customers: customersRepo,
		Inventory: products.NewInventory(conn),
		Tx:        dbClient,
		Outbox:    outbox.NewService(outbox.NewRepository(conn), logg),
		Metrics:   metrics.NewOrderMetrics(registry),
		Logger:    logg,
	})
	if err != nil {
		return err
	}
	deps.Reports, err = reports.NewService(reports.NewRepository(conn))
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
