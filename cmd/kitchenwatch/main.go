package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	backendadapter "github.com/ericfisherdev/kitchenwatch/internal/adapter/driven/backend"
	jsonfileadapter "github.com/ericfisherdev/kitchenwatch/internal/adapter/driven/jsonfile"
	postgresadapter "github.com/ericfisherdev/kitchenwatch/internal/adapter/driven/postgres"
	rabbitmqadapter "github.com/ericfisherdev/kitchenwatch/internal/adapter/driven/rabbitmq"
	sqliteadapter "github.com/ericfisherdev/kitchenwatch/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/kitchenwatch/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/kitchenwatch/internal/adapter/driving/web"
	"github.com/ericfisherdev/kitchenwatch/internal/application"
	"github.com/ericfisherdev/kitchenwatch/internal/config"
	"github.com/ericfisherdev/kitchenwatch/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration and install the logger.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"order_source", cfg.OrderSource,
		"threshold_store", cfg.ThresholdStore,
		"db_path", cfg.DBPath,
		"events_published", cfg.PublishesEvents(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the local database, which holds alert history and optionally thresholds.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	version, err := db.Migrate()
	if err != nil {
		return err
	}
	logger.Info("database ready", "path", db.Path(), "schema_version", version)

	// 4. Order and inventory source.
	var (
		orders    driven.OrderQuery
		inventory driven.InventoryQuery
	)
	switch cfg.OrderSource {
	case config.SourcePostgres:
		pool, err := postgresadapter.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		orders = postgresadapter.NewOrderRepo(pool, logger)
		inventory = postgresadapter.NewInventoryRepo(pool)
		logger.Info("reading orders from database")
	default:
		client, err := backendadapter.NewClient(cfg.BackendURL, cfg.BackendTimeout)
		if err != nil {
			return err
		}
		orders, inventory = client, client
		logger.Info("reading orders from backend", "url", cfg.BackendURL)
	}

	// 5. Threshold store.
	var thresholdStore driven.ThresholdStore
	switch cfg.ThresholdStore {
	case config.StoreSQLite:
		thresholdStore = sqliteadapter.NewThresholdRepo(db)
	default:
		thresholdStore = jsonfileadapter.NewStore(cfg.ConfigPath)
		logger.Info("thresholds file", "path", cfg.ConfigPath)
	}
	thresholds := application.NewThresholdService(thresholdStore, logger)
	thresholds.Load(ctx)

	// 6. Alert event sinks.
	history := sqliteadapter.NewAlertEventRepo(db)
	sinks := []driven.AlertEventSink{history}
	if cfg.PublishesEvents() {
		publisher, err := rabbitmqadapter.Dial(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := publisher.Close(); closeErr != nil {
				logger.Error("error closing amqp publisher", "error", closeErr)
			}
		}()
		sinks = append(sinks, publisher)
		logger.Info("publishing alert events", "exchange", cfg.AMQPExchange)
	}

	// 7. Monitors and the refresh orchestrator.
	opts := []application.Option{application.WithLogger(logger)}
	board := application.NewAlertBoard()
	stockMonitor := application.NewStockMonitor(inventory, thresholds, board, sinks, opts...)
	delayMonitor := application.NewDelayMonitor(orders, thresholds, board, sinks, opts...)

	events := webhandler.NewBroadcaster()
	orchestrator := application.NewRefreshOrchestrator(
		board,
		stockMonitor,
		delayMonitor,
		[]driven.ViewNotifier{events},
		application.Intervals{UI: cfg.UIInterval, Stock: cfg.StockInterval, Delay: cfg.DelayInterval},
		opts...,
	)
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		orchestrator.Start(ctx)
	}()

	// 8. HTTP API and web panel on one mux.
	mux := http.NewServeMux()
	httphandler.NewHandler(orchestrator, thresholds, history, logger).RegisterRoutes(mux)
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(orchestrator, thresholds, events, logger))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.Wrap(mux, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
		close(serveErr)
	}()

	logger.Info("kitchenwatch started",
		"ui_interval", cfg.UIInterval,
		"stock_interval", cfg.StockInterval,
		"delay_interval", cfg.DelayInterval,
	)

	// 9. Wait for shutdown signal or a server failure.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-serveErr:
		stop()
	}

	// 10. Graceful shutdown with 10s timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-loopDone:
	case <-shutdownCtx.Done():
		logger.Warn("refresh loops did not stop in time")
	}

	logger.Info("shutdown complete")
	return runErr
}

// newLogger builds the process logger. level and format are validated by config.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
