package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/orderpulse/ordersbff/internal/api"
	"github.com/orderpulse/ordersbff/internal/channelengine"
	"github.com/orderpulse/ordersbff/internal/config"
	"github.com/orderpulse/ordersbff/internal/logger"
	"github.com/orderpulse/ordersbff/internal/metrics"
	"github.com/orderpulse/ordersbff/internal/repository"
	"github.com/orderpulse/ordersbff/internal/repository/postgres"
	"github.com/orderpulse/ordersbff/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("Server stopped")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()

	var events repository.StockEventRepository
	if cfg.Database.Enabled() {
		db, err := openAuditStore(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close()
		events = postgres.NewStockEventRepository(db, log)
	} else {
		log.Info("DB_HOST not set, stock event audit disabled")
	}

	client, err := channelengine.NewClient(cfg.ChannelEngine, reg, log)
	if err != nil {
		return errors.Wrap(err, "failed to create ChannelEngine client")
	}

	orders := service.NewOrderService(client, events, cfg.TopSoldLimit, log)
	router := api.NewRouter(cfg, orders, events, reg, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting server", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "graceful shutdown failed")
		}
		return nil
	})

	return g.Wait()
}

func openAuditStore(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*sql.DB, error) {
	db, err := postgres.NewConnection(ctx, cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	log.Info("Connected to database", zap.String("host", cfg.Host), zap.String("database", cfg.DBName))

	if err := postgres.Migrate(db, log); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
