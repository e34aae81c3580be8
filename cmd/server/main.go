package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/fleetprice/internal/config"
	"github.com/Simplici0/fleetprice/internal/db"
	"github.com/Simplici0/fleetprice/internal/logging"
	"github.com/Simplici0/fleetprice/internal/migrations"
	"github.com/Simplici0/fleetprice/internal/pricing"
	"github.com/Simplici0/fleetprice/internal/seed"
	"github.com/Simplici0/fleetprice/internal/state"
	"github.com/Simplici0/fleetprice/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	defaults, err := loadPricingDefaults(cfg)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	states := state.NewService(st)
	stats, err := seed.Run(ctx, states, seed.Config{Defaults: defaults})
	if err != nil {
		return fmt.Errorf("seed state: %w", err)
	}
	logger.Info("startup seed finished", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))

	srv := &server{
		auth:     newAuthService(cfg.Password, cfg.SessionSecret),
		state:    states,
		defaults: defaults,
		logger:   logger,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("backend", cfg.StateBackend))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func loadPricingDefaults(cfg config.Config) (pricing.Config, error) {
	if cfg.PricingConfig == "" {
		return pricing.DefaultConfig(), nil
	}
	defaults, err := pricing.LoadConfig(cfg.PricingConfig)
	if err != nil {
		return pricing.Config{}, fmt.Errorf("load pricing config %s: %w", cfg.PricingConfig, err)
	}
	return defaults, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StateBackend {
	case config.BackendSQLite:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(database, migrations.DialectSQLite); err != nil {
			database.Close()
			return nil, fmt.Errorf("run database migrations: %w", err)
		}
		return store.NewSQLite(database), nil

	case config.BackendPostgres:
		database, err := db.OpenPostgres(ctx, cfg.DatabaseURL, cfg.DBConnectTimeout, logger)
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(database, migrations.DialectPostgres); err != nil {
			database.Close()
			return nil, fmt.Errorf("run database migrations: %w", err)
		}
		return store.NewPostgres(database), nil

	case config.BackendFile:
		return store.NewFile(cfg.StateFile), nil

	case config.BackendRedis:
		return store.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}
	return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
}
