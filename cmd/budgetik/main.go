package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"

	"budgetik/internal/backend"
	"budgetik/internal/cache"
	"budgetik/internal/cli"
	"budgetik/internal/config"
	apphttp "budgetik/internal/http"
	"budgetik/internal/ledger"
	"budgetik/internal/log"
	"budgetik/internal/services"
	"budgetik/internal/store"
	"budgetik/internal/stream"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	if err := run(logger, cfg); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
}

func run(logger *log.Logger, cfg *config.Config) error {
	ctx := context.Background()
	clock := clockwork.NewRealClock()
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	// Every server instance needs every change: consume through a private queue.
	backendCfg.AMQPQueue = ""
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}

	reports := cache.NewLRUCacheWithClock[ledger.Report](cfg.CacheSize, cfg.CacheTTL, clock)
	caches := cache.NewManager(clock, logger)
	caches.Register(reports)
	caches.StartCleanup(cfg.CacheTTL)

	hub := stream.NewHub(res.Store, logger)
	ledgerSvc := services.NewLedgerService(res.Store, store.Notifiers{hub, res.Notifier()}, clock, logger, services.LedgerConfig{
		Location: loc,
		Locale:   ledger.LocaleByName(cfg.Locale),
		Reports:  reports,
	})
	savingsSvc := services.NewSavingsService(res.Store, clock, logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Ledger:  ledgerSvc,
		Savings: savingsSvc,
		Streams: stream.NewRouter(hub),
		Ready:   res.Ready,
		Clock:   clock,
		Logger:  logger,
	})
	// No write timeout: event streams stay open.
	srv.ReadTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	consumeCtx, stopConsuming := context.WithCancel(ctx)
	defer stopConsuming()
	if res.Bus != nil {
		// changes from other processes refresh caches and live feeds here
		onChange := store.Notifiers{ledgerSvc, hub}
		go func() {
			err := res.Bus.ConsumeChanges(consumeCtx, onChange.Changed)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Change consumption failed", log.FieldError, err)
			}
		}()
	} else {
		logger.Info("AMQP disabled - live feeds only see changes made by this process")
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) error {
		stopConsuming()
		var errs []error
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http: %w", err))
		}
		hub.Close()
		caches.Stop()
		if err := res.Cleanup(); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	logger.Info("Starting budgetik server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"locale", cfg.Locale,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil {
		return err
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
	return nil
}
