package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"

	"budgetik/internal/backend"
	"budgetik/internal/cache"
	"budgetik/internal/cli"
	"budgetik/internal/config"
	"budgetik/internal/export"
	"budgetik/internal/export/xlsx"
	"budgetik/internal/ledger"
	"budgetik/internal/log"
	"budgetik/internal/services"
	gsheet "budgetik/internal/sheets/google"
	"budgetik/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting budgetik-worker", log.FieldOperation, log.OpStartup)
	cfg := cli.LoadAndValidateConfig(logger)

	if err := run(logger, cfg); err != nil {
		logger.Error("Worker error", log.FieldError, err)
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
	locale := ledger.LocaleByName(cfg.Locale)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}
	if backendCfg.Type == backend.MemoryBackend {
		logger.Warn("Memory backend: the worker only exports its own empty ledger")
	}

	reports := cache.NewLRUCacheWithClock[ledger.Report](cfg.CacheSize, cfg.CacheTTL, clock)
	caches := cache.NewManager(clock, logger)
	caches.Register(reports)
	caches.StartCleanup(cfg.CacheTTL)

	// The worker never mutates the ledger, so it publishes nothing.
	ledgerSvc := services.NewLedgerService(res.Store, nil, clock, logger, services.LedgerConfig{
		Location: loc,
		Locale:   locale,
		Reports:  reports,
	})

	exporters := []export.Exporter{xlsx.New(cfg.ExportDir, locale, logger)}
	if cfg.SheetsEnabled() {
		sheets, err := gsheet.NewFromEnv(ctx, locale, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client, continuing without it", log.FieldError, err)
		} else {
			exporters = append(exporters, sheets)
			logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		}
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	periods := make([]ledger.Period, 0, len(cfg.ExportPeriods))
	for _, p := range cfg.ExportPeriods {
		periods = append(periods, ledger.ParsePeriod(p))
	}
	scheduler := services.NewExportScheduler(ledgerSvc, exporters, services.ExportSchedulerConfig{
		Schedule: cfg.ExportSchedule,
		Periods:  periods,
		Location: loc,
	}, logger)
	exportWorker := worker.NewExportWorker(scheduler, ledgerSvc, clock, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// catch up on anything changed while the worker was down
	_ = exportWorker.StartupExport(runCtx)

	if err := scheduler.Start(runCtx); err != nil {
		return err
	}

	if res.Bus != nil {
		go func() {
			err := res.Bus.ConsumeChanges(runCtx, exportWorker.HandleChange)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Change consumption failed", log.FieldError, err)
			}
		}()
		if cfg.ChangeExportInterval > 0 {
			go exportWorker.Run(runCtx, cfg.ChangeExportInterval)
		}
	} else {
		logger.Info("AMQP disabled - exports run on schedule only")
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) error {
		cancel()
		var errs []error
		if err := scheduler.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("scheduler: %w", err))
		}
		caches.Stop()
		if err := res.Cleanup(); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Worker stopped gracefully", log.FieldOperation, log.OpShutdown)
	return nil
}
