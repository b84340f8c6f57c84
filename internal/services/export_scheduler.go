package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"budgetik/internal/core"
	"budgetik/internal/export"
	"budgetik/internal/ledger"
	"budgetik/internal/log"
)

// ReportSource builds reports for export. LedgerService implements it.
type ReportSource interface {
	Report(ctx context.Context, account core.Account, period ledger.Period) (ledger.Report, error)
}

// ExportSchedulerConfig holds configuration for the export scheduler
type ExportSchedulerConfig struct {
	// Schedule is a standard 5-field cron spec (default: "0 23 * * *").
	Schedule string

	// Periods exported on every run (default: month).
	Periods []ledger.Period

	// Accounts exported on every run (default: cash, card, all).
	Accounts []core.Account

	// Location the schedule is evaluated in (default: local time).
	Location *time.Location

	// Timeout bounds a single run (default: 2m).
	Timeout time.Duration
}

func DefaultExportSchedulerConfig() ExportSchedulerConfig {
	return ExportSchedulerConfig{
		Schedule: "0 23 * * *",
		Periods:  []ledger.Period{ledger.Month},
		Accounts: []core.Account{core.AccountCash, core.AccountCard, core.AccountAll},
		Location: time.Local,
		Timeout:  2 * time.Minute,
	}
}

// ValidateSchedule reports whether spec is a valid standard cron spec.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid export schedule %q: %w", spec, err)
	}
	return nil
}

// ExportResult is the outcome of one report sent to one exporter.
type ExportResult struct {
	Exporter string
	Account  core.Account
	Period   ledger.Period
	Ref      string
	Err      error
}

// ExportScheduler periodically sends reports to every configured exporter.
type ExportScheduler struct {
	source    ReportSource
	exporters []export.Exporter
	config    ExportSchedulerConfig
	logger    *log.Logger

	mu      sync.Mutex
	running bool
	cron    *cron.Cron
	cancel  context.CancelFunc
}

func NewExportScheduler(source ReportSource, exporters []export.Exporter, config ExportSchedulerConfig, logger *log.Logger) *ExportScheduler {
	def := DefaultExportSchedulerConfig()
	if config.Schedule == "" {
		config.Schedule = def.Schedule
	}
	if len(config.Periods) == 0 {
		config.Periods = def.Periods
	}
	if len(config.Accounts) == 0 {
		config.Accounts = def.Accounts
	}
	if config.Location == nil {
		config.Location = def.Location
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	return &ExportScheduler{
		source:    source,
		exporters: exporters,
		config:    config,
		logger:    logger.WithComponent(log.ComponentExport),
	}
}

// Start schedules RunOnce. Returns an error if already running or if the
// schedule does not parse.
func (s *ExportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("export scheduler is already running")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := cron.New(cron.WithLocation(s.config.Location))
	if _, err := c.AddFunc(s.config.Schedule, func() { s.run(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("invalid export schedule %q: %w", s.config.Schedule, err)
	}
	c.Start()

	s.cron = c
	s.cancel = cancel
	s.running = true
	s.logger.InfoContext(ctx, "Export scheduler started",
		"schedule", s.config.Schedule,
		"exporters", len(s.exporters))
	return nil
}

// Stop stops scheduling and waits for a running export to finish.
func (s *ExportScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	c, cancel := s.cron, s.cancel
	s.running = false
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	done := c.Stop()
	select {
	case <-done.Done():
		cancel()
		s.logger.InfoContext(ctx, "Export scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		cancel()
		s.logger.WarnContext(ctx, "Export scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *ExportScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *ExportScheduler) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Scheduled export finished with errors", log.FieldError, err)
	}
}

// RunOnce builds every configured report and sends each to all exporters
// concurrently. A failing exporter does not stop the others; all failures
// are joined into the returned error.
func (s *ExportScheduler) RunOnce(ctx context.Context) ([]ExportResult, error) {
	return s.ExportAccounts(ctx, s.config.Accounts)
}

// ExportAccounts is RunOnce restricted to accounts, for every configured period.
func (s *ExportScheduler) ExportAccounts(ctx context.Context, accounts []core.Account) ([]ExportResult, error) {
	var (
		mu      sync.Mutex
		results []ExportResult
		errs    []error
	)
	record := func(res ExportResult) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, res)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s %s/%s: %w", res.Exporter, res.Account, res.Period, res.Err))
		}
	}

	for _, account := range accounts {
		for _, period := range s.config.Periods {
			report, err := s.source.Report(ctx, account, period)
			if err != nil {
				errs = append(errs, fmt.Errorf("report %s/%s: %w", account, period, err))
				continue
			}

			var g errgroup.Group
			for _, exp := range s.exporters {
				g.Go(func() error {
					ref, err := exp.Export(ctx, report)
					record(ExportResult{Exporter: exp.Name(), Account: account, Period: period, Ref: ref, Err: err})
					return nil
				})
			}
			_ = g.Wait()
		}
	}

	for _, res := range results {
		if res.Err != nil {
			s.logger.WarnContext(ctx, "Export failed",
				log.FieldExporter, res.Exporter,
				log.FieldAccount, string(res.Account),
				log.FieldPeriod, res.Period.String(),
				log.FieldError, res.Err)
			continue
		}
		s.logger.DebugContext(ctx, "Export completed",
			log.FieldExporter, res.Exporter,
			log.FieldAccount, string(res.Account),
			"ref", res.Ref)
	}
	return results, errors.Join(errs...)
}
