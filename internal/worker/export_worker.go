// Package worker reacts to account changes published by other processes.
package worker

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"budgetik/internal/core"
	"budgetik/internal/log"
	"budgetik/internal/services"
	"budgetik/internal/store"
)

// ReportExporter sends reports to the configured exporters.
// services.ExportScheduler implements it.
type ReportExporter interface {
	RunOnce(ctx context.Context) ([]services.ExportResult, error)
	ExportAccounts(ctx context.Context, accounts []core.Account) ([]services.ExportResult, error)
}

// ExportWorker keeps exported reports current between scheduled runs.
// Changed accounts are marked dirty and re-exported on the next tick.
type ExportWorker struct {
	exporter ReportExporter
	// invalidator drops cached reports of a changed account
	invalidator store.Notifier
	clock       clockwork.Clock
	logger      *log.Logger

	mu    sync.Mutex
	dirty map[core.Account]struct{}
}

func NewExportWorker(exporter ReportExporter, invalidator store.Notifier, clock clockwork.Clock, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		exporter:    exporter,
		invalidator: invalidator,
		clock:       clock,
		logger:      logger.WithComponent(log.ComponentWorker),
		dirty:       make(map[core.Account]struct{}),
	}
}

// HandleChange processes one change message from the bus.
func (w *ExportWorker) HandleChange(ctx context.Context, change store.Change) error {
	w.logger.DebugContext(ctx, "Processing change message",
		log.FieldAccount, string(change.Account),
		log.FieldOperation, change.Op)

	if w.invalidator != nil {
		if err := w.invalidator.Changed(ctx, change); err != nil {
			return err
		}
	}
	w.mark(change.Account, core.AccountAll)
	return nil
}

func (w *ExportWorker) mark(accounts ...core.Account) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, a := range accounts {
		w.dirty[a] = struct{}{}
	}
}

// Pending returns the accounts waiting for export in export order.
func (w *ExportWorker) Pending() []core.Account {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pendingLocked()
}

func (w *ExportWorker) pendingLocked() []core.Account {
	var out []core.Account
	for _, a := range []core.Account{core.AccountCash, core.AccountCard, core.AccountAll} {
		if _, ok := w.dirty[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

// ProcessPending exports every dirty account. Accounts whose export failed
// stay dirty and are retried on the next call.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	w.mu.Lock()
	accounts := w.pendingLocked()
	clear(w.dirty)
	w.mu.Unlock()

	if len(accounts) == 0 {
		return nil
	}

	results, err := w.exporter.ExportAccounts(ctx, accounts)
	if err == nil {
		w.logger.InfoContext(ctx, "Changed accounts exported", "accounts", len(accounts), "exports", len(results))
		return nil
	}

	exported := make(map[core.Account]bool)
	for _, res := range results {
		if res.Err != nil {
			exported[res.Account] = false
		} else if _, seen := exported[res.Account]; !seen {
			exported[res.Account] = true
		}
	}
	var retry []core.Account
	for _, a := range accounts {
		if ok := exported[a]; !ok {
			retry = append(retry, a)
		}
	}
	w.mark(retry...)
	w.logger.ErrorContext(ctx, "Export of changed accounts failed",
		log.FieldError, err,
		"retry", len(retry))
	return err
}

// StartupExport runs a full export so that changes made while the worker was
// down are not missed.
func (w *ExportWorker) StartupExport(ctx context.Context) error {
	results, err := w.exporter.RunOnce(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Startup export finished with errors", log.FieldError, err)
		return err
	}
	w.logger.InfoContext(ctx, "Startup export completed", "exports", len(results))
	return nil
}

// Run calls ProcessPending every interval until ctx is done.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := w.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			_ = w.ProcessPending(ctx)
		}
	}
}

// IsPending reports whether account waits for export.
func (w *ExportWorker) IsPending(account core.Account) bool {
	return slices.Contains(w.Pending(), account)
}
