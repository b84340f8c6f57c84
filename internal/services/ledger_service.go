package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"budgetik/internal/cache"
	"budgetik/internal/core"
	"budgetik/internal/ledger"
	"budgetik/internal/log"
	"budgetik/internal/store"
	"budgetik/internal/stream"
)

// LedgerConfig holds presentation settings of the ledger service.
type LedgerConfig struct {
	Location *time.Location
	Locale   ledger.Locale
	// Reports caches built reports; nil disables caching.
	Reports cache.Cache[ledger.Report]
}

// LedgerService records transactions and derives reports from the store.
// Every successful mutation invalidates cached reports and notifies the
// configured notifier (live feeds, the change bus).
type LedgerService struct {
	store    store.Store
	notifier store.Notifier
	clock    clockwork.Clock
	cfg      LedgerConfig
	logger   *log.Logger
	events   *log.StructuredLogger
}

func NewLedgerService(st store.Store, notifier store.Notifier, clock clockwork.Clock, logger *log.Logger, cfg LedgerConfig) *LedgerService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Locale.Name == "" {
		cfg.Locale = ledger.Ukrainian
	}
	l := logger.WithComponent(log.ComponentLedger)
	return &LedgerService{
		store:    st,
		notifier: notifier,
		clock:    clock,
		cfg:      cfg,
		logger:   l,
		events:   log.NewStructuredLogger(l),
	}
}

// Now returns the current time in the configured location.
func (s *LedgerService) Now() time.Time {
	return s.clock.Now().In(s.cfg.Location)
}

func (s *LedgerService) Locale() ledger.Locale {
	return s.cfg.Locale
}

// Add stores a new transaction. A missing id is generated and a missing date
// or time is stamped from the clock.
func (s *LedgerService) Add(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := stream.Writable(tx.Account); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	now := s.Now()
	if tx.Date == "" {
		tx.Date = core.FormatDate(now)
	}
	if tx.Time == "" {
		tx.Time = core.FormatTime(now)
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.Add(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	s.events.LogTransactionSaved(ctx, log.OpCreate, saved)
	s.changed(ctx, store.Change{Account: saved.Account, Op: store.OpAdded, ID: saved.ID})
	return saved, nil
}

// Update replaces the stored transaction with the same id and account.
func (s *LedgerService) Update(ctx context.Context, tx core.Transaction) error {
	if err := stream.Writable(tx.Account); err != nil {
		return err
	}
	if tx.ID == "" {
		return fmt.Errorf("update without id: %w", core.ErrNotFound)
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	if err := s.store.Update(ctx, tx); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	s.events.LogTransactionSaved(ctx, log.OpUpdate, tx)
	s.changed(ctx, store.Change{Account: tx.Account, Op: store.OpUpdated, ID: tx.ID})
	return nil
}

// Delete removes a transaction by id.
func (s *LedgerService) Delete(ctx context.Context, account core.Account, id string) error {
	if err := stream.Writable(account); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, account, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldTransactionID, id,
		log.FieldAccount, string(account))
	s.changed(ctx, store.Change{Account: account, Op: store.OpDeleted, ID: id})
	return nil
}

// DeleteLegacy removes a record without an id by matching every descriptive
// field. When several records match, the first in store order is removed and
// the ambiguity is logged.
func (s *LedgerService) DeleteLegacy(ctx context.Context, tx core.Transaction) (store.DeleteResult, error) {
	if err := stream.Writable(tx.Account); err != nil {
		return store.DeleteResult{}, err
	}
	res, err := s.store.DeleteMatching(ctx, tx)
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("delete matching transaction: %w", err)
	}
	if res.Matches > 1 {
		s.logger.WarnContext(ctx, "Ambiguous legacy delete, removed first match",
			log.FieldAccount, string(tx.Account),
			log.FieldMatches, res.Matches)
	}
	s.changed(ctx, store.Change{Account: tx.Account, Op: store.OpDeleted, ID: res.Removed.ID})
	return res, nil
}

// Snapshot returns the transactions of account; all is cash followed by card.
func (s *LedgerService) Snapshot(ctx context.Context, account core.Account) ([]core.Transaction, error) {
	switch account {
	case core.AccountCash, core.AccountCard:
		return s.store.Snapshot(ctx, account)
	case core.AccountAll:
		cash, card, err := s.accountSnapshots(ctx)
		if err != nil {
			return nil, err
		}
		return slices.Concat(cash, card), nil
	default:
		return nil, fmt.Errorf("snapshot %q: %w", account, core.ErrInvalidAccount)
	}
}

// accountSnapshots reads cash and card concurrently.
func (s *LedgerService) accountSnapshots(ctx context.Context) (cash, card []core.Transaction, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cash, err = s.store.Snapshot(gctx, core.AccountCash)
		return err
	})
	g.Go(func() (err error) {
		card, err = s.store.Snapshot(gctx, core.AccountCard)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return cash, card, nil
}

// Days returns the period's transactions of account grouped by day.
func (s *LedgerService) Days(ctx context.Context, account core.Account, period ledger.Period) ([]ledger.DayGroup, error) {
	txs, err := s.Snapshot(ctx, account)
	if err != nil {
		return nil, err
	}
	return ledger.Group(ledger.Filter(txs, period, s.Now())), nil
}

// Report builds the dashboard report for account and period as of today.
func (s *LedgerService) Report(ctx context.Context, account core.Account, period ledger.Period) (ledger.Report, error) {
	now := s.Now()
	key := reportKey(account, period, now)
	if s.cfg.Reports != nil {
		if r, ok := s.cfg.Reports.Get(key); ok {
			return r, nil
		}
	}

	var r ledger.Report
	if account == core.AccountAll {
		cash, card, err := s.accountSnapshots(ctx)
		if err != nil {
			return ledger.Report{}, fmt.Errorf("report %s/%s: %w", account, period, err)
		}
		r = ledger.BuildReport(slices.Concat(cash, card), account, period, now, s.cfg.Locale)
		// all balance is the sum of independently computed account balances
		r.Balance = ledger.CombineBalances(ledger.Balance(cash), ledger.Balance(card)).All
	} else {
		txs, err := s.Snapshot(ctx, account)
		if err != nil {
			return ledger.Report{}, fmt.Errorf("report %s/%s: %w", account, period, err)
		}
		r = ledger.BuildReport(txs, account, period, now, s.cfg.Locale)
	}
	if s.cfg.Reports != nil {
		s.cfg.Reports.Set(key, r)
	}
	return r, nil
}

// Balances computes both account balances concurrently and sums them.
func (s *LedgerService) Balances(ctx context.Context) (core.Balances, error) {
	cash, card, err := s.accountSnapshots(ctx)
	if err != nil {
		return core.Balances{}, fmt.Errorf("balances: %w", err)
	}
	return ledger.CombineBalances(ledger.Balance(cash), ledger.Balance(card)), nil
}

// Suggestions returns category suggestions for kind.
func (s *LedgerService) Suggestions(ctx context.Context, kind core.Kind) ([]string, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	return s.store.Suggestions(ctx, kind)
}

// Changed drops cached reports of the changed account. It lets the service
// listen to changes made by other processes.
func (s *LedgerService) Changed(_ context.Context, change store.Change) error {
	s.invalidate(change.Account)
	return nil
}

func (s *LedgerService) changed(ctx context.Context, change store.Change) {
	s.invalidate(change.Account)
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Changed(ctx, change); err != nil {
		// the mutation is stored; listeners catch up on their next refresh
		s.logger.ErrorContext(ctx, "Failed to notify change",
			log.FieldAccount, string(change.Account),
			log.FieldOperation, change.Op,
			log.FieldError, err)
	}
}

func (s *LedgerService) invalidate(account core.Account) {
	if s.cfg.Reports == nil {
		return
	}
	s.cfg.Reports.DeletePrefix(string(account) + "|")
	s.cfg.Reports.DeletePrefix(string(core.AccountAll) + "|")
}

func reportKey(account core.Account, period ledger.Period, now time.Time) string {
	return fmt.Sprintf("%s|%s|%s", account, period, core.FormatDate(now))
}
