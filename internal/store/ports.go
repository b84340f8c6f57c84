// Package store declares the ports of the external document store that
// holds transactions and savings jars. Implementations live in store/memory
// and in internal/storage.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"budgetik/internal/core"
)

// Change operations carried by notifications.
const (
	OpAdded   = "added"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

type (
	TransactionReader interface {
		// Snapshot returns every transaction of a concrete account.
		Snapshot(ctx context.Context, account core.Account) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		Add(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		// Update replaces the record with tx.ID in tx.Account.
		Update(ctx context.Context, tx core.Transaction) error
		Delete(ctx context.Context, account core.Account, id string) error
	}

	// LegacyDeleter removes records written before identifiers existed.
	// The first record, in store order, whose descriptive fields equal tx is
	// removed; Matches reports how many records matched.
	LegacyDeleter interface {
		DeleteMatching(ctx context.Context, tx core.Transaction) (DeleteResult, error)
	}

	JarStore interface {
		CreateJar(ctx context.Context, jar core.SavingsJar) error
		GetJar(ctx context.Context, id string) (core.SavingsJar, error)
		// ListJars returns the owner's active jars, newest first.
		ListJars(ctx context.Context, owner string) ([]core.SavingsJar, error)
		UpdateJar(ctx context.Context, id string, patch core.JarPatch, now time.Time) (core.SavingsJar, error)
		// AddToJar increments CurrentAmount as one read-modify-write. An inactive
		// jar is reported as core.ErrNotFound.
		AddToJar(ctx context.Context, id string, amount decimal.Decimal, now time.Time) (core.SavingsJar, error)
		DeactivateJar(ctx context.Context, id string, now time.Time) error
	}

	SuggestionReader interface {
		Suggestions(ctx context.Context, kind core.Kind) ([]string, error)
	}

	// Store is the full document store surface.
	Store interface {
		TransactionReader
		TransactionWriter
		LegacyDeleter
		JarStore
		SuggestionReader
	}

	// Notifier is told which account changed after a successful mutation.
	Notifier interface {
		Changed(ctx context.Context, change Change) error
	}
)

// Change describes a mutation of one concrete account.
type Change struct {
	Account core.Account `json:"account"`
	Op      string       `json:"op"`
	ID      string       `json:"id,omitempty"`
}

type DeleteResult struct {
	Removed core.Transaction
	Matches int
}

// Notifiers fans a change out to every notifier and joins their errors.
type Notifiers []Notifier

func (ns Notifiers) Changed(ctx context.Context, change Change) error {
	var errs []error
	for _, n := range ns {
		if n == nil {
			continue
		}
		if err := n.Changed(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, change Change) error

func (f NotifierFunc) Changed(ctx context.Context, change Change) error {
	return f(ctx, change)
}
