package stream

import (
	"context"
	"fmt"

	"budgetik/internal/core"
)

// Router maps an account selector to its live feed.
type Router struct {
	hub *Hub
}

func NewRouter(hub *Hub) *Router {
	return &Router{hub: hub}
}

// StreamFor returns the live feed for account. For all it subscribes to both
// concrete accounts and merges them.
func (r *Router) StreamFor(ctx context.Context, account core.Account) (*Subscription, error) {
	switch account {
	case core.AccountCash, core.AccountCard:
		return r.hub.Subscribe(ctx, account)
	case core.AccountAll:
		cash, err := r.hub.Subscribe(ctx, core.AccountCash)
		if err != nil {
			return nil, err
		}
		card, err := r.hub.Subscribe(ctx, core.AccountCard)
		if err != nil {
			cash.Close()
			return nil, err
		}
		return Merge(ctx, cash, card), nil
	default:
		return nil, fmt.Errorf("stream for %q: %w", account, core.ErrInvalidAccount)
	}
}

// Writable rejects mutations that do not target a concrete account.
func Writable(account core.Account) error {
	switch {
	case account == core.AccountAll:
		return core.ErrAggregateAccount
	case !account.IsConcrete():
		return fmt.Errorf("%w: %q", core.ErrInvalidAccount, string(account))
	}
	return nil
}
