package stream

import (
	"context"
	"fmt"
	"sync"

	"budgetik/internal/core"
	"budgetik/internal/log"
	"budgetik/internal/store"
)

// Hub fans store snapshots out to per-account subscribers. Every refresh
// re-reads the whole account; a read newer than the last published one
// always wins, so late results of slow reads are dropped.
type Hub struct {
	source store.TransactionReader
	logger *log.Logger

	mu        sync.Mutex
	subs      map[core.Account]map[*Subscription]struct{}
	seq       map[core.Account]uint64
	published map[core.Account]uint64
}

var _ store.Notifier = (*Hub)(nil)

func NewHub(source store.TransactionReader, logger *log.Logger) *Hub {
	return &Hub{
		source:    source,
		logger:    logger.WithComponent(log.ComponentStream),
		subs:      make(map[core.Account]map[*Subscription]struct{}),
		seq:       make(map[core.Account]uint64),
		published: make(map[core.Account]uint64),
	}
}

// Subscribe registers a subscriber for a concrete account and delivers the
// current snapshot. The subscription ends when ctx is done or Close is called.
func (h *Hub) Subscribe(ctx context.Context, account core.Account) (*Subscription, error) {
	if !account.IsConcrete() {
		return nil, fmt.Errorf("subscribe %q: %w", account, core.ErrInvalidAccount)
	}

	var sub *Subscription
	sub = newSubscription(func() { h.remove(account, sub) })

	h.mu.Lock()
	if h.subs[account] == nil {
		h.subs[account] = make(map[*Subscription]struct{})
	}
	h.subs[account][sub] = struct{}{}
	seq := h.next(account)
	h.mu.Unlock()

	txs, err := h.source.Snapshot(ctx, account)
	if err != nil {
		sub.Close()
		return nil, fmt.Errorf("initial snapshot of %s: %w", account, err)
	}
	h.publish(account, seq, Snapshot{Account: account, Transactions: txs})

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.Done():
		}
	}()
	return sub, nil
}

// Refresh re-reads account and publishes the result. A read failure is
// delivered to every subscriber of the account and ends their subscriptions.
func (h *Hub) Refresh(ctx context.Context, account core.Account) error {
	if !account.IsConcrete() {
		return fmt.Errorf("refresh %q: %w", account, core.ErrInvalidAccount)
	}
	h.mu.Lock()
	seq := h.next(account)
	h.mu.Unlock()

	txs, err := h.source.Snapshot(ctx, account)
	if err != nil {
		err = fmt.Errorf("snapshot of %s: %w", account, err)
		h.logger.ErrorContext(ctx, "Live feed failed", log.FieldAccount, string(account), log.FieldError, err)
		h.publish(account, seq, Snapshot{Account: account, Err: err})
		return err
	}
	h.publish(account, seq, Snapshot{Account: account, Transactions: txs})
	return nil
}

// Changed refreshes the account named by the change.
func (h *Hub) Changed(ctx context.Context, change store.Change) error {
	return h.Refresh(ctx, change.Account)
}

// Subscribers returns the number of live subscribers of account.
func (h *Hub) Subscribers(account core.Account) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[account])
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	var all []*Subscription
	for account, subs := range h.subs {
		for sub := range subs {
			all = append(all, sub)
		}
		delete(h.subs, account)
	}
	h.mu.Unlock()
	for _, sub := range all {
		sub.Close()
	}
}

// next must be called with h.mu held.
func (h *Hub) next(account core.Account) uint64 {
	h.seq[account]++
	return h.seq[account]
}

func (h *Hub) publish(account core.Account, seq uint64, snap Snapshot) {
	h.mu.Lock()
	if seq <= h.published[account] {
		h.mu.Unlock()
		return
	}
	h.published[account] = seq

	var failed []*Subscription
	for sub := range h.subs[account] {
		sub.offer(snap)
		if snap.Err != nil {
			failed = append(failed, sub)
		}
	}
	if snap.Err != nil {
		delete(h.subs, account)
	}
	h.mu.Unlock()

	for _, sub := range failed {
		sub.Close()
	}
}

func (h *Hub) remove(account core.Account, sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[account], sub)
}
