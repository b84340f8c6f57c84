package stream

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"budgetik/internal/core"
)

// ErrUpstreamClosed ends a merged feed whose upstream went away without an error.
var ErrUpstreamClosed = errors.New("upstream feed closed")

// MergeState tracks which upstreams have produced a snapshot so far.
type MergeState int

const (
	BothPending MergeState = iota
	CashSeen
	CardSeen
	BothSeen
)

func (s MergeState) String() string {
	switch s {
	case BothPending:
		return "both-pending"
	case CashSeen:
		return "cash-only-seen"
	case CardSeen:
		return "card-only-seen"
	case BothSeen:
		return "both-seen"
	}
	return "unknown"
}

// Merger holds the last-known snapshot of each concrete account. It emits the
// concatenation cash++card once both sides have been seen, and again on every
// later update of either side.
type Merger struct {
	state MergeState
	cash  []core.Transaction
	card  []core.Transaction
}

func (m *Merger) State() MergeState { return m.state }

// Apply records an upstream snapshot and returns the merged list when one
// should be emitted.
func (m *Merger) Apply(account core.Account, txs []core.Transaction) ([]core.Transaction, bool) {
	switch account {
	case core.AccountCash:
		m.cash = txs
		switch m.state {
		case BothPending:
			m.state = CashSeen
		case CardSeen:
			m.state = BothSeen
		}
	case core.AccountCard:
		m.card = txs
		switch m.state {
		case BothPending:
			m.state = CardSeen
		case CashSeen:
			m.state = BothSeen
		}
	default:
		return nil, false
	}
	if m.state != BothSeen {
		return nil, false
	}
	return slices.Concat(m.cash, m.card), true
}

// Merge combines the cash and card feeds into the "all" feed. The first
// failure of either upstream is delivered and ends the merged feed. Closing
// the merged feed, or cancelling ctx, closes both upstreams.
func Merge(ctx context.Context, cash, card Feed) *Subscription {
	out := newSubscription(func() {
		cash.Close()
		card.Close()
	})

	go func() {
		defer out.Close()
		var m Merger
		cashC, cardC := cash.C(), card.C()
		for {
			var (
				snap Snapshot
				ok   bool
				from core.Account
			)
			select {
			case <-ctx.Done():
				return
			case <-out.Done():
				return
			case snap, ok = <-cashC:
				from = core.AccountCash
			case snap, ok = <-cardC:
				from = core.AccountCard
			}
			if !ok {
				out.offer(Snapshot{Account: core.AccountAll, Err: fmt.Errorf("%s: %w", from, ErrUpstreamClosed)})
				return
			}
			if snap.Err != nil {
				out.offer(Snapshot{Account: core.AccountAll, Err: snap.Err})
				return
			}
			if merged, emit := m.Apply(from, snap.Transactions); emit {
				out.offer(Snapshot{Account: core.AccountAll, Transactions: merged})
			}
		}
	}()
	return out
}
