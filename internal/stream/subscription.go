// Package stream publishes live per-account transaction snapshots and merges
// the concrete accounts into the "all" view.
package stream

import (
	"sync"

	"budgetik/internal/core"
)

// Snapshot is one emission of a feed. A non-nil Err is terminal: the feed
// closes right after delivering it.
type Snapshot struct {
	Account      core.Account
	Transactions []core.Transaction
	Err          error
}

// Feed is a live sequence of snapshots.
type Feed interface {
	C() <-chan Snapshot
	Close()
}

// Subscription is a latest-wins feed. Its channel holds at most one pending
// snapshot; a newer snapshot replaces an unread one, so publishers never
// block on slow readers.
type Subscription struct {
	mu      sync.Mutex
	ch      chan Snapshot
	done    chan struct{}
	closed  bool
	once    sync.Once
	release func()
}

func newSubscription(release func()) *Subscription {
	return &Subscription{
		ch:      make(chan Snapshot, 1),
		done:    make(chan struct{}),
		release: release,
	}
}

// C returns the snapshot channel. It is closed when the subscription ends.
func (s *Subscription) C() <-chan Snapshot { return s.ch }

// Done is closed when the subscription ends.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close ends the subscription and releases its upstream. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.done)
		close(s.ch)
		s.mu.Unlock()
		if s.release != nil {
			s.release()
		}
	})
}

// offer replaces any pending snapshot with snap. It reports false once closed.
func (s *Subscription) offer(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
	return true
}
