package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetik/internal/core"
	"budgetik/internal/log"
	"budgetik/internal/store/memory"
)

func txn(id string, account core.Account) core.Transaction {
	return core.Transaction{
		ID:      id,
		Amount:  decimal.NewFromInt(10),
		Date:    "01.08.2025",
		Time:    "10:00:00",
		Kind:    core.KindOutcome,
		Account: account,
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}

func next(t *testing.T, f Feed) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-f.C():
		require.True(t, ok, "feed closed")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot{}
}

func requireClosed(t *testing.T, f Feed) {
	t.Helper()
	select {
	case _, ok := <-f.C():
		require.False(t, ok, "expected closed feed")
	case <-time.After(2 * time.Second):
		t.Fatal("feed not closed")
	}
}

func newHub(t *testing.T) (*Hub, *memory.Store) {
	t.Helper()
	s := memory.New(nil, nil)
	h := NewHub(s, log.Discard())
	t.Cleanup(h.Close)
	return h, s
}

func add(t *testing.T, s *memory.Store, tx core.Transaction) {
	t.Helper()
	_, err := s.Add(context.Background(), tx)
	require.NoError(t, err)
}

func TestMergerStateMachine(t *testing.T) {
	var m Merger
	assert.Equal(t, BothPending, m.State())

	_, emit := m.Apply(core.AccountCard, []core.Transaction{txn("C", core.AccountCard)})
	assert.False(t, emit)
	assert.Equal(t, CardSeen, m.State())

	out, emit := m.Apply(core.AccountCash, []core.Transaction{txn("A", core.AccountCash), txn("B", core.AccountCash)})
	require.True(t, emit)
	assert.Equal(t, BothSeen, m.State())
	assert.Equal(t, []string{"A", "B", "C"}, ids(out))

	out, emit = m.Apply(core.AccountCash, []core.Transaction{txn("A", core.AccountCash), txn("B", core.AccountCash), txn("D", core.AccountCash)})
	require.True(t, emit)
	assert.Equal(t, []string{"A", "B", "D", "C"}, ids(out))

	var fresh Merger
	_, emit = fresh.Apply(core.AccountCash, nil)
	assert.False(t, emit)
	assert.Equal(t, CashSeen, fresh.State())
	out, emit = fresh.Apply(core.AccountCard, nil)
	assert.True(t, emit)
	assert.Empty(t, out)
}

func TestRouterAllIsUnionOfLatestSnapshots(t *testing.T) {
	ctx := context.Background()
	h, s := newHub(t)
	add(t, s, txn("A", core.AccountCash))
	add(t, s, txn("B", core.AccountCash))
	add(t, s, txn("C", core.AccountCard))

	feed, err := NewRouter(h).StreamFor(ctx, core.AccountAll)
	require.NoError(t, err)
	defer feed.Close()

	snap := next(t, feed)
	require.NoError(t, snap.Err)
	assert.Equal(t, core.AccountAll, snap.Account)
	assert.Equal(t, []string{"A", "B", "C"}, ids(snap.Transactions))

	add(t, s, txn("D", core.AccountCash))
	require.NoError(t, h.Refresh(ctx, core.AccountCash))
	snap = next(t, feed)
	assert.Equal(t, []string{"A", "B", "D", "C"}, ids(snap.Transactions))
}

func TestMergedFeedFailsFast(t *testing.T) {
	ctx := context.Background()
	h, s := newHub(t)
	add(t, s, txn("A", core.AccountCash))

	feed, err := NewRouter(h).StreamFor(ctx, core.AccountAll)
	require.NoError(t, err)
	next(t, feed)

	boom := errors.New("store unavailable")
	s.FailReads(boom)
	require.ErrorIs(t, h.Refresh(ctx, core.AccountCard), boom)

	snap := next(t, feed)
	require.ErrorIs(t, snap.Err, boom)
	requireClosed(t, feed)

	assert.Eventually(t, func() bool {
		return h.Subscribers(core.AccountCash) == 0 && h.Subscribers(core.AccountCard) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubscriptionIsLatestWins(t *testing.T) {
	ctx := context.Background()
	h, s := newHub(t)

	sub, err := h.Subscribe(ctx, core.AccountCash)
	require.NoError(t, err)
	defer sub.Close()

	for _, id := range []string{"1", "2", "3"} {
		add(t, s, txn(id, core.AccountCash))
		require.NoError(t, h.Refresh(ctx, core.AccountCash))
	}

	snap := next(t, sub)
	assert.Equal(t, []string{"1", "2", "3"}, ids(snap.Transactions))
	select {
	case extra := <-sub.C():
		t.Fatalf("unexpected pending snapshot %v", ids(extra.Transactions))
	default:
	}
}

func TestSubscribeRejectsAggregate(t *testing.T) {
	h, _ := newHub(t)
	_, err := h.Subscribe(context.Background(), core.AccountAll)
	require.ErrorIs(t, err, core.ErrInvalidAccount)
}

func TestSubscribeInitialReadFailure(t *testing.T) {
	h, s := newHub(t)
	s.FailReads(errors.New("offline"))
	_, err := h.Subscribe(context.Background(), core.AccountCash)
	require.Error(t, err)
	assert.Equal(t, 0, h.Subscribers(core.AccountCash))
}

func TestContextCancelUnsubscribes(t *testing.T) {
	h, _ := newHub(t)
	ctx, cancel := context.WithCancel(context.Background())

	feed, err := NewRouter(h).StreamFor(ctx, core.AccountAll)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Subscribers(core.AccountCash))

	cancel()
	assert.Eventually(t, func() bool {
		return h.Subscribers(core.AccountCash) == 0 && h.Subscribers(core.AccountCard) == 0
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case <-feed.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("merged feed still open")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	h, _ := newHub(t)
	sub, err := h.Subscribe(context.Background(), core.AccountCard)
	require.NoError(t, err)
	sub.Close()
	sub.Close()
	assert.Equal(t, 0, h.Subscribers(core.AccountCard))
	assert.False(t, sub.offer(Snapshot{}))
}

func TestWritable(t *testing.T) {
	assert.NoError(t, Writable(core.AccountCash))
	assert.NoError(t, Writable(core.AccountCard))
	assert.ErrorIs(t, Writable(core.AccountAll), core.ErrAggregateAccount)
	assert.ErrorIs(t, Writable("wallet"), core.ErrInvalidAccount)
}

func TestMergeUpstreamClosed(t *testing.T) {
	cash := newSubscription(nil)
	card := newSubscription(nil)
	merged := Merge(context.Background(), cash, card)

	cash.offer(Snapshot{Account: core.AccountCash})
	card.Close()

	snap := next(t, merged)
	require.ErrorIs(t, snap.Err, ErrUpstreamClosed)
	requireClosed(t, merged)
}
