package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetik/internal/core"
	"budgetik/internal/log"
	"budgetik/internal/store/memory"
)

func newSavings() (*SavingsService, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.August, 1, 9, 0, 0, 0, time.UTC))
	return NewSavingsService(memory.New(nil, nil), clock, log.Discard()), clock
}

func TestSavingsCreateDefaults(t *testing.T) {
	s, _ := newSavings()
	jar, err := s.Create(context.Background(), "taras", core.JarDraft{
		Name:         "  Відпустка ",
		TargetAmount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Відпустка", jar.Name)
	assert.Equal(t, core.DefaultJarCategory, jar.Category)
	assert.Equal(t, core.DefaultJarColor, jar.Color)
	assert.True(t, jar.Active)
	assert.True(t, jar.CurrentAmount.IsZero())
}

func TestSavingsCreateValidation(t *testing.T) {
	s, _ := newSavings()
	ctx := context.Background()

	tests := []struct {
		name  string
		owner string
		draft core.JarDraft
		want  error
	}{
		{"empty owner", "", core.JarDraft{Name: "a", TargetAmount: decimal.NewFromInt(1)}, core.ErrEmptyName},
		{"empty name", "o", core.JarDraft{Name: " ", TargetAmount: decimal.NewFromInt(1)}, core.ErrEmptyName},
		{"zero target", "o", core.JarDraft{Name: "a"}, core.ErrInvalidTarget},
		{"negative target", "o", core.JarDraft{Name: "a", TargetAmount: decimal.NewFromInt(-5)}, core.ErrInvalidTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tt.owner, tt.draft)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSavingsListNewestFirstWithTotal(t *testing.T) {
	s, clock := newSavings()
	ctx := context.Background()

	first, err := s.Create(ctx, "o", core.JarDraft{Name: "first", TargetAmount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	clock.Advance(time.Hour)
	second, err := s.Create(ctx, "o", core.JarDraft{Name: "second", TargetAmount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = s.Create(ctx, "someone else", core.JarDraft{Name: "x", TargetAmount: decimal.NewFromInt(1)})
	require.NoError(t, err)

	_, err = s.Deposit(ctx, first.ID, decimal.RequireFromString("10.5"))
	require.NoError(t, err)
	_, err = s.Deposit(ctx, second.ID, decimal.NewFromInt(4))
	require.NoError(t, err)

	sum, err := s.List(ctx, "o")
	require.NoError(t, err)
	require.Len(t, sum.Jars, 2)
	assert.Equal(t, second.ID, sum.Jars[0].ID)
	assert.True(t, sum.Total.Equal(decimal.RequireFromString("14.5")))
}

func TestSavingsDeposit(t *testing.T) {
	s, _ := newSavings()
	ctx := context.Background()
	jar, err := s.Create(ctx, "o", core.JarDraft{Name: "j", TargetAmount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	_, err = s.Deposit(ctx, jar.ID, decimal.Zero)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	_, err = s.Deposit(ctx, "missing", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, core.ErrNotFound)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Deposit(ctx, jar.ID, decimal.NewFromInt(1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sum, err := s.List(ctx, "o")
	require.NoError(t, err)
	assert.True(t, sum.Jars[0].CurrentAmount.Equal(decimal.NewFromInt(20)))
	assert.InDelta(t, 0.2, sum.Jars[0].Progress(), 1e-9)
}

func TestSavingsUpdateAndSoftDelete(t *testing.T) {
	s, clock := newSavings()
	ctx := context.Background()
	jar, err := s.Create(ctx, "o", core.JarDraft{Name: "j", TargetAmount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	name := "renamed"
	updated, err := s.Update(ctx, jar.ID, core.JarPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.True(t, updated.UpdatedAt.After(jar.UpdatedAt))
	assert.True(t, updated.TargetAmount.Equal(jar.TargetAmount))

	bad := decimal.Zero
	_, err = s.Update(ctx, jar.ID, core.JarPatch{TargetAmount: &bad})
	assert.ErrorIs(t, err, core.ErrInvalidTarget)

	require.NoError(t, s.Delete(ctx, jar.ID))
	sum, err := s.List(ctx, "o")
	require.NoError(t, err)
	assert.Empty(t, sum.Jars)

	_, err = s.Deposit(ctx, jar.ID, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, core.ErrNotFound)

	active := true
	restored, err := s.Update(ctx, jar.ID, core.JarPatch{Active: &active})
	require.NoError(t, err)
	assert.True(t, restored.Active)
}
