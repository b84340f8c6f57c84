package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgetik/internal/core"
)

func sample(id string, account core.Account) core.Transaction {
	return core.Transaction{
		ID:        id,
		OwnerName: "Taras",
		Amount:    decimal.NewFromInt(42),
		Category:  core.NewCategory("Кафе"),
		Date:      "01.08.2025",
		Time:      "12:30:00",
		Kind:      core.KindOutcome,
		Account:   account,
	}
}

func TestAddSnapshotDelete(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)

	if _, err := s.Add(ctx, sample("a", core.AccountCash)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.Add(ctx, sample("b", core.AccountCard)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.Add(ctx, sample("a", core.AccountCash)); !errors.Is(err, core.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if _, err := s.Add(ctx, sample("c", core.AccountAll)); !errors.Is(err, core.ErrAggregateAccount) {
		t.Fatalf("expected ErrAggregateAccount, got %v", err)
	}

	cash, _ := s.Snapshot(ctx, core.AccountCash)
	card, _ := s.Snapshot(ctx, core.AccountCard)
	if len(cash) != 1 || len(card) != 1 {
		t.Fatalf("unexpected snapshots: cash=%v card=%v", cash, card)
	}
	if _, err := s.Snapshot(ctx, core.AccountAll); !errors.Is(err, core.ErrInvalidAccount) {
		t.Fatalf("snapshot of all should fail, got %v", err)
	}

	if err := s.Delete(ctx, core.AccountCard, "a"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete from wrong account should be not found, got %v", err)
	}
	if err := s.Delete(ctx, core.AccountCash, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	cash, _ = s.Snapshot(ctx, core.AccountCash)
	if len(cash) != 0 {
		t.Fatalf("expected empty cash, got %v", cash)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)
	_, _ = s.Add(ctx, sample("a", core.AccountCash))
	snap, _ := s.Snapshot(ctx, core.AccountCash)
	snap[0].Comment = "mutated"
	again, _ := s.Snapshot(ctx, core.AccountCash)
	if again[0].Comment != "" {
		t.Fatalf("snapshot aliases store memory")
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)
	_, _ = s.Add(ctx, sample("a", core.AccountCash))

	changed := sample("a", core.AccountCash)
	changed.Comment = "lunch"
	if err := s.Update(ctx, changed); err != nil {
		t.Fatalf("update: %v", err)
	}
	snap, _ := s.Snapshot(ctx, core.AccountCash)
	if snap[0].Comment != "lunch" {
		t.Fatalf("update not applied: %+v", snap[0])
	}
	if err := s.Update(ctx, sample("zzz", core.AccountCash)); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteMatchingFirstWins(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)
	first := sample("", core.AccountCash)
	second := sample("", core.AccountCash)
	other := sample("", core.AccountCash)
	other.Comment = "different"
	_, _ = s.Add(ctx, first)
	_, _ = s.Add(ctx, other)
	_, _ = s.Add(ctx, second)

	res, err := s.DeleteMatching(ctx, sample("ignored", core.AccountCash))
	if err != nil {
		t.Fatalf("delete matching: %v", err)
	}
	if res.Matches != 2 {
		t.Fatalf("expected 2 matches, got %d", res.Matches)
	}
	snap, _ := s.Snapshot(ctx, core.AccountCash)
	if len(snap) != 2 || snap[0].Comment != "different" {
		t.Fatalf("expected first match removed, got %+v", snap)
	}

	if _, err := s.DeleteMatching(ctx, sample("", core.AccountCard)); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestJarsLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)
	t0 := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "new"} {
		err := s.CreateJar(ctx, core.SavingsJar{
			ID: id, Name: id, OwnerID: "u1", Active: true,
			TargetAmount: decimal.NewFromInt(100), CreatedAt: t0.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	_ = s.CreateJar(ctx, core.SavingsJar{ID: "foreign", OwnerID: "u2", Active: true})

	jars, _ := s.ListJars(ctx, "u1")
	if len(jars) != 2 || jars[0].ID != "new" {
		t.Fatalf("expected newest first, got %+v", jars)
	}

	if err := s.DeactivateJar(ctx, "new", t0); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	jars, _ = s.ListJars(ctx, "u1")
	if len(jars) != 1 || jars[0].ID != "old" {
		t.Fatalf("inactive jar still listed: %+v", jars)
	}
	if _, err := s.GetJar(ctx, "new"); err != nil {
		t.Fatalf("soft-deleted jar must still exist: %v", err)
	}
	if _, err := s.AddToJar(ctx, "new", decimal.NewFromInt(5), t0); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("deposit into inactive jar: expected ErrNotFound, got %v", err)
	}
	if jar, _ := s.GetJar(ctx, "new"); !jar.CurrentAmount.IsZero() {
		t.Fatalf("inactive jar amount changed: %s", jar.CurrentAmount)
	}
}

func TestAddToJarConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)
	_ = s.CreateJar(ctx, core.SavingsJar{ID: "j", Active: true, CurrentAmount: decimal.Zero})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.AddToJar(ctx, "j", decimal.NewFromInt(2), time.Now()); err != nil {
				t.Errorf("add: %v", err)
			}
		}()
	}
	wg.Wait()

	jar, _ := s.GetJar(ctx, "j")
	if !jar.CurrentAmount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("lost update: %s", jar.CurrentAmount)
	}
	if _, err := s.AddToJar(ctx, "missing", decimal.NewFromInt(1), time.Now()); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNewFromFilesSeedsAndDedupe(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFromFiles(dir)
	out, _ := s.Suggestions(ctx, core.KindOutcome)
	in, _ := s.Suggestions(ctx, core.KindIncome)
	if len(out) != 14 || len(in) != 3 {
		t.Fatalf("expected curated defaults when files missing: %v %v", out, in)
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("seed_outcome.txt", "# header\nЇжа\nКава\nЇжа\n\n")
	mustWrite("seed_income.txt", "# header\nБонус\nБонус\n")

	s = NewFromFiles(dir)
	out, _ = s.Suggestions(ctx, core.KindOutcome)
	in, _ = s.Suggestions(ctx, core.KindIncome)
	if len(out) != 2 || out[0] != "Їжа" || out[1] != "Кава" {
		t.Fatalf("unexpected outcome suggestions: %v", out)
	}
	if len(in) != 1 || in[0] != "Бонус" {
		t.Fatalf("unexpected income suggestions: %v", in)
	}
}
