package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"budgetik/internal/core"
	"budgetik/internal/store"
)

// Store keeps transactions and jars in process memory. Records of each
// account are kept in insertion order, which is the order DeleteMatching
// scans.
type Store struct {
	mu        sync.Mutex
	outcome   []string
	income    []string
	accounts  map[core.Account][]core.Transaction
	jars      map[string]core.SavingsJar
	failReads error
}

var _ store.Store = (*Store)(nil)

func New(outcome, income []string) *Store {
	return &Store{
		outcome:  dedupe(outcome),
		income:   dedupe(income),
		accounts: make(map[core.Account][]core.Transaction),
		jars:     make(map[string]core.SavingsJar),
	}
}

// NewFromFiles seeds suggestions from seed_outcome.txt and seed_income.txt in
// base, falling back to the curated lists.
func NewFromFiles(base string) *Store {
	outcome := readLines(filepath.Join(base, "seed_outcome.txt"))
	income := readLines(filepath.Join(base, "seed_income.txt"))
	if len(outcome) == 0 {
		outcome = core.SuggestedCategories(core.KindOutcome)
	}
	if len(income) == 0 {
		income = core.SuggestedCategories(core.KindIncome)
	}
	return New(outcome, income)
}

// FailReads makes every Snapshot return err until called with nil.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReads = err
}

func (s *Store) Snapshot(_ context.Context, account core.Account) ([]core.Transaction, error) {
	if !account.IsConcrete() {
		return nil, fmt.Errorf("snapshot %q: %w", account, core.ErrInvalidAccount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads != nil {
		return nil, s.failReads
	}
	return slices.Clone(s.accounts[account]), nil
}

func (s *Store) Add(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID != "" && indexOf(s.accounts[tx.Account], tx.ID) >= 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, core.ErrDuplicateID)
	}
	s.accounts[tx.Account] = append(s.accounts[tx.Account], tx)
	return tx, nil
}

func (s *Store) Update(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.accounts[tx.Account]
	i := indexOf(list, tx.ID)
	if tx.ID == "" || i < 0 {
		return fmt.Errorf("transaction %q: %w", tx.ID, core.ErrNotFound)
	}
	list[i] = tx
	return nil
}

func (s *Store) Delete(_ context.Context, account core.Account, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.accounts[account]
	i := indexOf(list, id)
	if id == "" || i < 0 {
		return fmt.Errorf("transaction %q: %w", id, core.ErrNotFound)
	}
	s.accounts[account] = slices.Delete(list, i, i+1)
	return nil
}

func (s *Store) DeleteMatching(_ context.Context, tx core.Transaction) (store.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.accounts[tx.Account]
	first, matches := -1, 0
	for i, cand := range list {
		if cand.SameFields(tx) {
			if first < 0 {
				first = i
			}
			matches++
		}
	}
	if first < 0 {
		return store.DeleteResult{}, fmt.Errorf("no transaction matches: %w", core.ErrNotFound)
	}
	removed := list[first]
	s.accounts[tx.Account] = slices.Delete(list, first, first+1)
	return store.DeleteResult{Removed: removed, Matches: matches}, nil
}

func (s *Store) CreateJar(_ context.Context, jar core.SavingsJar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jars[jar.ID]; ok {
		return fmt.Errorf("jar %s: %w", jar.ID, core.ErrDuplicateID)
	}
	s.jars[jar.ID] = jar
	return nil
}

func (s *Store) GetJar(_ context.Context, id string) (core.SavingsJar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jar, ok := s.jars[id]
	if !ok {
		return core.SavingsJar{}, fmt.Errorf("jar %q: %w", id, core.ErrNotFound)
	}
	return jar, nil
}

func (s *Store) ListJars(_ context.Context, owner string) ([]core.SavingsJar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.SavingsJar, 0)
	for _, j := range s.jars {
		if j.Active && j.OwnerID == owner {
			out = append(out, j)
		}
	}
	slices.SortFunc(out, func(a, b core.SavingsJar) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) UpdateJar(_ context.Context, id string, patch core.JarPatch, now time.Time) (core.SavingsJar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jar, ok := s.jars[id]
	if !ok {
		return core.SavingsJar{}, fmt.Errorf("jar %q: %w", id, core.ErrNotFound)
	}
	jar = patch.Apply(jar)
	jar.UpdatedAt = now
	s.jars[id] = jar
	return jar, nil
}

func (s *Store) AddToJar(_ context.Context, id string, amount decimal.Decimal, now time.Time) (core.SavingsJar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jar, ok := s.jars[id]
	if !ok {
		return core.SavingsJar{}, fmt.Errorf("jar %q: %w", id, core.ErrNotFound)
	}
	if !jar.Active {
		return core.SavingsJar{}, fmt.Errorf("jar %q is inactive: %w", id, core.ErrNotFound)
	}
	jar.CurrentAmount = jar.CurrentAmount.Add(amount)
	jar.UpdatedAt = now
	s.jars[id] = jar
	return jar, nil
}

func (s *Store) DeactivateJar(_ context.Context, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	jar, ok := s.jars[id]
	if !ok {
		return fmt.Errorf("jar %q: %w", id, core.ErrNotFound)
	}
	jar.Active = false
	jar.UpdatedAt = now
	s.jars[id] = jar
	return nil
}

// Suggestions returns the category suggestions for kind.
func (s *Store) Suggestions(_ context.Context, kind core.Kind) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == core.KindIncome {
		return slices.Clone(s.income), nil
	}
	return slices.Clone(s.outcome), nil
}

func indexOf(list []core.Transaction, id string) int {
	return slices.IndexFunc(list, func(tx core.Transaction) bool { return tx.ID == id })
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe drops blanks and repeats, keeping first-seen order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
