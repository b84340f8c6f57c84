package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"budgetik/internal/core"
	"budgetik/internal/store"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// fixed width so text order is time order
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Migrations use their own connection and must run before the pool
	// starts handing out connections.
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// a single connection serializes writers, which makes jar deposits atomic
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database answers.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Snapshot(ctx context.Context, account core.Account) ([]core.Transaction, error) {
	if !account.IsConcrete() {
		return nil, fmt.Errorf("snapshot %q: %w", account, core.ErrInvalidAccount)
	}
	rows, err := r.queries.ListTransactions(ctx, string(account))
	if err != nil {
		return nil, fmt.Errorf("list %s transactions: %w", account, err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toCore()
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable transaction", "seq", row.Seq, "error", err)
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *SQLiteRepository) Add(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	seq, err := r.queries.InsertTransaction(ctx, paramsFrom(tx))
	if isUniqueViolation(err) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, core.ErrDuplicateID)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"seq", seq,
		"transaction_id", tx.ID,
		"account", string(tx.Account),
		"amount", tx.Amount.String())
	return tx, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.ID == "" {
		return fmt.Errorf("transaction without id: %w", core.ErrNotFound)
	}
	n, err := r.queries.UpdateTransaction(ctx, paramsFrom(tx))
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", tx.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %q: %w", tx.ID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, account core.Account, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, string(account), id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %q: %w", id, core.ErrNotFound)
	}
	return nil
}

// DeleteMatching removes the oldest inserted record whose descriptive fields
// equal tx.
func (r *SQLiteRepository) DeleteMatching(ctx context.Context, tx core.Transaction) (store.DeleteResult, error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("begin: %w", err)
	}
	defer sqlTx.Rollback()
	q := r.queries.WithTx(sqlTx)

	candidates, err := q.ListMatchCandidates(ctx, paramsFrom(tx))
	if err != nil {
		return store.DeleteResult{}, fmt.Errorf("find matches: %w", err)
	}
	var (
		first   *TransactionRow
		removed core.Transaction
		matches int
	)
	for i := range candidates {
		cand, err := candidates[i].toCore()
		if err != nil || !cand.SameFields(tx) {
			continue
		}
		if first == nil {
			first, removed = &candidates[i], cand
		}
		matches++
	}
	if first == nil {
		return store.DeleteResult{}, fmt.Errorf("no transaction matches: %w", core.ErrNotFound)
	}
	if err := q.DeleteTransactionBySeq(ctx, first.Seq); err != nil {
		return store.DeleteResult{}, fmt.Errorf("delete seq %d: %w", first.Seq, err)
	}
	if err := sqlTx.Commit(); err != nil {
		return store.DeleteResult{}, fmt.Errorf("commit: %w", err)
	}
	return store.DeleteResult{Removed: removed, Matches: matches}, nil
}

func (r *SQLiteRepository) CreateJar(ctx context.Context, jar core.SavingsJar) error {
	err := r.queries.InsertJar(ctx, jarRowFrom(jar))
	if isUniqueViolation(err) {
		return fmt.Errorf("jar %s: %w", jar.ID, core.ErrDuplicateID)
	}
	if err != nil {
		return fmt.Errorf("insert jar: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetJar(ctx context.Context, id string) (core.SavingsJar, error) {
	return r.getJar(ctx, r.queries, id)
}

func (r *SQLiteRepository) getJar(ctx context.Context, q *Queries, id string) (core.SavingsJar, error) {
	row, err := q.GetJar(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsJar{}, fmt.Errorf("jar %q: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.SavingsJar{}, fmt.Errorf("get jar %s: %w", id, err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) ListJars(ctx context.Context, owner string) ([]core.SavingsJar, error) {
	rows, err := r.queries.ListActiveJars(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list jars: %w", err)
	}
	out := make([]core.SavingsJar, 0, len(rows))
	for _, row := range rows {
		jar, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, jar)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateJar(ctx context.Context, id string, patch core.JarPatch, now time.Time) (core.SavingsJar, error) {
	return r.modifyJar(ctx, id, func(j core.SavingsJar) (core.SavingsJar, error) {
		j = patch.Apply(j)
		j.UpdatedAt = now
		return j, nil
	})
}

func (r *SQLiteRepository) AddToJar(ctx context.Context, id string, amount decimal.Decimal, now time.Time) (core.SavingsJar, error) {
	return r.modifyJar(ctx, id, func(j core.SavingsJar) (core.SavingsJar, error) {
		if !j.Active {
			return j, fmt.Errorf("jar %q is inactive: %w", id, core.ErrNotFound)
		}
		j.CurrentAmount = j.CurrentAmount.Add(amount)
		j.UpdatedAt = now
		return j, nil
	})
}

func (r *SQLiteRepository) DeactivateJar(ctx context.Context, id string, now time.Time) error {
	_, err := r.modifyJar(ctx, id, func(j core.SavingsJar) (core.SavingsJar, error) {
		j.Active = false
		j.UpdatedAt = now
		return j, nil
	})
	return err
}

// modifyJar runs a read-modify-write of one jar inside a transaction.
func (r *SQLiteRepository) modifyJar(ctx context.Context, id string, fn func(core.SavingsJar) (core.SavingsJar, error)) (core.SavingsJar, error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.SavingsJar{}, fmt.Errorf("begin: %w", err)
	}
	defer sqlTx.Rollback()
	q := r.queries.WithTx(sqlTx)

	jar, err := r.getJar(ctx, q, id)
	if err != nil {
		return core.SavingsJar{}, err
	}
	if jar, err = fn(jar); err != nil {
		return core.SavingsJar{}, err
	}
	if err := q.UpdateJar(ctx, jarRowFrom(jar)); err != nil {
		return core.SavingsJar{}, fmt.Errorf("update jar %s: %w", id, err)
	}
	if err := sqlTx.Commit(); err != nil {
		return core.SavingsJar{}, fmt.Errorf("commit: %w", err)
	}
	return jar, nil
}

func (r *SQLiteRepository) Suggestions(ctx context.Context, kind core.Kind) ([]string, error) {
	labels, err := r.queries.ListSuggestions(ctx, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	return labels, nil
}

func paramsFrom(tx core.Transaction) InsertTransactionParams {
	p := InsertTransactionParams{
		ID:        sql.NullString{String: tx.ID, Valid: tx.ID != ""},
		Account:   string(tx.Account),
		OwnerName: tx.OwnerName,
		Amount:    tx.Amount.String(),
		Date:      tx.Date,
		Time:      tx.Time,
		Comment:   tx.Comment,
		Kind:      string(tx.Kind),
	}
	if !tx.Category.IsAbsent() {
		p.Category = sql.NullString{String: tx.Category.Label(), Valid: true}
	}
	return p
}

func (row TransactionRow) toCore() (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", row.Amount, err)
	}
	tx := core.Transaction{
		ID:        row.ID.String,
		OwnerName: row.OwnerName,
		Amount:    amount,
		Date:      row.Date,
		Time:      row.Time,
		Comment:   row.Comment,
		Kind:      core.Kind(row.Kind),
		Account:   core.Account(row.Account),
	}
	if row.Category.Valid {
		tx.Category = core.NewCategory(row.Category.String)
	}
	return tx, nil
}

func jarRowFrom(j core.SavingsJar) JarRow {
	return JarRow{
		ID:            j.ID,
		Name:          j.Name,
		TargetAmount:  j.TargetAmount.String(),
		CurrentAmount: j.CurrentAmount.String(),
		Color:         j.Color,
		OwnerID:       j.OwnerID,
		CreatedAt:     j.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:     j.UpdatedAt.UTC().Format(timestampLayout),
		Active:        j.Active,
		Description:   j.Description,
		Category:      j.Category,
	}
}

func (row JarRow) toCore() (core.SavingsJar, error) {
	target, err := decimal.NewFromString(row.TargetAmount)
	if err != nil {
		return core.SavingsJar{}, fmt.Errorf("jar %s target: %w", row.ID, err)
	}
	current, err := decimal.NewFromString(row.CurrentAmount)
	if err != nil {
		return core.SavingsJar{}, fmt.Errorf("jar %s current: %w", row.ID, err)
	}
	created, _ := time.Parse(timestampLayout, row.CreatedAt)
	updated, _ := time.Parse(timestampLayout, row.UpdatedAt)
	return core.SavingsJar{
		ID:            row.ID,
		Name:          row.Name,
		TargetAmount:  target,
		CurrentAmount: current,
		Color:         row.Color,
		OwnerID:       row.OwnerID,
		CreatedAt:     created,
		UpdatedAt:     updated,
		Active:        row.Active,
		Description:   row.Description,
		Category:      row.Category,
	}, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
