package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type TransactionRow struct {
	Seq       int64
	ID        sql.NullString
	Account   string
	OwnerName string
	Amount    string
	Category  sql.NullString
	Date      string
	Time      string
	Comment   string
	Kind      string
}

const transactionColumns = `seq, id, account, owner_name, amount, category, date, time, comment, kind`

func scanTransaction(sc interface{ Scan(...any) error }) (TransactionRow, error) {
	var r TransactionRow
	err := sc.Scan(&r.Seq, &r.ID, &r.Account, &r.OwnerName, &r.Amount, &r.Category, &r.Date, &r.Time, &r.Comment, &r.Kind)
	return r, err
}

const listTransactions = `SELECT ` + transactionColumns + `
FROM transactions
WHERE account = ?
ORDER BY seq`

func (q *Queries) ListTransactions(ctx context.Context, account string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		r, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

type InsertTransactionParams struct {
	ID        sql.NullString
	Account   string
	OwnerName string
	Amount    string
	Category  sql.NullString
	Date      string
	Time      string
	Comment   string
	Kind      string
}

const insertTransaction = `INSERT INTO transactions (id, account, owner_name, amount, category, date, time, comment, kind)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertTransaction,
		arg.ID, arg.Account, arg.OwnerName, arg.Amount, arg.Category, arg.Date, arg.Time, arg.Comment, arg.Kind)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const updateTransaction = `UPDATE transactions
SET owner_name = ?, amount = ?, category = ?, date = ?, time = ?, comment = ?, kind = ?
WHERE account = ? AND id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, arg InsertTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		arg.OwnerName, arg.Amount, arg.Category, arg.Date, arg.Time, arg.Comment, arg.Kind, arg.Account, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE account = ? AND id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, account, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, account, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransactionBySeq = `DELETE FROM transactions WHERE seq = ?`

func (q *Queries) DeleteTransactionBySeq(ctx context.Context, seq int64) error {
	_, err := q.db.ExecContext(ctx, deleteTransactionBySeq, seq)
	return err
}

// Amounts are compared in Go since their text form is not canonical.
const listMatchCandidates = `SELECT ` + transactionColumns + `
FROM transactions
WHERE account = ? AND owner_name = ? AND category IS ? AND date = ? AND time = ? AND comment = ? AND kind = ?
ORDER BY seq`

func (q *Queries) ListMatchCandidates(ctx context.Context, arg InsertTransactionParams) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listMatchCandidates,
		arg.Account, arg.OwnerName, arg.Category, arg.Date, arg.Time, arg.Comment, arg.Kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		r, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

type JarRow struct {
	ID            string
	Name          string
	TargetAmount  string
	CurrentAmount string
	Color         string
	OwnerID       string
	CreatedAt     string
	UpdatedAt     string
	Active        bool
	Description   string
	Category      string
}

const jarColumns = `id, name, target_amount, current_amount, color, owner_id, created_at, updated_at, active, description, category`

func scanJar(sc interface{ Scan(...any) error }) (JarRow, error) {
	var r JarRow
	err := sc.Scan(&r.ID, &r.Name, &r.TargetAmount, &r.CurrentAmount, &r.Color, &r.OwnerID,
		&r.CreatedAt, &r.UpdatedAt, &r.Active, &r.Description, &r.Category)
	return r, err
}

const insertJar = `INSERT INTO savings_jars (` + jarColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertJar(ctx context.Context, r JarRow) error {
	_, err := q.db.ExecContext(ctx, insertJar, r.ID, r.Name, r.TargetAmount, r.CurrentAmount, r.Color,
		r.OwnerID, r.CreatedAt, r.UpdatedAt, r.Active, r.Description, r.Category)
	return err
}

const getJar = `SELECT ` + jarColumns + ` FROM savings_jars WHERE id = ?`

func (q *Queries) GetJar(ctx context.Context, id string) (JarRow, error) {
	return scanJar(q.db.QueryRowContext(ctx, getJar, id))
}

const listActiveJars = `SELECT ` + jarColumns + `
FROM savings_jars
WHERE owner_id = ? AND active = 1
ORDER BY created_at DESC, id`

func (q *Queries) ListActiveJars(ctx context.Context, owner string) ([]JarRow, error) {
	rows, err := q.db.QueryContext(ctx, listActiveJars, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []JarRow
	for rows.Next() {
		r, err := scanJar(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const updateJar = `UPDATE savings_jars
SET name = ?, target_amount = ?, current_amount = ?, color = ?, updated_at = ?, active = ?, description = ?, category = ?
WHERE id = ?`

func (q *Queries) UpdateJar(ctx context.Context, r JarRow) error {
	_, err := q.db.ExecContext(ctx, updateJar, r.Name, r.TargetAmount, r.CurrentAmount, r.Color,
		r.UpdatedAt, r.Active, r.Description, r.Category, r.ID)
	return err
}

const listSuggestions = `SELECT label FROM category_suggestions WHERE kind = ? ORDER BY position, label`

func (q *Queries) ListSuggestions(ctx context.Context, kind string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listSuggestions, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
