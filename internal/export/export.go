// Package export turns period reports into tabular rows for report exporters.
package export

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"budgetik/internal/ledger"
)

// Exporter writes a report somewhere and returns a reference to the result
// (file path, sheet range).
type Exporter interface {
	Name() string
	Export(ctx context.Context, r ledger.Report) (string, error)
}

// TransactionHeader is the header row of the transaction table.
var TransactionHeader = []string{"Date", "Time", "Account", "Kind", "Category", "Amount", "Comment"}

// CategoryHeader is the header row of the category table.
var CategoryHeader = []string{"Category", "Sum", "Share"}

// Title names a report, e.g. "cash / Місяць / Серпень".
func Title(r ledger.Report, l ledger.Locale) string {
	return fmt.Sprintf("%s / %s / %s", r.Account, r.Period.DisplayName(l), r.Label)
}

// TransactionRows flattens the report's day groups, newest first. Amounts
// are signed decimals truncated to two places; exporters decide how to
// render them (see Cell).
func TransactionRows(r ledger.Report) [][]any {
	txs := ledger.Flatten(r.Days)
	rows := make([][]any, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []any{
			tx.Date,
			tx.Time,
			string(tx.Account),
			string(tx.Kind),
			tx.Category.Label(),
			tx.Signed().Truncate(2),
			tx.Comment,
		})
	}
	return rows
}

// CategoryRows lists each outcome category share, largest first.
func CategoryRows(r ledger.Report) [][]any {
	rows := make([][]any, 0, len(r.Shares))
	for _, s := range r.Shares {
		rows = append(rows, []any{s.Category, s.Sum.Truncate(2), s.Label})
	}
	return rows
}

// SummaryRows holds the totals block printed under the tables.
func SummaryRows(r ledger.Report) [][]any {
	return [][]any{
		{"Income", r.Totals.Income.Truncate(2)},
		{"Outcome", r.Totals.Outcome.Truncate(2)},
		{"Period balance", r.Totals.Balance.Truncate(2)},
		{"Account balance", r.Balance.Truncate(2)},
	}
}

// Cell renders v as plain text, with decimals fixed to two places and a dot
// separator.
func Cell(v any) string {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.StringFixed(2)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// Header converts a header row to a cell row.
func Header(cols []string) []any {
	row := make([]any, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}
