// Package ledger holds the pure aggregation over transaction lists: grouping
// by day, period windows and their labels, category shares and balances.
// Nothing here performs I/O.
package ledger

import (
	"cmp"
	"slices"
	"strings"

	"budgetik/internal/core"
)

// DayGroup is one calendar day of transactions, newest first.
type DayGroup struct {
	Date         string             `json:"date"`
	Transactions []core.Transaction `json:"transactions"`
}

// Group partitions txs by their exact date string. Days are ordered newest
// first by parsed date with unparseable dates last. Within a day, transactions
// are ordered newest first by parsed time. The result does not depend on the
// input order.
func Group(txs []core.Transaction) []DayGroup {
	if len(txs) == 0 {
		return []DayGroup{}
	}
	byDate := make(map[string][]core.Transaction)
	for _, tx := range txs {
		byDate[tx.Date] = append(byDate[tx.Date], tx)
	}

	groups := make([]DayGroup, 0, len(byDate))
	for date, list := range byDate {
		sorted := slices.Clone(list)
		slices.SortFunc(sorted, compareWithinDay)
		groups = append(groups, DayGroup{Date: date, Transactions: sorted})
	}
	slices.SortFunc(groups, func(a, b DayGroup) int {
		if c := core.ParseDateOrMin(b.Date).Compare(core.ParseDateOrMin(a.Date)); c != 0 {
			return c
		}
		return strings.Compare(a.Date, b.Date)
	})
	return groups
}

// compareWithinDay orders by time descending. The remaining keys only make
// the order total.
func compareWithinDay(a, b core.Transaction) int {
	if c := cmp.Compare(core.ParseTimeSafely(b.Time).Seconds(), core.ParseTimeSafely(a.Time).Seconds()); c != 0 {
		return c
	}
	return cmp.Or(
		strings.Compare(a.ID, b.ID),
		strings.Compare(string(a.Account), string(b.Account)),
		strings.Compare(a.Time, b.Time),
		a.Amount.Cmp(b.Amount),
		strings.Compare(a.Category.Label(), b.Category.Label()),
		strings.Compare(string(a.Kind), string(b.Kind)),
		strings.Compare(a.OwnerName, b.OwnerName),
		strings.Compare(a.Comment, b.Comment),
	)
}

// Flatten returns the grouped transactions in display order.
func Flatten(groups []DayGroup) []core.Transaction {
	var out []core.Transaction
	for _, g := range groups {
		out = append(out, g.Transactions...)
	}
	return out
}
