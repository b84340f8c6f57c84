package ledger

import (
	"github.com/shopspring/decimal"

	"budgetik/internal/core"
)

// Totals splits a transaction set into its income and outcome sums.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Outcome decimal.Decimal `json:"outcome"`
	Balance decimal.Decimal `json:"balance"`
}

// Balance sums +amount for income and -amount for outcome.
func Balance(txs []core.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(tx.Signed())
	}
	return sum
}

func Summarize(txs []core.Transaction) Totals {
	t := Totals{Income: decimal.Zero, Outcome: decimal.Zero}
	for _, tx := range txs {
		switch tx.Kind {
		case core.KindIncome:
			t.Income = t.Income.Add(tx.Amount)
		case core.KindOutcome:
			t.Outcome = t.Outcome.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Outcome)
	return t
}

// CombineBalances builds core.Balances from independently computed
// per-account balances.
func CombineBalances(cash, card decimal.Decimal) core.Balances {
	return core.Balances{Cash: cash, Card: card, All: cash.Add(card)}
}
