package core

import "github.com/shopspring/decimal"

// Balances holds per-account balances. All is the sum of the two, each
// computed independently.
type Balances struct {
	Cash decimal.Decimal `json:"cash"`
	Card decimal.Decimal `json:"card"`
	All  decimal.Decimal `json:"all"`
}

// For returns the balance of the selected account.
func (b Balances) For(a Account) decimal.Decimal {
	switch a {
	case AccountCash:
		return b.Cash
	case AccountCard:
		return b.Card
	default:
		return b.All
	}
}

// SavingsSummary is the active jars of an owner and their combined amount.
type SavingsSummary struct {
	Total decimal.Decimal `json:"totalSavings"`
	Jars  []SavingsJar    `json:"jars"`
}
