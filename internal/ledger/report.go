package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"budgetik/internal/core"
)

// Report is everything the dashboard needs for one account and period.
type Report struct {
	Account     core.Account      `json:"account"`
	Period      Period            `json:"period"`
	Label       string            `json:"label"`
	Date        string            `json:"date"`
	Days        []DayGroup        `json:"days"`
	Totals      Totals            `json:"totals"`
	Balance     decimal.Decimal   `json:"balance"`
	Percentages map[string]string `json:"percentages"`
	Shares      []Share           `json:"shares"`
	Slices      []Slice           `json:"slices"`
	Categories  []CategoryTotal   `json:"categories"`
}

// BuildReport filters all to the period, then groups and aggregates. Balance
// is taken over the whole unfiltered set, like the account balance shown
// beside the period view.
func BuildReport(all []core.Transaction, account core.Account, p Period, ref time.Time, l Locale) Report {
	filtered := Filter(all, p, ref)
	shares := Shares(filtered)
	return Report{
		Account:     account,
		Period:      p,
		Label:       Label(p, filtered, ref, l),
		Date:        core.FormatDate(ref),
		Days:        Group(filtered),
		Totals:      Summarize(filtered),
		Balance:     Balance(all),
		Percentages: percentMap(shares),
		Shares:      shares,
		Slices:      ChartSlices(shares),
		Categories:  CategoryTotals(filtered),
	}
}
