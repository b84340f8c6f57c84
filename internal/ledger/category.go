package ledger

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"budgetik/internal/core"
)

// Share is one category's portion of total outcome.
type Share struct {
	Category string          `json:"category"`
	Emoji    string          `json:"emoji"`
	Sum      decimal.Decimal `json:"sum"`
	Percent  float64         `json:"percent"`
	Label    string          `json:"label"`
}

// Slice is a visible pie chart segment.
type Slice struct {
	Category string  `json:"category"`
	Percent  float64 `json:"percent"`
	Label    string  `json:"label"`
}

// CategoryTotal summarizes one category for the per-category list view.
type CategoryTotal struct {
	Category     string             `json:"category"`
	Sum          decimal.Decimal    `json:"sum"`
	Count        int                `json:"count"`
	Transactions []core.Transaction `json:"transactions"`
}

// CategorySums sums outcome amounts per category label. Income is ignored and
// absent categories go to core.OtherLabel.
func CategorySums(txs []core.Transaction) (map[string]decimal.Decimal, decimal.Decimal) {
	sums := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Kind != core.KindOutcome {
			continue
		}
		label := tx.Category.Label()
		sums[label] = sums[label].Add(tx.Amount)
		total = total.Add(tx.Amount)
	}
	return sums, total
}

// Shares computes each category's percentage of total outcome, largest first.
// When total outcome is zero the result is empty.
func Shares(txs []core.Transaction) []Share {
	sums, total := CategorySums(txs)
	if !total.IsPositive() {
		return []Share{}
	}
	emoji := make(map[string]string)
	for _, tx := range txs {
		if tx.Kind == core.KindOutcome {
			emoji[tx.Category.Label()] = tx.Category.Emoji()
		}
	}

	shares := make([]Share, 0, len(sums))
	hundred := decimal.NewFromInt(100)
	for label, sum := range sums {
		pct, _ := sum.Mul(hundred).Div(total).Float64()
		shares = append(shares, Share{
			Category: label,
			Emoji:    emoji[label],
			Sum:      sum,
			Percent:  pct,
			Label:    PercentLabel(pct),
		})
	}
	slices.SortFunc(shares, func(a, b Share) int {
		if c := b.Sum.Cmp(a.Sum); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return shares
}

// Percentages maps category labels to display percentages.
func Percentages(txs []core.Transaction) map[string]string {
	return percentMap(Shares(txs))
}

func percentMap(shares []Share) map[string]string {
	out := make(map[string]string, len(shares))
	for _, s := range shares {
		out[s.Category] = s.Label
	}
	return out
}

// PercentLabel renders a percentage: "0%" for zero, "<1%" below one, and the
// nearest integer otherwise (400 of 600 is "67%").
func PercentLabel(pct float64) string {
	switch {
	case pct <= 0:
		return "0%"
	case pct < 1:
		return "<1%"
	default:
		return strconv.Itoa(int(math.Floor(pct+0.5))) + "%"
	}
}

// ChartSlices returns the pie segments for shares, skipping zero slices.
func ChartSlices(shares []Share) []Slice {
	out := make([]Slice, 0, len(shares))
	for _, s := range shares {
		if s.Percent <= 0 {
			continue
		}
		out = append(out, Slice{Category: s.Category, Percent: s.Percent, Label: s.Label})
	}
	return out
}

// CategoryTotals groups outcome transactions by category, newest first within
// each category, categories ordered by total descending.
func CategoryTotals(txs []core.Transaction) []CategoryTotal {
	byLabel := make(map[string]*CategoryTotal)
	for _, tx := range txs {
		if tx.Kind != core.KindOutcome {
			continue
		}
		label := tx.Category.Label()
		ct, ok := byLabel[label]
		if !ok {
			ct = &CategoryTotal{Category: label, Sum: decimal.Zero}
			byLabel[label] = ct
		}
		ct.Sum = ct.Sum.Add(tx.Amount)
		ct.Count++
		ct.Transactions = append(ct.Transactions, tx)
	}

	out := make([]CategoryTotal, 0, len(byLabel))
	for _, ct := range byLabel {
		slices.SortFunc(ct.Transactions, func(a, b core.Transaction) int {
			if c := core.ParseDateOrMin(b.Date).Compare(core.ParseDateOrMin(a.Date)); c != 0 {
				return c
			}
			return compareWithinDay(a, b)
		})
		out = append(out, *ct)
	}
	slices.SortFunc(out, func(a, b CategoryTotal) int {
		return cmp.Or(b.Sum.Cmp(a.Sum), strings.Compare(a.Category, b.Category))
	})
	return out
}
