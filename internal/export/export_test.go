package export

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetik/internal/core"
	"budgetik/internal/ledger"
)

func sampleReport() ledger.Report {
	mk := func(id string, amount int64, kind core.Kind, category, tm string) core.Transaction {
		return core.Transaction{
			ID:       id,
			Amount:   decimal.NewFromInt(amount),
			Kind:     kind,
			Category: core.NewCategory(category),
			Date:     "01.08.2025",
			Time:     tm,
			Account:  core.AccountCash,
			Comment:  "c" + id,
		}
	}
	txs := []core.Transaction{
		mk("1", 100, core.KindOutcome, "Food", "10:00:00"),
		mk("2", 300, core.KindOutcome, "Food", "11:00:00"),
		mk("3", 200, core.KindOutcome, "Transport", "12:00:00"),
		mk("4", 1000, core.KindIncome, "", "09:00:00"),
	}
	ref := time.Date(2025, time.August, 1, 18, 0, 0, 0, time.UTC)
	return ledger.BuildReport(txs, core.AccountCash, ledger.Day, ref, ledger.Ukrainian)
}

func TestTransactionRowsNewestFirstSigned(t *testing.T) {
	rows := TransactionRows(sampleReport())
	require.Len(t, rows, 4)

	assert.Equal(t, "12:00:00", rows[0][1])
	assert.Equal(t, "-200.00", Cell(rows[0][5]))
	assert.Equal(t, "Transport", rows[0][4])
	assert.Equal(t, "1000.00", Cell(rows[3][5]))
	assert.Equal(t, core.OtherLabel, rows[3][4])
	for _, r := range rows {
		assert.Len(t, r, len(TransactionHeader))
	}
}

func TestCategoryAndSummaryRows(t *testing.T) {
	r := sampleReport()

	cats := CategoryRows(r)
	require.Len(t, cats, 2)
	assert.Equal(t, []string{"Food", "400.00", "67%"}, []string{Cell(cats[0][0]), Cell(cats[0][1]), Cell(cats[0][2])})
	assert.Equal(t, "33%", Cell(cats[1][2]))

	sum := SummaryRows(r)
	require.Len(t, sum, 4)
	assert.Equal(t, "1000.00", Cell(sum[0][1]))
	assert.Equal(t, "600.00", Cell(sum[1][1]))
	assert.Equal(t, "400.00", Cell(sum[3][1]))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "cash / День / П'ятниця, 1 Серпня", Title(sampleReport(), ledger.Ukrainian))
}

func TestCell(t *testing.T) {
	assert.Equal(t, "12.50", Cell(decimal.RequireFromString("12.5")))
	assert.Equal(t, "x", Cell("x"))
	assert.Equal(t, "7", Cell(7))
}
