package xlsx

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"budgetik/internal/core"
	"budgetik/internal/ledger"
	"budgetik/internal/log"
)

func report() ledger.Report {
	txs := []core.Transaction{
		{ID: "1", Amount: decimal.NewFromInt(100), Kind: core.KindOutcome, Category: core.NewCategory("Food"),
			Date: "01.08.2025", Time: "10:00:00", Account: core.AccountCard},
		{ID: "2", Amount: decimal.RequireFromString("50.129"), Kind: core.KindIncome,
			Date: "31.07.2025", Time: "08:00:00", Account: core.AccountCard},
	}
	ref := time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)
	return ledger.BuildReport(txs, core.AccountCard, ledger.Week, ref, ledger.Ukrainian)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "budgetik-card-week-2025-08-01.xlsx", FileName(report()))
}

func TestExportWritesWorkbook(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	e := New(dir, ledger.Ukrainian, log.Discard())
	assert.Equal(t, "xlsx", e.Name())

	path, err := e.Export(context.Background(), report())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "budgetik-card-week-2025-08-01.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(transactionsSheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 5)
	assert.Contains(t, rows[0][0], "card")
	assert.Equal(t, "Date", rows[2][0])
	assert.Equal(t, "01.08.2025", rows[3][0])
	assert.Equal(t, "31.07.2025", rows[4][0])

	cats, err := f.GetRows(categoriesSheet)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Food", cats[1][0])
	assert.Equal(t, "100%", cats[1][2])
}

func TestExportCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(t.TempDir(), ledger.Ukrainian, log.Discard()).Export(ctx, report())
	assert.ErrorIs(t, err, context.Canceled)
}
