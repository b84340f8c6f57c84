// Package xlsx writes period reports as Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"budgetik/internal/core"
	"budgetik/internal/export"
	"budgetik/internal/ledger"
	"budgetik/internal/log"
)

const (
	transactionsSheet = "Transactions"
	categoriesSheet   = "Categories"
)

// Exporter saves one workbook per report into dir.
type Exporter struct {
	dir    string
	locale ledger.Locale
	logger *log.Logger
}

var _ export.Exporter = (*Exporter)(nil)

func New(dir string, locale ledger.Locale, logger *log.Logger) *Exporter {
	return &Exporter{
		dir:    dir,
		locale: locale,
		logger: logger.WithComponent(log.ComponentExport),
	}
}

func (e *Exporter) Name() string { return "xlsx" }

// FileName returns the workbook name for r, e.g. "budgetik-cash-month-2025-08-01.xlsx".
func FileName(r ledger.Report) string {
	day := strings.ReplaceAll(r.Date, ".", "-")
	if t, ok := core.ParseDate(r.Date); ok {
		day = t.Format("2006-01-02")
	}
	return fmt.Sprintf("budgetik-%s-%s-%s.xlsx", r.Account, r.Period, day)
}

// Export writes the workbook and returns its path. An existing file for the
// same account, period and day is overwritten.
func (e *Exporter) Export(ctx context.Context, r ledger.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	f, err := Build(r, e.locale)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.WarnContext(ctx, "Failed to close workbook", log.FieldError, cerr)
		}
	}()

	path := filepath.Join(e.dir, FileName(r))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook %s: %w", path, err)
	}
	e.logger.InfoContext(ctx, "Report exported",
		log.FieldAccount, string(r.Account),
		log.FieldPeriod, r.Period.String(),
		"path", path)
	return path, nil
}

// Build lays the report out in a new workbook: a transactions sheet with
// title and totals, and a categories sheet with outcome shares.
func Build(r ledger.Report, l ledger.Locale) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(categoriesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	w := sheetWriter{f: f, sheet: transactionsSheet}
	w.row([]any{export.Title(r, l)})
	w.skip()
	w.row(export.Header(export.TransactionHeader))
	w.rows(export.TransactionRows(r))
	w.skip()
	w.rows(export.SummaryRows(r))

	c := sheetWriter{f: f, sheet: categoriesSheet}
	c.row(export.Header(export.CategoryHeader))
	c.rows(export.CategoryRows(r))

	if err := firstErr(w.err, c.err, f.SetColWidth(transactionsSheet, "A", "G", 14)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// sheetWriter appends rows top to bottom and keeps the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

func (w *sheetWriter) row(values []any) {
	if w.err != nil {
		return
	}
	w.next++
	cell, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		w.err = err
		return
	}
	out := make([]any, len(values))
	for i, v := range values {
		if d, ok := v.(decimal.Decimal); ok {
			out[i] = d.InexactFloat64()
			continue
		}
		out[i] = v
	}
	if err := w.f.SetSheetRow(w.sheet, cell, &out); err != nil {
		w.err = fmt.Errorf("write %s!%s: %w", w.sheet, cell, err)
	}
}

func (w *sheetWriter) rows(rows [][]any) {
	for _, r := range rows {
		w.row(r)
	}
}

func (w *sheetWriter) skip() { w.next++ }

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
