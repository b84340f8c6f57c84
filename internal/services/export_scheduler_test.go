package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetik/internal/core"
	"budgetik/internal/export"
	"budgetik/internal/ledger"
	"budgetik/internal/log"
)

type stubSource struct {
	fail core.Account
}

func (s stubSource) Report(_ context.Context, account core.Account, period ledger.Period) (ledger.Report, error) {
	if account == s.fail {
		return ledger.Report{}, errors.New("store unavailable")
	}
	return ledger.Report{Account: account, Period: period}, nil
}

type stubExporter struct {
	name string
	err  error

	mu      sync.Mutex
	exports []string
}

func (e *stubExporter) Name() string { return e.name }

func (e *stubExporter) Export(_ context.Context, r ledger.Report) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return "", e.err
	}
	ref := string(r.Account) + "/" + r.Period.String()
	e.exports = append(e.exports, ref)
	return ref, nil
}

func TestDefaultExportSchedulerConfig(t *testing.T) {
	config := DefaultExportSchedulerConfig()

	if config.Schedule != "0 23 * * *" {
		t.Errorf("expected daily schedule, got %q", config.Schedule)
	}
	if len(config.Accounts) != 3 {
		t.Errorf("expected 3 accounts, got %d", len(config.Accounts))
	}
	if config.Timeout != 2*time.Minute {
		t.Errorf("expected Timeout 2m, got %v", config.Timeout)
	}
	if err := ValidateSchedule(config.Schedule); err != nil {
		t.Errorf("default schedule should parse: %v", err)
	}
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("*/5 * * * *"))
	assert.Error(t, ValidateSchedule("every day"))
	assert.Error(t, ValidateSchedule(""))
}

func TestRunOnceExportsEveryReportToEveryExporter(t *testing.T) {
	a := &stubExporter{name: "a"}
	b := &stubExporter{name: "b"}
	s := NewExportScheduler(stubSource{}, []export.Exporter{a, b}, ExportSchedulerConfig{
		Periods: []ledger.Period{ledger.Month, ledger.Year},
	}, log.Discard())

	results, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 12)
	assert.ElementsMatch(t, []string{
		"cash/month", "cash/year", "card/month", "card/year", "all/month", "all/year",
	}, a.exports)
	assert.Len(t, b.exports, 6)
}

func TestRunOnceKeepsGoingOnFailures(t *testing.T) {
	good := &stubExporter{name: "good"}
	bad := &stubExporter{name: "bad", err: errors.New("quota")}
	s := NewExportScheduler(stubSource{fail: core.AccountCard}, []export.Exporter{good, bad}, ExportSchedulerConfig{}, log.Discard())

	results, err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report card/month")
	assert.Contains(t, err.Error(), "bad cash/month: quota")
	assert.Len(t, results, 4)
	assert.ElementsMatch(t, []string{"cash/month", "all/month"}, good.exports)
}

func TestExportScheduler_StartTwice(t *testing.T) {
	s := NewExportScheduler(stubSource{}, nil, ExportSchedulerConfig{}, log.Discard())
	ctx := context.Background()

	if s.IsRunning() {
		t.Error("scheduler should not be running initially")
	}
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start(ctx))

	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
}

func TestExportScheduler_StopNotRunning(t *testing.T) {
	s := NewExportScheduler(stubSource{}, nil, ExportSchedulerConfig{}, log.Discard())
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop on idle scheduler should not fail: %v", err)
	}
}

func TestExportScheduler_InvalidSchedule(t *testing.T) {
	s := NewExportScheduler(stubSource{}, nil, ExportSchedulerConfig{Schedule: "nope"}, log.Discard())
	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}
