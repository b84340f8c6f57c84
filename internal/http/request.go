package http

import (
	"net/http"
	"strings"

	"budgetik/internal/core"
	"budgetik/internal/ledger"
)

// accountParam reads ?account=, defaulting to all.
func accountParam(r *http.Request) (core.Account, error) {
	v := strings.TrimSpace(r.URL.Query().Get("account"))
	if v == "" {
		return core.AccountAll, nil
	}
	return core.ParseAccount(v)
}

// concreteAccountParam reads a required ?account= naming cash or card.
func concreteAccountParam(r *http.Request) (core.Account, error) {
	v := strings.TrimSpace(r.URL.Query().Get("account"))
	if v == "" {
		return "", badRequest("account is required")
	}
	a, err := core.ParseAccount(v)
	if err != nil {
		return "", err
	}
	if !a.IsConcrete() {
		return "", core.ErrAggregateAccount
	}
	return a, nil
}

// periodParam reads ?period=. Missing or unknown values select the day view.
func periodParam(r *http.Request) ledger.Period {
	return ledger.ParsePeriod(r.URL.Query().Get("period"))
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

func sanitizeTransaction(tx core.Transaction) core.Transaction {
	tx.OwnerName = sanitizeInput(tx.OwnerName)
	tx.Comment = sanitizeInput(tx.Comment)
	tx.Date = strings.TrimSpace(tx.Date)
	tx.Time = strings.TrimSpace(tx.Time)
	return tx
}
