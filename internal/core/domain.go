package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	KindIncome  Kind = "income"
	KindOutcome Kind = "outcome"
)

const (
	AccountCash Account = "cash"
	AccountCard Account = "card"
	// AccountAll is a query-time union of the concrete accounts. It is never stored.
	AccountAll Account = "all"
)

type (
	// Kind carries the direction of a transaction; amounts themselves are unsigned.
	Kind string

	// Account selects a ledger.
	Account string

	Transaction struct {
		ID        string          `json:"id"`
		OwnerName string          `json:"ownerName"`
		Amount    decimal.Decimal `json:"amount"`
		Category  Category        `json:"category"`
		Date      string          `json:"date"` // dd.mm.yyyy
		Time      string          `json:"time"` // HH:mm:ss, legacy HH:mm
		Comment   string          `json:"comment"`
		Kind      Kind            `json:"kind"`
		Account   Account         `json:"account"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidAccount   = errors.New("invalid account")
	ErrAggregateAccount = errors.New("mutations must target a concrete account, not all")
	ErrNotFound         = errors.New("not found")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidTarget    = errors.New("invalid target amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrCommentTooLong   = errors.New("comment too long (max 500 characters)")
	ErrDuplicateID      = errors.New("id already exists")
)

func (k Kind) Validate() error {
	switch k {
	case KindIncome, KindOutcome:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, string(k))
	}
}

// Signed returns amount with the sign implied by the kind.
func (k Kind) Signed(amount decimal.Decimal) decimal.Decimal {
	if k == KindOutcome {
		return amount.Neg()
	}
	return amount
}

// ParseAccount accepts cash, card and all (case-insensitive).
func ParseAccount(s string) (Account, error) {
	a := Account(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case AccountCash, AccountCard, AccountAll:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAccount, s)
	}
}

// IsConcrete reports whether transactions can be stored under a.
func (a Account) IsConcrete() bool {
	return a == AccountCash || a == AccountCard
}

func (a Account) String() string {
	return string(a)
}

// ConcreteAccounts lists the stored ledgers in merge order.
func ConcreteAccounts() []Account {
	return []Account{AccountCash, AccountCard}
}

func (t Transaction) Validate() error {
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if !t.Account.IsConcrete() {
		if t.Account == AccountAll {
			return ErrAggregateAccount
		}
		return fmt.Errorf("%w: %q", ErrInvalidAccount, string(t.Account))
	}
	if _, ok := ParseDate(t.Date); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDate, t.Date)
	}
	if len(t.Comment) > 500 {
		return ErrCommentTooLong
	}
	return nil
}

// Signed returns the amount with the transaction's direction applied.
func (t Transaction) Signed() decimal.Decimal {
	return t.Kind.Signed(t.Amount)
}

// SameFields reports whether both transactions carry identical descriptive fields.
// The identifier is ignored.
func (t Transaction) SameFields(o Transaction) bool {
	return t.OwnerName == o.OwnerName &&
		t.Amount.Equal(o.Amount) &&
		t.Category.Label() == o.Category.Label() &&
		t.Date == o.Date &&
		t.Time == o.Time &&
		t.Comment == o.Comment &&
		t.Kind == o.Kind &&
		t.Account == o.Account
}
