package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func validTx() Transaction {
	return Transaction{
		ID:        "t1",
		OwnerName: "Olena",
		Amount:    decimal.NewFromInt(100),
		Category:  NewCategory("Їжа"),
		Date:      "01.08.2025",
		Time:      "12:00:00",
		Kind:      KindOutcome,
		Account:   AccountCash,
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTx().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := validTx()
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be valid, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-1) }, ErrInvalidAmount},
		{"bad kind", func(tx *Transaction) { tx.Kind = "transfer" }, ErrInvalidKind},
		{"all account", func(tx *Transaction) { tx.Account = AccountAll }, ErrAggregateAccount},
		{"unknown account", func(tx *Transaction) { tx.Account = "wallet" }, ErrInvalidAccount},
		{"bad date", func(tx *Transaction) { tx.Date = "2025-08-01" }, ErrInvalidDate},
	}
	for _, tc := range cases {
		tx := validTx()
		tc.mutate(&tx)
		if err := tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	long := validTx()
	long.Comment = strings.Repeat("x", 501)
	if err := long.Validate(); err == nil {
		t.Fatalf("expected error for long comment")
	}
}

func TestSigned(t *testing.T) {
	tx := validTx()
	if !tx.Signed().Equal(decimal.NewFromInt(-100)) {
		t.Fatalf("outcome should be negative, got %s", tx.Signed())
	}
	tx.Kind = KindIncome
	if !tx.Signed().Equal(decimal.NewFromInt(100)) {
		t.Fatalf("income should be positive, got %s", tx.Signed())
	}
}

func TestParseAccount(t *testing.T) {
	for in, want := range map[string]Account{"cash": AccountCash, "CARD": AccountCard, " all ": AccountAll} {
		got, err := ParseAccount(in)
		if err != nil || got != want {
			t.Fatalf("ParseAccount(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseAccount("bank"); !errors.Is(err, ErrInvalidAccount) {
		t.Fatalf("expected ErrInvalidAccount, got %v", err)
	}
	if AccountAll.IsConcrete() {
		t.Fatalf("all must not be concrete")
	}
}

func TestCategoryClassification(t *testing.T) {
	if c := NewCategory("  "); !c.IsAbsent() || c.Label() != OtherLabel {
		t.Fatalf("blank category should be absent, got %+v", c)
	}
	if c := NewCategory("таксі"); c.Code() != CategoryTaxi || c.Label() != "таксі" {
		t.Fatalf("expected curated taxi keeping label, got %+v", c)
	}
	if c := NewCategory("Food"); c.Code() != CategoryFood {
		t.Fatalf("expected english alias to classify, got %+v", c)
	}
	if c := NewCategory("Board games club"); c.Code() != CategoryCustom || c.Label() != "Board games club" {
		t.Fatalf("expected custom, got %+v", c)
	}
}

func TestCategoryJSON(t *testing.T) {
	tx := validTx()
	tx.Category = Category{}
	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"category":null`) {
		t.Fatalf("absent category should marshal as null: %s", b)
	}

	var back Transaction
	if err := json.Unmarshal([]byte(`{"category":"Кафе","amount":"12.5"}`), &back); err != nil {
		t.Fatal(err)
	}
	if back.Category.Code() != CategoryCafe || !back.Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected decode: %+v", back)
	}
}

func TestSuggestedCategories(t *testing.T) {
	income := SuggestedCategories(KindIncome)
	if len(income) != 3 || income[0] != "Зарплата" {
		t.Fatalf("unexpected income suggestions: %v", income)
	}
	outcome := SuggestedCategories(KindOutcome)
	if len(outcome) != 14 || outcome[0] != "Зв'язок" || outcome[13] != "Житло" {
		t.Fatalf("unexpected outcome suggestions: %v", outcome)
	}
}

func TestSameFieldsIgnoresID(t *testing.T) {
	a, b := validTx(), validTx()
	b.ID = "other"
	if !a.SameFields(b) {
		t.Fatalf("expected match ignoring id")
	}
	b.Comment = "x"
	if a.SameFields(b) {
		t.Fatalf("expected mismatch on comment")
	}
}
