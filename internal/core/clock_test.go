package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseTimeSafely(t *testing.T) {
	cases := []struct {
		in   string
		want TimeOfDay
	}{
		{"14:05:30", TimeOfDay{14, 5, 30}},
		{"14:05", TimeOfDay{14, 5, 0}},
		{" 09:00 ", TimeOfDay{9, 0, 0}},
		{"garbage", TimeOfDay{}},
		{"", TimeOfDay{}},
		{"25:00", TimeOfDay{}},
	}
	for _, tc := range cases {
		if got := ParseTimeSafely(tc.in); got != tc.want {
			t.Fatalf("ParseTimeSafely(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if ParseTimeSafely("garbage").String() != "00:00:00" {
		t.Fatalf("fallback should render as midnight")
	}
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("01.08.2025")
	if !ok || d.Year() != 2025 || d.Month() != 8 || d.Day() != 1 {
		t.Fatalf("unexpected parse: %v %v", d, ok)
	}
	if FormatDate(d) != "01.08.2025" {
		t.Fatalf("round trip failed: %s", FormatDate(d))
	}
	for _, bad := range []string{"", "1.8.2025", "2025-08-01", "32.01.2025"} {
		if _, ok := ParseDate(bad); ok {
			t.Fatalf("%q should not parse", bad)
		}
		if !ParseDateOrMin(bad).IsZero() {
			t.Fatalf("%q should map to the zero time", bad)
		}
	}
}

func TestJarDraft(t *testing.T) {
	d := JarDraft{Name: "  Trip ", TargetAmount: decimal.NewFromInt(1000)}.Normalize()
	if d.Name != "Trip" || d.Category != DefaultJarCategory || d.Color != DefaultJarColor {
		t.Fatalf("defaults not applied: %+v", d)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (JarDraft{Name: "", TargetAmount: decimal.NewFromInt(1)}).Validate(); err != ErrEmptyName {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (JarDraft{Name: "x"}).Validate(); err != ErrInvalidTarget {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestJarProgress(t *testing.T) {
	j := SavingsJar{TargetAmount: decimal.NewFromInt(200), CurrentAmount: decimal.NewFromInt(50)}
	if j.Progress() != 0.25 {
		t.Fatalf("expected 0.25, got %v", j.Progress())
	}
	j.CurrentAmount = decimal.NewFromInt(500)
	if j.Progress() != 1 {
		t.Fatalf("progress should cap at 1, got %v", j.Progress())
	}
}
