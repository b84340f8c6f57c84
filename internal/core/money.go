// Package core provides money parsing and display formatting.
//
// Amounts are decimal magnitudes; display always truncates to two fractional
// digits so a balance is never shown larger than it is.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// MoneyFormat controls the decimal separator used for display. No grouping
// separator is ever emitted.
type MoneyFormat struct {
	DecimalSeparator string
}

// DefaultMoneyFormat uses a comma, as the app shows amounts.
var DefaultMoneyFormat = MoneyFormat{DecimalSeparator: ","}

// Truncated formats |amount| with exactly two decimals, truncating extra digits.
//
// Examples (comma separator):
//
//	100     -> "100,00"
//	100.569 -> "100,56"
//	-42.1   -> "42,10"
func (f MoneyFormat) Truncated(amount decimal.Decimal) string {
	s := amount.Abs().Truncate(2).StringFixed(2)
	if f.DecimalSeparator != "." {
		s = strings.Replace(s, ".", f.DecimalSeparator, 1)
	}
	return s
}

// TruncatedWithSign is Truncated with a leading minus for negative amounts.
// Non-negative amounts get no sign.
func (f MoneyFormat) TruncatedWithSign(amount decimal.Decimal) string {
	s := f.Truncated(amount)
	if amount.IsNegative() && s != f.Truncated(decimal.Zero) {
		return "-" + s
	}
	return s
}

// FormatTruncated formats with DefaultMoneyFormat.
func FormatTruncated(amount decimal.Decimal) string {
	return DefaultMoneyFormat.Truncated(amount)
}

// FormatTruncatedWithSign formats with DefaultMoneyFormat, keeping a minus sign.
func FormatTruncatedWithSign(amount decimal.Decimal) string {
	return DefaultMoneyFormat.TruncatedWithSign(amount)
}

// ParseAmount converts user input to a non-negative decimal.
//
// It accepts both dot (12.34) and comma (12,34) separators. Signs, exponents
// and grouping are rejected. Zero is allowed.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidAmount
	}
	if parts[0] == "" {
		parts[0] = "0"
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) || r > unicode.MaxASCII {
				return decimal.Zero, ErrInvalidAmount
			}
		}
	}
	d, err := decimal.NewFromString(strings.Join(parts, "."))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
