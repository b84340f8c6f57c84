package ledger

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"budgetik/internal/core"
)

// Period selects a date window relative to a reference day.
type Period int

const (
	Day Period = iota
	Week
	Month
	Year
	All
)

var periodNames = [...]string{"day", "week", "month", "year", "all"}

func (p Period) String() string {
	if p < Day || p > All {
		return "unknown"
	}
	return periodNames[p]
}

// DisplayName returns the localized selector name.
func (p Period) DisplayName(l Locale) string {
	if p < Day || p > All {
		return l.Periods[Day]
	}
	return l.Periods[p]
}

// ParsePeriod accepts the English identifiers and the Ukrainian selector
// names. Unknown input yields Day.
func ParsePeriod(s string) Period {
	s = strings.TrimSpace(s)
	for i, name := range periodNames {
		if strings.EqualFold(s, name) {
			return Period(i)
		}
	}
	for i, name := range Ukrainian.Periods {
		if s == name {
			return Period(i)
		}
	}
	return Day
}

func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(b []byte) error {
	*p = ParsePeriod(string(b))
	return nil
}

// WeekWindow returns the inclusive 7-day window ending at ref.
func WeekWindow(ref time.Time) (start, end time.Time) {
	end = core.CivilDate(ref)
	return end.AddDate(0, 0, -6), end
}

// Filter keeps the transactions that fall in period p relative to ref.
// Unparseable dates are excluded from every period except All.
func Filter(txs []core.Transaction, p Period, ref time.Time) []core.Transaction {
	if p == All {
		return slices.Clone(txs)
	}
	ref = core.CivilDate(ref)
	refStr := core.FormatDate(ref)
	weekStart, weekEnd := WeekWindow(ref)

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if p == Day {
			if tx.Date == refStr {
				out = append(out, tx)
			}
			continue
		}
		d, ok := core.ParseDate(tx.Date)
		if !ok {
			continue
		}
		var keep bool
		switch p {
		case Week:
			keep = !d.Before(weekStart) && !d.After(weekEnd)
		case Month:
			keep = d.Year() == ref.Year() && d.Month() == ref.Month()
		case Year:
			keep = d.Year() == ref.Year()
		}
		if keep {
			out = append(out, tx)
		}
	}
	return out
}

// Label renders the human-readable name of the active window.
// txs is only consulted for All.
func Label(p Period, txs []core.Transaction, ref time.Time, l Locale) string {
	ref = core.CivilDate(ref)
	switch p {
	case Week:
		start, end := WeekWindow(ref)
		return spanLabel(start, end, l)
	case Month:
		return l.MonthsNominative[ref.Month()-1]
	case Year:
		return strconv.Itoa(ref.Year())
	case All:
		return allLabel(txs, l)
	default:
		return fmt.Sprintf("%s, %d %s", l.weekday(ref), ref.Day(), l.title(l.monthGenitive(ref.Month())))
	}
}

func allLabel(txs []core.Transaction, l Locale) string {
	if len(txs) == 0 {
		return l.AllTransactions
	}
	var first, last time.Time
	for i, tx := range txs {
		d, ok := core.ParseDate(tx.Date)
		if !ok {
			// an unparseable date sorts first and has no renderable day
			return l.AllTransactions
		}
		if i == 0 || d.Before(first) {
			first = d
		}
		if i == 0 || d.After(last) {
			last = d
		}
	}
	return spanLabel(first, last, l)
}

func spanLabel(start, end time.Time, l Locale) string {
	sm := l.title(l.monthGenitive(start.Month()))
	em := l.title(l.monthGenitive(end.Month()))
	switch {
	case start.Year() != end.Year():
		return fmt.Sprintf("%d %s %d - %d %s %d", start.Day(), sm, start.Year(), end.Day(), em, end.Year())
	case start.Month() != end.Month():
		return fmt.Sprintf("%d %s - %d %s", start.Day(), sm, end.Day(), em)
	case start.Day() == end.Day():
		return fmt.Sprintf("%d %s", end.Day(), em)
	default:
		return fmt.Sprintf("%d-%d %s", start.Day(), end.Day(), em)
	}
}

// DayHeader renders the heading of a day group: Today, Yesterday, or
// "{Weekday}, {d} {month}".
func DayHeader(date string, ref time.Time, l Locale) string {
	d, ok := core.ParseDate(date)
	if !ok {
		return l.UnknownDate
	}
	ref = core.CivilDate(ref)
	switch {
	case d.Equal(ref):
		return l.Today
	case d.Equal(ref.AddDate(0, 0, -1)):
		return l.Yesterday
	}
	return fmt.Sprintf("%s, %d %s", l.weekday(d), d.Day(), l.monthGenitive(d.Month()))
}

// DisplayTime shortens a stored time to HH:mm, returning unparseable input unchanged.
func DisplayTime(s string) string {
	for _, layout := range []string{core.TimeLayout, core.ShortTimeLayout} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.Format(core.ShortTimeLayout)
		}
	}
	return s
}
