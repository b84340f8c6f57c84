package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout      = "02.01.2006"
	TimeLayout      = "15:04:05"
	ShortTimeLayout = "15:04"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour, Minute, Second int
}

// Seconds returns seconds since midnight.
func (t TimeOfDay) Seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// ParseTimeSafely tries HH:mm:ss, then HH:mm. Anything else yields 00:00:00.
func ParseTimeSafely(text string) TimeOfDay {
	text = strings.TrimSpace(text)
	for _, layout := range []string{TimeLayout, ShortTimeLayout} {
		if t, err := time.Parse(layout, text); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
		}
	}
	return TimeOfDay{}
}

// ParseDate parses a dd.mm.yyyy string into a UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDateOrMin parses like ParseDate but maps failures to the zero time,
// which sorts before every real date.
func ParseDateOrMin(s string) time.Time {
	t, _ := ParseDate(s)
	return t
}

// FormatDate renders the calendar date of t as dd.mm.yyyy.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTime renders the wall-clock time of t as HH:mm:ss.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// CivilDate drops the clock part of t, keeping t's calendar day.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
