package ledger

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Locale holds the fixed name tables used to render labels. Month names come
// in two forms: genitive ("1 серпня") and nominative ("Серпень"); the
// nominative table is a verbatim substitution, not a calendar localization.
type Locale struct {
	Name             string
	Language         language.Tag
	Weekdays         [7]string  // indexed by time.Weekday
	MonthsGenitive   [12]string // lowercase
	MonthsNominative [12]string
	AllTransactions  string
	Today            string
	Yesterday        string
	UnknownDate      string
	Periods          [5]string // indexed by Period
}

var Ukrainian = Locale{
	Name:     "uk",
	Language: language.Ukrainian,
	Weekdays: [7]string{
		"неділя", "понеділок", "вівторок", "середа", "четвер", "п'ятниця", "субота",
	},
	MonthsGenitive: [12]string{
		"січня", "лютого", "березня", "квітня", "травня", "червня",
		"липня", "серпня", "вересня", "жовтня", "листопада", "грудня",
	},
	MonthsNominative: [12]string{
		"Січень", "Лютий", "Березень", "Квітень", "Травень", "Червень",
		"Липень", "Серпень", "Вересень", "Жовтень", "Листопад", "Грудень",
	},
	AllTransactions: "Усі операції",
	Today:           "Сьогодні",
	Yesterday:       "Вчора",
	UnknownDate:     "Невідома дата",
	Periods:         [5]string{"День", "Тиждень", "Місяць", "Рік", "Усі"},
}

var English = Locale{
	Name:     "en",
	Language: language.English,
	Weekdays: [7]string{
		"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
	},
	MonthsGenitive: [12]string{
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	},
	MonthsNominative: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	AllTransactions: "All transactions",
	Today:           "Today",
	Yesterday:       "Yesterday",
	UnknownDate:     "Unknown date",
	Periods:         [5]string{"Day", "Week", "Month", "Year", "All"},
}

// LocaleByName returns the locale for "uk" or "en". Anything else falls back to Ukrainian.
func LocaleByName(name string) Locale {
	if strings.EqualFold(strings.TrimSpace(name), English.Name) {
		return English
	}
	return Ukrainian
}

func (l Locale) weekday(t time.Time) string {
	return l.title(l.Weekdays[t.Weekday()])
}

func (l Locale) monthGenitive(m time.Month) string {
	return l.MonthsGenitive[m-1]
}

// title upper-cases the first letter of a name. A Caser keeps state, so one
// is built per call.
func (l Locale) title(s string) string {
	return cases.Title(l.Language).String(s)
}
