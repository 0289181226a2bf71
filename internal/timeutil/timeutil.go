package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration formats seconds as a human-readable string like "1h 45m" or "0h 30m".
// This is the single duration format used in tables and CSV output.
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	return fmt.Sprintf("%dh %dm", h, m)
}

// Digits strips every non-digit rune from s. GitLab global ids arrive as
// composite strings like "gid://gitlab/User/123" while some query
// arguments expect the bare numeric id.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Period is an inclusive date window.
type Period struct {
	First time.Time
	Last  time.Time
}

// MonthPeriod returns the calendar-month window containing t in t's
// location: first day at 00:00:00 through last day at 23:59:59.
func MonthPeriod(t time.Time) Period {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, 0).Add(-time.Second)
	return Period{First: first, Last: last}
}

// Contains reports whether d falls within the period, inclusive on both ends.
func (p Period) Contains(d time.Time) bool {
	return !d.Before(p.First) && !d.After(p.Last)
}

// DayKey truncates an ISO-8601 timestamp string to its calendar day
// ("2024-03-05T09:00:00Z" -> "2024-03-05"). The timestamp is taken as
// written, no timezone conversion is applied.
func DayKey(iso string) string {
	if len(iso) < 10 {
		return iso
	}
	return iso[:10]
}

var monthsPT = map[time.Month]string{
	time.January:   "Janeiro",
	time.February:  "Fevereiro",
	time.March:     "Março",
	time.April:     "Abril",
	time.May:       "Maio",
	time.June:      "Junho",
	time.July:      "Julho",
	time.August:    "Agosto",
	time.September: "Setembro",
	time.October:   "Outubro",
	time.November:  "Novembro",
	time.December:  "Dezembro",
}

// MonthNamePT returns the Brazilian Portuguese name of m. An unmapped
// value falls back to Go's English name rather than failing.
func MonthNamePT(m time.Month) string {
	if name, ok := monthsPT[m]; ok {
		return name
	}
	return m.String()
}
