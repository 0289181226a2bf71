// Package business derives expected working hours for a calendar month
// from weekday and holiday data.
package business

import (
	"time"

	"github.com/glhours/glhours/internal/holidays"
	"github.com/glhours/glhours/internal/timeutil"
)

// Info summarizes the expected versus logged hours of one month.
type Info struct {
	MonthName      string
	BusinessDays   int
	TotalHours     float64
	HoursPerDay    float64
	LoggedHours    float64
	RemainingHours float64
	IsComplete     bool
}

// BusinessDays counts the days of the month that are neither weekend days
// nor present in the holiday list (matched on the "YYYY-MM-DD" date string).
func BusinessDays(year int, month time.Month, hs []holidays.Holiday) int {
	byDate := make(map[string]bool, len(hs))
	for _, h := range hs {
		byDate[h.Date] = true
	}

	days := 0
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if byDate[d.Format("2006-01-02")] {
			continue
		}
		days++
	}
	return days
}

// Calculate computes the business-hours summary for a month.
// loggedSeconds is the total of all surfaced time-log entries; the logged
// figure keeps its fractional hours, rounding is a presentation concern.
func Calculate(year int, month time.Month, hoursPerDay float64, hs []holidays.Holiday, loggedSeconds int64) Info {
	days := BusinessDays(year, month, hs)
	total := float64(days) * hoursPerDay
	logged := float64(loggedSeconds) / 3600

	return Info{
		MonthName:      timeutil.MonthNamePT(month),
		BusinessDays:   days,
		TotalHours:     total,
		HoursPerDay:    hoursPerDay,
		LoggedHours:    logged,
		RemainingHours: total - logged,
		IsComplete:     logged >= total,
	}
}
