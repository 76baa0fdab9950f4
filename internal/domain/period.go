package domain

import (
	"strconv"
	"time"
)

// Period identifies one calendar month. Budgets, monthly summaries, and alert
// deduplication all key on it.
type Period struct {
	Month string // month name, e.g. "March"
	Year  int
}

// PeriodOf returns the calendar month containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: t.Month().String(), Year: t.Year()}
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return t.Month().String() == p.Month && t.Year() == p.Year
}

func (p Period) String() string {
	return p.Month + " " + strconv.Itoa(p.Year)
}
