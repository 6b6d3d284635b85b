package core

import "github.com/shopspring/decimal"

// WeekOrder selects how weekly buckets are ordered.
type WeekOrder int

const (
	// Ascending sorts buckets by week start.
	Ascending WeekOrder = iota
	// FirstSeen keeps the order in which weeks first appear in the log.
	FirstSeen
)

// WeekTotal is the amount paid in one Sunday-anchored week.
type WeekTotal struct {
	Week     string // ISO date of the Sunday starting the week
	Total    decimal.Decimal
	Sessions int // records that contributed to Total
	Invalid  int // records dated in this week whose paid value did not parse
}

// WeeklySummary is the chart data set.
type WeeklySummary struct {
	Weeks   []WeekTotal
	Skipped int // records with a non-empty but unparseable date
}

// HasInvalid reports whether any bucket was flagged.
func (s WeeklySummary) HasInvalid() bool {
	for _, w := range s.Weeks {
		if w.Invalid > 0 {
			return true
		}
	}
	return s.Skipped > 0
}
