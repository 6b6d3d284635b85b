package core

import (
	"sort"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// FilterByName returns the sessions whose name contains filter, compared
// case-insensitively, in their original order. An empty filter returns the
// input slice itself.
func FilterByName(sessions []Session, filter string) []Session {
	if filter == "" {
		return sessions
	}
	needle := strings.ToLower(filter)
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if strings.Contains(strings.ToLower(s.Name), needle) {
			out = append(out, s)
		}
	}
	return out
}

// WeekStart returns the Sunday on or before t, at midnight UTC.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeekKey parses an ISO date and returns the ISO date of its week start.
func WeekKey(date string) (string, error) {
	t, err := time.Parse(isoDate, strings.TrimSpace(date))
	if err != nil {
		return "", err
	}
	return WeekStart(t).Format(isoDate), nil
}

// WeeklyTotals sums the paid amount per week. Sessions without a date or
// without a paid value are ignored. A paid value that does not parse is
// counted in the bucket's Invalid field instead of its Total.
func WeeklyTotals(sessions []Session, order WeekOrder) WeeklySummary {
	var summary WeeklySummary
	index := map[string]int{}
	for _, s := range sessions {
		if s.Date == "" || s.Paid == "" {
			continue
		}
		key, err := WeekKey(s.Date)
		if err != nil {
			summary.Skipped++
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(summary.Weeks)
			index[key] = i
			summary.Weeks = append(summary.Weeks, WeekTotal{Week: key})
		}
		paid, err := ParseAmount(s.Paid)
		if err != nil {
			summary.Weeks[i].Invalid++
			continue
		}
		summary.Weeks[i].Total = summary.Weeks[i].Total.Add(paid)
		summary.Weeks[i].Sessions++
	}
	if order == Ascending {
		// ISO keys sort lexically in date order.
		sort.SliceStable(summary.Weeks, func(a, b int) bool {
			return summary.Weeks[a].Week < summary.Weeks[b].Week
		})
	}
	return summary
}
