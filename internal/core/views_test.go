package core

import (
	"testing"
	"time"
)

func sessions(names ...string) []Session {
	out := make([]Session, len(names))
	for i, n := range names {
		out[i] = Session{Name: n}
	}
	return out
}

func TestFilterByName(t *testing.T) {
	all := sessions("анна иванова", "Иван", "", "Пётр", "ИВАНОВ")

	if got := FilterByName(all, ""); len(got) != len(all) || &got[0] != &all[0] {
		t.Fatalf("empty filter must return the input slice")
	}

	tests := []struct {
		filter string
		want   []string
	}{
		{"Анна", []string{"анна иванова"}},
		{"иван", []string{"анна иванова", "Иван", "ИВАНОВ"}},
		{"пёт", []string{"Пётр"}},
		{"zzz", nil},
		{" ", []string{"анна иванова"}},
	}
	for _, tt := range tests {
		got := FilterByName(all, tt.filter)
		if len(got) != len(tt.want) {
			t.Fatalf("filter %q: got %d results, want %d", tt.filter, len(got), len(tt.want))
		}
		for i := range got {
			if got[i].Name != tt.want[i] {
				t.Errorf("filter %q: [%d] = %q, want %q", tt.filter, i, got[i].Name, tt.want[i])
			}
		}
	}
}

func TestWeekStart(t *testing.T) {
	cases := map[string]string{
		"2024-06-02": "2024-06-02", // Sunday
		"2024-06-03": "2024-06-02", // Monday
		"2024-06-08": "2024-06-02", // Saturday
		"2024-06-09": "2024-06-09",
		"2024-01-03": "2023-12-31", // crosses the year
	}
	for in, want := range cases {
		got, err := WeekKey(in)
		if err != nil || got != want {
			t.Errorf("WeekKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	loc := time.FixedZone("UTC-10", -10*3600)
	if got := WeekStart(time.Date(2024, 6, 3, 23, 0, 0, 0, loc)).Format(isoDate); got != "2024-06-02" {
		t.Fatalf("WeekStart ignores the wall-clock date: %s", got)
	}
}

func TestWeeklyTotalsSameWeek(t *testing.T) {
	got := WeeklyTotals([]Session{
		{Date: "2024-06-03", Paid: "500"},
		{Date: "2024-06-05", Paid: "300"},
		{Date: "", Paid: "900"},
		{Date: "2024-06-04", Paid: ""},
	}, Ascending)
	if len(got.Weeks) != 1 {
		t.Fatalf("expected 1 week, got %+v", got.Weeks)
	}
	w := got.Weeks[0]
	if w.Week != "2024-06-02" || w.Total.StringFixed(2) != "800.00" || w.Sessions != 2 {
		t.Fatalf("unexpected bucket %+v", w)
	}
	if got.HasInvalid() {
		t.Fatalf("no bucket should be flagged")
	}
}

func TestWeeklyTotalsOrder(t *testing.T) {
	log := []Session{
		{Date: "2024-06-12", Paid: "100"},
		{Date: "2024-06-03", Paid: "200"},
		{Date: "2024-06-13", Paid: "50"},
	}
	asc := WeeklyTotals(log, Ascending)
	if asc.Weeks[0].Week != "2024-06-02" || asc.Weeks[1].Week != "2024-06-09" {
		t.Fatalf("ascending order wrong: %+v", asc.Weeks)
	}
	if asc.Weeks[1].Total.StringFixed(2) != "150.00" {
		t.Fatalf("second week total = %s", asc.Weeks[1].Total)
	}
	seen := WeeklyTotals(log, FirstSeen)
	if seen.Weeks[0].Week != "2024-06-09" || seen.Weeks[1].Week != "2024-06-02" {
		t.Fatalf("first-seen order wrong: %+v", seen.Weeks)
	}
}

func TestWeeklyTotalsFlagsInvalid(t *testing.T) {
	got := WeeklyTotals([]Session{
		{Date: "2024-06-03", Paid: "500"},
		{Date: "2024-06-04", Paid: "много"},
		{Date: "03.06.2024", Paid: "100"},
	}, Ascending)
	if len(got.Weeks) != 1 {
		t.Fatalf("expected 1 week, got %+v", got.Weeks)
	}
	w := got.Weeks[0]
	if w.Total.StringFixed(2) != "500.00" || w.Invalid != 1 || w.Sessions != 1 {
		t.Fatalf("unexpected bucket %+v", w)
	}
	if got.Skipped != 1 || !got.HasInvalid() {
		t.Fatalf("expected one skipped date, got %d", got.Skipped)
	}
}
