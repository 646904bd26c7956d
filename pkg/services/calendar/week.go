package calendar

import "time"

// WeekStart returns the Monday on or before the given date, normalized to
// midnight UTC. Every component that buckets records by week must go through
// this function so week keys stay consistent across the whole pipeline.
func WeekStart(t time.Time) time.Time {
	day := t.Day()
	switch t.Weekday() {
	case time.Sunday:
		day -= 6
	default:
		day -= int(t.Weekday()) - 1
	}
	return time.Date(t.Year(), t.Month(), day, 0, 0, 0, 0, time.UTC)
}

// WeekKey formats a week-start date as its canonical YYYY-MM-DD bucket key.
func WeekKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Date truncates a timestamp to its calendar date at midnight UTC.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b. The result is
// negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
