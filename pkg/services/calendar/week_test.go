package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{"monday maps to itself", date(2025, time.March, 3), date(2025, time.March, 3)},
		{"wednesday maps back two days", date(2025, time.March, 5), date(2025, time.March, 3)},
		{"saturday maps back five days", date(2025, time.March, 8), date(2025, time.March, 3)},
		{"sunday maps back six days", date(2025, time.March, 9), date(2025, time.March, 3)},
		{"crosses month boundary", date(2025, time.May, 1), date(2025, time.April, 28)},
		{"crosses year boundary", date(2025, time.January, 1), date(2024, time.December, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WeekStart(tt.input))
		})
	}
}

func TestWeekStart_Idempotent(t *testing.T) {
	// One full year of dates.
	d := date(2024, time.January, 1)
	for i := 0; i < 366; i++ {
		ws := WeekStart(d)
		assert.Equal(t, time.Monday, ws.Weekday())
		assert.Equal(t, ws, WeekStart(ws))
		assert.False(t, ws.After(d))
		d = d.AddDate(0, 0, 1)
	}
}

func TestWeekKey(t *testing.T) {
	assert.Equal(t, "2025-03-03", WeekKey(date(2025, time.March, 3)))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 54, DaysBetween(date(2025, time.January, 6), date(2025, time.March, 1)))
	assert.Equal(t, -54, DaysBetween(date(2025, time.March, 1), date(2025, time.January, 6)))
	assert.Equal(t, 0, DaysBetween(date(2025, time.March, 1), date(2025, time.March, 1)))
}
