package domain

import "time"

// WeeklyAggregate holds the rolled-up metrics for one Monday-anchored week.
//
// AvgRevenuePerHour is NaN when the week has no billable hours and
// AvgSessionLength is NaN when the week has no sessions; callers must guard
// before display or serialization.
type WeeklyAggregate struct {
	Week              time.Time // Monday of the week, midnight UTC
	AgreedRevenue     float64
	TotalUnits        float64
	TotalHours        float64 // qualifying hours only (sessions with charges > 0)
	SessionCount      int
	ClientCount       int // distinct clients on the anchor procedure code
	AvgSessionLength  float64
	AvgRevenuePerHour float64
	RevenueChange     float64 // percent vs previous week in sort order, 0 for the first week
	HoursChange       float64
}

// ClientWeekStats is one client's totals within a single week, restricted to
// the anchor procedure code.
type ClientWeekStats struct {
	Name         string
	TotalRevenue float64
	TotalHours   float64
	SessionCount int
}

// ClientHoursChange captures a week-over-week shift in a client's qualifying
// hours on the anchor procedure code.
type ClientHoursChange struct {
	Name          string
	LatestHours   float64
	PreviousHours float64
	Change        float64
	PercentChange float64
	IsNew         bool // no hours in the previous week
	IsGone        bool // no hours in the latest week
}
