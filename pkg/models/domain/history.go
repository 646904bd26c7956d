package domain

import "time"

// ClientHistory is the reconstructed service history for one client across
// the assessment and recurring code sets. Zero time values mean the client
// has no record in that category.
type ClientHistory struct {
	Name               string
	FirstAssessment    time.Time
	LastAssessment     time.Time
	FirstRecurring     time.Time
	LastRecurring      time.Time
	AssessmentSessions int
	RecurringSessions  int
	TotalRevenue       float64
	TotalHours         float64 // qualifying hours (sessions with charges > 0)
	AssessmentCodes    []string
}

// HasAssessment reports whether the client has at least one
// assessment-category record.
func (h ClientHistory) HasAssessment() bool {
	return !h.FirstAssessment.IsZero()
}

// HasRecurring reports whether the client has started recurring services.
func (h ClientHistory) HasRecurring() bool {
	return !h.FirstRecurring.IsZero()
}
