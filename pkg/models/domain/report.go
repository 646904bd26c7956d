package domain

import "time"

// Report represents a complete analysis report for terminal rendering
type Report struct {
	Title    string
	Period   TimePeriod
	Sections []ReportSection
}

// TimePeriod represents the span of billing data covered by the report
type TimePeriod struct {
	Start time.Time
	End   time.Time
	Weeks int
}

// ReportSection represents a logical section in the report
type ReportSection struct {
	Title   string
	Summary map[string]interface{}
	Details []ReportDetail
}

// ReportDetail represents one line of detailed information within a section
type ReportDetail struct {
	Name        string
	Value       interface{}
	Unit        string
	Description string
}
