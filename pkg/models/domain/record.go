package domain

import "time"

// SessionRecord is one billed unit of service from the billing sheet.
// ServiceDate is a calendar date normalized to midnight UTC; records whose
// date could not be parsed never make it into a SessionRecord.
type SessionRecord struct {
	ServiceDate   time.Time
	AgreedCharge  float64
	Units         float64
	HoursWorked   float64
	ClientName    string // "<first> <last>", trimmed; empty means unattributed
	ProcedureCode string
}
