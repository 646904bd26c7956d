package history

import (
	"github.com/de-tools/billing-atlas/pkg/models/domain"
)

// Builder folds session records into per-client service histories. It is
// parameterized by two disjoint procedure-code sets so the same fold serves
// both the full assessment/recurring funnel view and the anchor-code-only
// client views. Overlapping code sets are a caller contract violation.
type Builder struct {
	assessment map[string]struct{}
	recurring  map[string]struct{}
}

// NewBuilder creates a Builder over the given assessment and recurring code
// sets. Either set may be empty.
func NewBuilder(assessmentCodes, recurringCodes []string) *Builder {
	return &Builder{
		assessment: toSet(assessmentCodes),
		recurring:  toSet(recurringCodes),
	}
}

// Build returns one ClientHistory per non-empty client name whose procedure
// code belongs to either set. Records outside both sets leave every history
// untouched. The input slice is never mutated.
func (b *Builder) Build(records []domain.SessionRecord) map[string]domain.ClientHistory {
	histories := make(map[string]*domain.ClientHistory)

	for _, rec := range records {
		if rec.ClientName == "" {
			continue
		}
		_, isAssessment := b.assessment[rec.ProcedureCode]
		_, isRecurring := b.recurring[rec.ProcedureCode]
		if !isAssessment && !isRecurring {
			continue
		}

		h, ok := histories[rec.ClientName]
		if !ok {
			h = &domain.ClientHistory{Name: rec.ClientName}
			histories[rec.ClientName] = h
		}

		if isAssessment {
			h.AssessmentSessions++
			if h.FirstAssessment.IsZero() || rec.ServiceDate.Before(h.FirstAssessment) {
				h.FirstAssessment = rec.ServiceDate
			}
			if h.LastAssessment.IsZero() || rec.ServiceDate.After(h.LastAssessment) {
				h.LastAssessment = rec.ServiceDate
			}
			if !contains(h.AssessmentCodes, rec.ProcedureCode) {
				h.AssessmentCodes = append(h.AssessmentCodes, rec.ProcedureCode)
			}
		}
		if isRecurring {
			h.RecurringSessions++
			if h.FirstRecurring.IsZero() || rec.ServiceDate.Before(h.FirstRecurring) {
				h.FirstRecurring = rec.ServiceDate
			}
			if h.LastRecurring.IsZero() || rec.ServiceDate.After(h.LastRecurring) {
				h.LastRecurring = rec.ServiceDate
			}
		}

		h.TotalRevenue += rec.AgreedCharge
		if rec.AgreedCharge > 0 {
			h.TotalHours += rec.HoursWorked
		}
	}

	out := make(map[string]domain.ClientHistory, len(histories))
	for name, h := range histories {
		out[name] = *h
	}
	return out
}

func toSet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

func contains(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
