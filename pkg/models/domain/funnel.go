package domain

// FunnelState classifies a client's progress from initial assessment toward
// recurring-service conversion. States are mutually exclusive and recomputed
// fresh on every pass; there is no persisted state machine.
type FunnelState string

const (
	StateConverted FunnelState = "converted"
	StateNotViable FunnelState = "not-viable"
	StateAtRisk    FunnelState = "at-risk"
	StateActive    FunnelState = "active"
	StateStale     FunnelState = "stale"
)

// OverrideReasons is the fixed set of accepted manual not-viable reasons.
var OverrideReasons = []string{
	"insurance",
	"no-response",
	"competitor",
	"center-based",
	"financial",
	"service-area",
	"age",
	"other",
}

// ValidOverrideReason reports whether reason is one of the accepted codes.
func ValidOverrideReason(reason string) bool {
	for _, r := range OverrideReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// FunnelEntry is one classified client in the conversion funnel.
type FunnelEntry struct {
	ClientHistory
	State            FunnelState
	DaysSinceFirst   int
	DaysSinceLast    int
	DaysToConversion *int // set for converted clients only; may be negative
	OverrideReason   string
	Notes            string
}

// CohortRange is a fixed days-since-assessment bucket.
type CohortRange string

// CohortRanges lists the buckets in ascending order.
var CohortRanges = []CohortRange{"0-14", "15-30", "31-45", "46-60", "61-75"}

// CohortBucket tallies pipeline clients in one cohort range. Converted and
// stale clients are never counted.
type CohortBucket struct {
	Active    int
	AtRisk    int
	NotViable int
}

// Total is the number of clients in the bucket.
func (b CohortBucket) Total() int {
	return b.Active + b.AtRisk + b.NotViable
}

// FunnelReport is the full output of a funnel classification pass.
//
// Converted is capped to the most recent 20 entries for display;
// ConvertedTotal, ConversionRate and AvgDaysToConversion are computed over
// the complete converted set.
type FunnelReport struct {
	Active    []FunnelEntry // ascending days since last assessment
	AtRisk    []FunnelEntry // descending days since last assessment
	NotViable []FunnelEntry // ascending days since last assessment
	Converted []FunnelEntry // descending recurring-service start date, capped to 20
	Pending   []FunnelEntry // needs follow-up: no conversion, last assessment within 75 days

	ConvertedTotal      int
	TotalInFunnel       int     // active + at-risk + converted + not-viable
	ConversionRate      float64 // percent, one decimal
	AvgDaysToConversion float64 // one decimal, over conversions with non-negative days

	Cohorts map[CohortRange]CohortBucket
}
