package api

// Dates serialize as plain YYYY-MM-DD calendar dates; derived metrics whose
// denominator was zero serialize as null, never as a silent zero.

type DatasetCreated struct {
	ID      string `json:"id"`
	Records int    `json:"records"`
	Weeks   int    `json:"weeks"`
}

type FetchRequest struct {
	URL string `json:"url"`
}

type OverrideRequest struct {
	Reason string `json:"reason"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

type WeeklyAggregate struct {
	Week              string   `json:"week"`
	AgreedRevenue     float64  `json:"agreed_revenue"`
	TotalUnits        float64  `json:"total_units"`
	TotalHours        float64  `json:"total_hours"`
	SessionCount      int      `json:"session_count"`
	ClientCount       int      `json:"client_count"`
	AvgSessionLength  *float64 `json:"avg_session_length"`
	AvgRevenuePerHour *float64 `json:"avg_revenue_per_hour"`
	RevenueChange     float64  `json:"revenue_change"`
	HoursChange       float64  `json:"hours_change"`
}

type ClientWeekStats struct {
	Name         string  `json:"name"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalHours   float64 `json:"total_hours"`
	SessionCount int     `json:"session_count"`
}

type ClientHoursChange struct {
	Name          string  `json:"name"`
	LatestHours   float64 `json:"latest_hours"`
	PreviousHours float64 `json:"previous_hours"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percent_change"`
	IsNew         bool    `json:"is_new"`
	IsGone        bool    `json:"is_gone"`
}

type FunnelEntry struct {
	Name               string   `json:"name"`
	State              string   `json:"state"`
	FirstAssessment    string   `json:"first_assessment,omitempty"`
	LastAssessment     string   `json:"last_assessment,omitempty"`
	FirstRecurring     string   `json:"first_recurring,omitempty"`
	LastRecurring      string   `json:"last_recurring,omitempty"`
	AssessmentSessions int      `json:"assessment_sessions"`
	RecurringSessions  int      `json:"recurring_sessions"`
	AssessmentCodes    []string `json:"assessment_codes,omitempty"`
	TotalRevenue       float64  `json:"total_revenue"`
	TotalHours         float64  `json:"total_hours"`
	DaysSinceFirst     int      `json:"days_since_first_assessment"`
	DaysSinceLast      int      `json:"days_since_last_assessment"`
	DaysToConversion   *int     `json:"days_to_conversion,omitempty"`
	OverrideReason     string   `json:"override_reason,omitempty"`
	Notes              string   `json:"notes,omitempty"`
}

type CohortBucket struct {
	Range     string `json:"range"`
	Active    int    `json:"active"`
	AtRisk    int    `json:"at_risk"`
	NotViable int    `json:"not_viable"`
}

type Dashboard struct {
	RecordCount int                 `json:"record_count"`
	Weeks       []WeeklyAggregate   `json:"weeks"`
	TopClients  []ClientWeekStats   `json:"top_clients"`
	Changes     []ClientHoursChange `json:"changes"`
	Funnel      FunnelReport        `json:"funnel"`
}

type FunnelReport struct {
	Active              []FunnelEntry  `json:"active"`
	AtRisk              []FunnelEntry  `json:"at_risk"`
	NotViable           []FunnelEntry  `json:"not_viable"`
	Converted           []FunnelEntry  `json:"converted"`
	Pending             []FunnelEntry  `json:"pending"`
	ConvertedTotal      int            `json:"converted_total"`
	TotalInFunnel       int            `json:"total_in_funnel"`
	ConversionRate      float64        `json:"conversion_rate"`
	AvgDaysToConversion float64        `json:"avg_days_to_conversion"`
	Cohorts             []CohortBucket `json:"cohorts"`
}
