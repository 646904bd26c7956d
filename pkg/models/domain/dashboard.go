package domain

// Dashboard bundles every derived view for one pass over a record set. All
// slices are freshly built; re-running the pass on the same inputs yields an
// identical Dashboard.
type Dashboard struct {
	RecordCount int
	Weeks       []WeeklyAggregate
	TopClients  []ClientWeekStats
	Changes     []ClientHoursChange
	Funnel      FunnelReport
}
