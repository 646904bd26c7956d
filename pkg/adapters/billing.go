package adapters

import (
	"math"
	"time"

	"github.com/de-tools/billing-atlas/pkg/models/api"
	"github.com/de-tools/billing-atlas/pkg/models/domain"
)

func MapWeeklyAggregateDomainToApi(w domain.WeeklyAggregate) api.WeeklyAggregate {
	return api.WeeklyAggregate{
		Week:              w.Week.Format("2006-01-02"),
		AgreedRevenue:     w.AgreedRevenue,
		TotalUnits:        w.TotalUnits,
		TotalHours:        w.TotalHours,
		SessionCount:      w.SessionCount,
		ClientCount:       w.ClientCount,
		AvgSessionLength:  finiteOrNil(w.AvgSessionLength),
		AvgRevenuePerHour: finiteOrNil(w.AvgRevenuePerHour),
		RevenueChange:     w.RevenueChange,
		HoursChange:       w.HoursChange,
	}
}

func MapWeeklyAggregatesDomainToApi(weeks []domain.WeeklyAggregate) []api.WeeklyAggregate {
	out := make([]api.WeeklyAggregate, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, MapWeeklyAggregateDomainToApi(w))
	}
	return out
}

func MapClientWeekStatsDomainToApi(stats []domain.ClientWeekStats) []api.ClientWeekStats {
	out := make([]api.ClientWeekStats, 0, len(stats))
	for _, s := range stats {
		out = append(out, api.ClientWeekStats{
			Name:         s.Name,
			TotalRevenue: s.TotalRevenue,
			TotalHours:   s.TotalHours,
			SessionCount: s.SessionCount,
		})
	}
	return out
}

func MapClientHoursChangesDomainToApi(changes []domain.ClientHoursChange) []api.ClientHoursChange {
	out := make([]api.ClientHoursChange, 0, len(changes))
	for _, c := range changes {
		out = append(out, api.ClientHoursChange{
			Name:          c.Name,
			LatestHours:   c.LatestHours,
			PreviousHours: c.PreviousHours,
			Change:        c.Change,
			PercentChange: c.PercentChange,
			IsNew:         c.IsNew,
			IsGone:        c.IsGone,
		})
	}
	return out
}

func MapFunnelEntryDomainToApi(e domain.FunnelEntry) api.FunnelEntry {
	return api.FunnelEntry{
		Name:               e.Name,
		State:              string(e.State),
		FirstAssessment:    isoDate(e.FirstAssessment),
		LastAssessment:     isoDate(e.LastAssessment),
		FirstRecurring:     isoDate(e.FirstRecurring),
		LastRecurring:      isoDate(e.LastRecurring),
		AssessmentSessions: e.AssessmentSessions,
		RecurringSessions:  e.RecurringSessions,
		AssessmentCodes:    e.AssessmentCodes,
		TotalRevenue:       e.TotalRevenue,
		TotalHours:         e.TotalHours,
		DaysSinceFirst:     e.DaysSinceFirst,
		DaysSinceLast:      e.DaysSinceLast,
		DaysToConversion:   e.DaysToConversion,
		OverrideReason:     e.OverrideReason,
		Notes:              e.Notes,
	}
}

func MapFunnelReportDomainToApi(f domain.FunnelReport) api.FunnelReport {
	report := api.FunnelReport{
		Active:              mapEntries(f.Active),
		AtRisk:              mapEntries(f.AtRisk),
		NotViable:           mapEntries(f.NotViable),
		Converted:           mapEntries(f.Converted),
		Pending:             mapEntries(f.Pending),
		ConvertedTotal:      f.ConvertedTotal,
		TotalInFunnel:       f.TotalInFunnel,
		ConversionRate:      f.ConversionRate,
		AvgDaysToConversion: f.AvgDaysToConversion,
	}
	for _, r := range domain.CohortRanges {
		b := f.Cohorts[r]
		report.Cohorts = append(report.Cohorts, api.CohortBucket{
			Range:     string(r),
			Active:    b.Active,
			AtRisk:    b.AtRisk,
			NotViable: b.NotViable,
		})
	}
	return report
}

func MapDashboardDomainToApi(d domain.Dashboard) api.Dashboard {
	return api.Dashboard{
		RecordCount: d.RecordCount,
		Weeks:       MapWeeklyAggregatesDomainToApi(d.Weeks),
		TopClients:  MapClientWeekStatsDomainToApi(d.TopClients),
		Changes:     MapClientHoursChangesDomainToApi(d.Changes),
		Funnel:      MapFunnelReportDomainToApi(d.Funnel),
	}
}

func mapEntries(entries []domain.FunnelEntry) []api.FunnelEntry {
	out := make([]api.FunnelEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, MapFunnelEntryDomainToApi(e))
	}
	return out
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
