package analytics

import (
	"fmt"
	"math"

	"github.com/de-tools/billing-atlas/pkg/models/domain"
)

// BuildWeeklyReport shapes weekly aggregates into a renderable report.
func BuildWeeklyReport(weeks []domain.WeeklyAggregate) *domain.Report {
	report := &domain.Report{Title: "Weekly Billing Trends"}
	if len(weeks) == 0 {
		return report
	}

	report.Period = domain.TimePeriod{
		Start: weeks[0].Week,
		End:   weeks[len(weeks)-1].Week,
		Weeks: len(weeks),
	}

	latest := weeks[len(weeks)-1]
	section := domain.ReportSection{
		Title: "Latest Week",
		Summary: map[string]interface{}{
			"week":           latest.Week.Format("2006-01-02"),
			"agreed_charges": fmt.Sprintf("%.2f", latest.AgreedRevenue),
			"revenue_change": fmt.Sprintf("%+.1f%%", latest.RevenueChange),
			"hours_change":   fmt.Sprintf("%+.1f%%", latest.HoursChange),
		},
	}
	report.Sections = append(report.Sections, section)

	trend := domain.ReportSection{Title: "Weekly Trend"}
	for _, w := range weeks {
		trend.Details = append(trend.Details, domain.ReportDetail{
			Name:  w.Week.Format("2006-01-02"),
			Value: fmt.Sprintf("%.2f", w.AgreedRevenue),
			Unit:  "USD",
			Description: fmt.Sprintf("%d sessions, %.1f hours, %d clients, %s/h",
				w.SessionCount, w.TotalHours, w.ClientCount, formatRate(w.AvgRevenuePerHour)),
		})
	}
	report.Sections = append(report.Sections, trend)

	return report
}

// BuildFunnelReport shapes a funnel classification into a renderable report.
func BuildFunnelReport(f domain.FunnelReport) *domain.Report {
	report := &domain.Report{Title: "Assessment Conversion Funnel"}

	report.Sections = append(report.Sections, domain.ReportSection{
		Title: "Pipeline Summary",
		Summary: map[string]interface{}{
			"active":              len(f.Active),
			"at_risk":             len(f.AtRisk),
			"not_viable":          len(f.NotViable),
			"converted":           f.ConvertedTotal,
			"conversion_rate":     fmt.Sprintf("%.1f%%", f.ConversionRate),
			"avg_days_to_convert": f.AvgDaysToConversion,
		},
	})

	cohorts := domain.ReportSection{Title: "Pipeline by Days Since Assessment"}
	for _, r := range domain.CohortRanges {
		b := f.Cohorts[r]
		cohorts.Details = append(cohorts.Details, domain.ReportDetail{
			Name:  string(r),
			Value: b.Total(),
			Unit:  "clients",
			Description: fmt.Sprintf("%d active, %d at risk, %d not viable",
				b.Active, b.AtRisk, b.NotViable),
		})
	}
	report.Sections = append(report.Sections, cohorts)

	followUp := domain.ReportSection{Title: "Needs Follow-up"}
	for _, e := range f.Pending {
		desc := fmt.Sprintf("last assessment %s, %d sessions",
			e.LastAssessment.Format("2006-01-02"), e.AssessmentSessions)
		if e.OverrideReason != "" {
			desc += ", not viable: " + e.OverrideReason
		}
		followUp.Details = append(followUp.Details, domain.ReportDetail{
			Name:        e.Name,
			Value:       e.DaysSinceLast,
			Unit:        "days",
			Description: desc,
		})
	}
	report.Sections = append(report.Sections, followUp)

	return report
}

func formatRate(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
