package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/billing-atlas/pkg/models/domain"
)

func TestBuildWeeklyReport(t *testing.T) {
	weeks := []domain.WeeklyAggregate{
		{
			Week:              time.Date(2025, time.February, 24, 0, 0, 0, 0, time.UTC),
			AgreedRevenue:     600,
			TotalHours:        6,
			SessionCount:      2,
			ClientCount:       2,
			AvgRevenuePerHour: 100,
		},
		{
			Week:              time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
			AgreedRevenue:     400,
			TotalHours:        4,
			SessionCount:      2,
			ClientCount:       2,
			AvgRevenuePerHour: 100,
			RevenueChange:     -33.3,
			HoursChange:       -33.3,
		},
	}

	report := BuildWeeklyReport(weeks)
	assert.Equal(t, "Weekly Billing Trends", report.Title)
	assert.Equal(t, 2, report.Period.Weeks)
	assert.Equal(t, weeks[0].Week, report.Period.Start)
	assert.Equal(t, weeks[1].Week, report.Period.End)

	require.Len(t, report.Sections, 2)
	assert.Equal(t, "2025-03-03", report.Sections[0].Summary["week"])
	assert.Equal(t, "-33.3%", report.Sections[0].Summary["revenue_change"])
	assert.Len(t, report.Sections[1].Details, 2)
	assert.Contains(t, report.Sections[1].Details[0].Description, "100.00/h")
}

func TestBuildWeeklyReport_Empty(t *testing.T) {
	report := BuildWeeklyReport(nil)
	assert.Equal(t, "Weekly Billing Trends", report.Title)
	assert.Zero(t, report.Period.Weeks)
	assert.Empty(t, report.Sections)
}

func TestBuildFunnelReport(t *testing.T) {
	f := domain.FunnelReport{
		Active:         []domain.FunnelEntry{{ClientHistory: domain.ClientHistory{Name: "Jane Doe"}}},
		ConvertedTotal: 3,
		ConversionRate: 60.0,
		Pending: []domain.FunnelEntry{
			{
				ClientHistory: domain.ClientHistory{
					Name:               "Jane Doe",
					LastAssessment:     time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
					AssessmentSessions: 2,
				},
				DaysSinceLast: 9,
			},
			{
				ClientHistory:  domain.ClientHistory{Name: "John Smith"},
				DaysSinceLast:  50,
				OverrideReason: "insurance",
			},
		},
		Cohorts: map[domain.CohortRange]domain.CohortBucket{
			"0-14": {Active: 1},
		},
	}

	report := BuildFunnelReport(f)
	require.Len(t, report.Sections, 3)
	assert.Equal(t, "60.0%", report.Sections[0].Summary["conversion_rate"])
	assert.Len(t, report.Sections[1].Details, len(domain.CohortRanges))

	followUp := report.Sections[2]
	require.Len(t, followUp.Details, 2)
	assert.Contains(t, followUp.Details[0].Description, "last assessment 2025-03-01")
	assert.Contains(t, followUp.Details[1].Description, "not viable: insurance")
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "n/a", formatRate(math.NaN()))
	assert.Equal(t, "n/a", formatRate(math.Inf(1)))
	assert.Equal(t, "102.50", formatRate(102.5))
}
