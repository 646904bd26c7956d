package adapters

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/billing-atlas/pkg/models/domain"
)

func TestMapWeeklyAggregateDomainToApi(t *testing.T) {
	w := domain.WeeklyAggregate{
		Week:              time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		AgreedRevenue:     400,
		TotalHours:        4,
		SessionCount:      2,
		AvgSessionLength:  2,
		AvgRevenuePerHour: 100,
	}

	out := MapWeeklyAggregateDomainToApi(w)
	assert.Equal(t, "2025-03-03", out.Week)
	require.NotNil(t, out.AvgSessionLength)
	assert.Equal(t, 2.0, *out.AvgSessionLength)
	require.NotNil(t, out.AvgRevenuePerHour)
	assert.Equal(t, 100.0, *out.AvgRevenuePerHour)
}

func TestMapWeeklyAggregateDomainToApi_UndefinedMetrics(t *testing.T) {
	w := domain.WeeklyAggregate{
		Week:              time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		AvgSessionLength:  math.NaN(),
		AvgRevenuePerHour: math.Inf(1),
	}

	out := MapWeeklyAggregateDomainToApi(w)
	assert.Nil(t, out.AvgSessionLength)
	assert.Nil(t, out.AvgRevenuePerHour)
}

func TestMapFunnelEntryDomainToApi_ZeroDatesOmitted(t *testing.T) {
	e := domain.FunnelEntry{
		ClientHistory: domain.ClientHistory{
			Name:            "Jane Doe",
			FirstAssessment: time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
			LastAssessment:  time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
		},
		State: domain.StateActive,
	}

	out := MapFunnelEntryDomainToApi(e)
	assert.Equal(t, "active", out.State)
	assert.Equal(t, "2025-01-06", out.FirstAssessment)
	assert.Empty(t, out.FirstRecurring)
	assert.Empty(t, out.LastRecurring)
}

func TestMapFunnelReportDomainToApi_CohortsOrdered(t *testing.T) {
	report := domain.FunnelReport{
		Cohorts: map[domain.CohortRange]domain.CohortBucket{
			"15-30": {Active: 2},
			"61-75": {NotViable: 1},
		},
	}

	out := MapFunnelReportDomainToApi(report)
	require.Len(t, out.Cohorts, 5)
	assert.Equal(t, "0-14", out.Cohorts[0].Range)
	assert.Equal(t, 2, out.Cohorts[1].Active)
	assert.Equal(t, "61-75", out.Cohorts[4].Range)
	assert.Equal(t, 1, out.Cohorts[4].NotViable)
}
