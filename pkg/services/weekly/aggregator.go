package weekly

import (
	"math"
	"sort"

	"github.com/de-tools/billing-atlas/pkg/models/domain"
	"github.com/de-tools/billing-atlas/pkg/services/calendar"
)

// Aggregator folds session records into per-week metrics. It is a pure
// transformation; every call rebuilds its buckets from scratch.
type Aggregator struct {
	anchorCode string
}

// NewAggregator creates an Aggregator. anchorCode is the single recurring
// procedure code whose sessions define the distinct-client count.
func NewAggregator(anchorCode string) *Aggregator {
	return &Aggregator{anchorCode: anchorCode}
}

type bucket struct {
	week          domain.WeeklyAggregate
	uniqueClients map[string]struct{}
}

// Aggregate groups records into Monday-anchored weeks and returns the
// aggregates sorted ascending by week. Percent-change fields compare each
// week to its immediate predecessor in that order; the first week reports
// zero change.
func (a *Aggregator) Aggregate(records []domain.SessionRecord) []domain.WeeklyAggregate {
	grouped := make(map[string]*bucket)

	for _, rec := range records {
		week := calendar.WeekStart(rec.ServiceDate)
		key := calendar.WeekKey(week)

		b, ok := grouped[key]
		if !ok {
			b = &bucket{
				week:          domain.WeeklyAggregate{Week: week},
				uniqueClients: make(map[string]struct{}),
			}
			grouped[key] = b
		}

		b.week.AgreedRevenue += rec.AgreedCharge
		b.week.TotalUnits += rec.Units
		if rec.AgreedCharge > 0 {
			// Unbilled time is operationally distinct and never counts
			// toward billable-hours totals.
			b.week.TotalHours += rec.HoursWorked
		}
		b.week.SessionCount++

		if rec.ClientName != "" && rec.ProcedureCode == a.anchorCode {
			b.uniqueClients[rec.ClientName] = struct{}{}
		}
	}

	weeks := make([]domain.WeeklyAggregate, 0, len(grouped))
	for _, b := range grouped {
		w := b.week
		w.ClientCount = len(b.uniqueClients)
		w.AvgSessionLength = safeDivide(w.TotalHours, float64(w.SessionCount))
		w.AvgRevenuePerHour = safeDivide(w.AgreedRevenue, w.TotalHours)
		weeks = append(weeks, w)
	}

	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].Week.Before(weeks[j].Week)
	})

	for i := range weeks {
		if i == 0 {
			continue
		}
		prev := weeks[i-1]
		if prev.AgreedRevenue > 0 {
			weeks[i].RevenueChange = round1((weeks[i].AgreedRevenue - prev.AgreedRevenue) / prev.AgreedRevenue * 100)
		}
		if prev.TotalHours > 0 {
			weeks[i].HoursChange = round1((weeks[i].TotalHours - prev.TotalHours) / prev.TotalHours * 100)
		}
	}

	return weeks
}

// safeDivide returns NaN for a zero denominator so downstream consumers see
// an explicit undefined value instead of a silent zero or infinity.
func safeDivide(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
