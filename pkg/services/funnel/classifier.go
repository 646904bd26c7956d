package funnel

import (
	"math"
	"sort"
	"time"

	"github.com/de-tools/billing-atlas/pkg/models/domain"
	"github.com/de-tools/billing-atlas/pkg/services/calendar"
)

const (
	// DefaultActiveDays is the upper bound of the active window; beyond it a
	// lead is at risk.
	DefaultActiveDays = 45
	// DefaultStaleDays is the upper bound of the pipeline; beyond it a lead
	// is stale and drops out of every view.
	DefaultStaleDays = 75
	// convertedDisplayCap limits the converted list handed to presentation;
	// summary statistics always cover the full converted set.
	convertedDisplayCap = 20
)

// Classifier assigns funnel states to client histories. Classification is a
// pure function of history, the reference date and the override map; it is
// recomputed fresh on every pass.
type Classifier struct {
	activeDays int
	staleDays  int
}

// NewClassifier creates a Classifier with the given staleness thresholds.
// Non-positive thresholds fall back to the defaults.
func NewClassifier(activeDays, staleDays int) *Classifier {
	if activeDays <= 0 {
		activeDays = DefaultActiveDays
	}
	if staleDays <= 0 {
		staleDays = DefaultStaleDays
	}
	return &Classifier{activeDays: activeDays, staleDays: staleDays}
}

// Classify produces the funnel report for the given histories. Only clients
// with at least one assessment-category record participate. overrides and
// notes are externally owned side tables and are never written to.
func (c *Classifier) Classify(
	histories map[string]domain.ClientHistory,
	overrides map[string]string,
	notes map[string]string,
	now time.Time,
) domain.FunnelReport {
	report := domain.FunnelReport{
		Cohorts: make(map[domain.CohortRange]domain.CohortBucket, len(domain.CohortRanges)),
	}
	for _, r := range domain.CohortRanges {
		report.Cohorts[r] = domain.CohortBucket{}
	}

	var converted []domain.FunnelEntry

	for _, h := range histories {
		if !h.HasAssessment() {
			continue
		}

		entry := domain.FunnelEntry{
			ClientHistory:  h,
			DaysSinceFirst: calendar.DaysBetween(h.FirstAssessment, now),
			DaysSinceLast:  calendar.DaysBetween(h.LastAssessment, now),
			OverrideReason: overrides[h.Name],
			Notes:          notes[h.Name],
		}

		switch {
		case h.HasRecurring():
			days := calendar.DaysBetween(h.LastAssessment, h.FirstRecurring)
			entry.DaysToConversion = &days
			entry.State = domain.StateConverted
			converted = append(converted, entry)
		case entry.OverrideReason != "":
			entry.State = domain.StateNotViable
			report.NotViable = append(report.NotViable, entry)
		case entry.DaysSinceLast <= c.staleDays:
			if entry.DaysSinceLast > c.activeDays {
				entry.State = domain.StateAtRisk
				report.AtRisk = append(report.AtRisk, entry)
			} else {
				entry.State = domain.StateActive
				report.Active = append(report.Active, entry)
			}
		default:
			// Stale leads drop out of every pipeline view.
			continue
		}
	}

	sort.SliceStable(report.Active, func(i, j int) bool {
		return report.Active[i].DaysSinceLast < report.Active[j].DaysSinceLast
	})
	sort.SliceStable(report.AtRisk, func(i, j int) bool {
		return report.AtRisk[i].DaysSinceLast > report.AtRisk[j].DaysSinceLast
	})
	sort.SliceStable(report.NotViable, func(i, j int) bool {
		return report.NotViable[i].DaysSinceLast < report.NotViable[j].DaysSinceLast
	})
	sort.SliceStable(converted, func(i, j int) bool {
		return converted[i].FirstRecurring.After(converted[j].FirstRecurring)
	})

	report.ConvertedTotal = len(converted)
	report.TotalInFunnel = len(report.Active) + len(report.AtRisk) + len(converted) + len(report.NotViable)
	if report.TotalInFunnel > 0 {
		report.ConversionRate = round1(float64(report.ConvertedTotal) / float64(report.TotalInFunnel) * 100)
	}
	report.AvgDaysToConversion = avgDaysToConversion(converted)

	if len(converted) > convertedDisplayCap {
		converted = converted[:convertedDisplayCap]
	}
	report.Converted = converted

	c.fillCohorts(&report)
	report.Pending = pending(report, c.staleDays)

	return report
}

// fillCohorts buckets active, at-risk and not-viable clients by days since
// their last assessment. An overridden client past the stale threshold still
// lands in the last bucket so cohort totals match the pipeline lists.
func (c *Classifier) fillCohorts(report *domain.FunnelReport) {
	tally := func(entries []domain.FunnelEntry) {
		for _, e := range entries {
			r := cohortRange(e.DaysSinceLast)
			b := report.Cohorts[r]
			switch e.State {
			case domain.StateActive:
				b.Active++
			case domain.StateAtRisk:
				b.AtRisk++
			case domain.StateNotViable:
				b.NotViable++
			}
			report.Cohorts[r] = b
		}
	}
	tally(report.Active)
	tally(report.AtRisk)
	tally(report.NotViable)
}

func cohortRange(days int) domain.CohortRange {
	switch {
	case days <= 14:
		return domain.CohortRanges[0]
	case days <= 30:
		return domain.CohortRanges[1]
	case days <= 45:
		return domain.CohortRanges[2]
	case days <= 60:
		return domain.CohortRanges[3]
	default:
		return domain.CohortRanges[4]
	}
}

// pending lists clients who still need follow-up: no conversion yet and a
// last assessment within the stale window, sorted by recency. Overridden
// clients stay on the list so outreach teams see why they were parked.
func pending(report domain.FunnelReport, staleDays int) []domain.FunnelEntry {
	entries := make([]domain.FunnelEntry, 0, len(report.Active)+len(report.AtRisk)+len(report.NotViable))
	entries = append(entries, report.Active...)
	entries = append(entries, report.AtRisk...)
	for _, e := range report.NotViable {
		if e.DaysSinceLast <= staleDays {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DaysSinceLast < entries[j].DaysSinceLast
	})
	return entries
}

func avgDaysToConversion(converted []domain.FunnelEntry) float64 {
	var sum, n float64
	for _, e := range converted {
		if e.DaysToConversion == nil || *e.DaysToConversion < 0 {
			continue
		}
		sum += float64(*e.DaysToConversion)
		n++
	}
	if n == 0 {
		return 0
	}
	return round1(sum / n)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
