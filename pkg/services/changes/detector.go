package changes

import (
	"math"
	"sort"

	"github.com/de-tools/billing-atlas/pkg/models/domain"
	"github.com/de-tools/billing-atlas/pkg/services/calendar"
)

// DefaultThresholdPercent is the minimum absolute percent change that makes
// a client's week-over-week hours shift worth surfacing.
const DefaultThresholdPercent = 25

// Detector compares the two most recent weeks of anchor-code records and
// surfaces significant per-client shifts in qualifying hours.
type Detector struct {
	anchorCode string
	threshold  float64
}

// NewDetector creates a Detector for the given anchor procedure code. A
// non-positive threshold falls back to the default.
func NewDetector(anchorCode string, threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThresholdPercent
	}
	return &Detector{anchorCode: anchorCode, threshold: threshold}
}

// Detect computes per-client qualifying-hours deltas between previousWeek
// and latestWeek (bucket keys in YYYY-MM-DD form). Clients with zero hours
// in both weeks are excluded as no-ops; the rest are filtered to those with
// |percentChange| >= threshold or flagged new/gone, sorted descending by
// |percentChange|.
func (d *Detector) Detect(records []domain.SessionRecord, previousWeek, latestWeek string) []domain.ClientHoursChange {
	if previousWeek == "" || latestWeek == "" || previousWeek == latestWeek {
		return nil
	}

	latest := d.hoursByClient(records, latestWeek)
	previous := d.hoursByClient(records, previousWeek)

	names := make(map[string]struct{}, len(latest)+len(previous))
	for name := range latest {
		names[name] = struct{}{}
	}
	for name := range previous {
		names[name] = struct{}{}
	}

	var out []domain.ClientHoursChange
	for name := range names {
		latestHours := latest[name]
		previousHours := previous[name]
		if latestHours == 0 && previousHours == 0 {
			continue
		}

		change := latestHours - previousHours
		var percent float64
		switch {
		case previousHours > 0:
			percent = change / previousHours * 100
		case latestHours > 0:
			percent = 100
		}

		entry := domain.ClientHoursChange{
			Name:          name,
			LatestHours:   latestHours,
			PreviousHours: previousHours,
			Change:        change,
			PercentChange: percent,
			IsNew:         previousHours == 0 && latestHours > 0,
			IsGone:        previousHours > 0 && latestHours == 0,
		}
		if math.Abs(entry.PercentChange) >= d.threshold || entry.IsNew || entry.IsGone {
			out = append(out, entry)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := math.Abs(out[i].PercentChange), math.Abs(out[j].PercentChange)
		if pi != pj {
			return pi > pj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// hoursByClient totals qualifying hours per client for anchor-code sessions
// inside the target week.
func (d *Detector) hoursByClient(records []domain.SessionRecord, weekKey string) map[string]float64 {
	hours := make(map[string]float64)
	for _, rec := range records {
		if rec.ProcedureCode != d.anchorCode || rec.ClientName == "" {
			continue
		}
		if calendar.WeekKey(calendar.WeekStart(rec.ServiceDate)) != weekKey {
			continue
		}
		if rec.AgreedCharge > 0 {
			hours[rec.ClientName] += rec.HoursWorked
		}
	}
	return hours
}
