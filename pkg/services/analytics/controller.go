package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/de-tools/billing-atlas/pkg/models/domain"
	"github.com/de-tools/billing-atlas/pkg/services/calendar"
	"github.com/de-tools/billing-atlas/pkg/services/changes"
	"github.com/de-tools/billing-atlas/pkg/services/config"
	"github.com/de-tools/billing-atlas/pkg/services/funnel"
	"github.com/de-tools/billing-atlas/pkg/services/history"
	"github.com/de-tools/billing-atlas/pkg/services/weekly"
	"github.com/rs/zerolog"
)

// Controller wires the aggregation components together under one code
// taxonomy. Every method is a pure pass over its inputs; the controller
// holds no per-dataset state.
type Controller struct {
	cfg           config.Config
	aggregator    *weekly.Aggregator
	funnelBuilder *history.Builder
	anchorBuilder *history.Builder
	classifier    *funnel.Classifier
	detector      *changes.Detector
}

func NewController(cfg config.Config) *Controller {
	return &Controller{
		cfg:           cfg,
		aggregator:    weekly.NewAggregator(cfg.Codes.Anchor),
		funnelBuilder: history.NewBuilder(cfg.Codes.Assessment, cfg.Codes.Recurring),
		anchorBuilder: history.NewBuilder(nil, []string{cfg.Codes.Anchor}),
		classifier:    funnel.NewClassifier(cfg.Thresholds.ActiveDays, cfg.Thresholds.StaleDays),
		detector:      changes.NewDetector(cfg.Codes.Anchor, cfg.Thresholds.ChangePercent),
	}
}

// Weekly returns per-week aggregates sorted ascending by week.
func (c *Controller) Weekly(ctx context.Context, records []domain.SessionRecord) []domain.WeeklyAggregate {
	weeks := c.aggregator.Aggregate(records)
	zerolog.Ctx(ctx).Debug().
		Int("records", len(records)).
		Int("weeks", len(weeks)).
		Msg("aggregated weekly metrics")
	return weeks
}

// TopClients ranks the latest week's anchor-code clients by agreed revenue.
func (c *Controller) TopClients(ctx context.Context, records []domain.SessionRecord) []domain.ClientWeekStats {
	weeks := c.aggregator.Aggregate(records)
	if len(weeks) == 0 {
		return nil
	}
	latestKey := calendar.WeekKey(weeks[len(weeks)-1].Week)

	var latest []domain.SessionRecord
	for _, rec := range records {
		if calendar.WeekKey(calendar.WeekStart(rec.ServiceDate)) == latestKey {
			latest = append(latest, rec)
		}
	}

	histories := c.anchorBuilder.Build(latest)
	stats := make([]domain.ClientWeekStats, 0, len(histories))
	for _, h := range histories {
		stats = append(stats, domain.ClientWeekStats{
			Name:         h.Name,
			TotalRevenue: h.TotalRevenue,
			TotalHours:   h.TotalHours,
			SessionCount: h.RecurringSessions,
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].TotalRevenue != stats[j].TotalRevenue {
			return stats[i].TotalRevenue > stats[j].TotalRevenue
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

// Changes surfaces significant week-over-week client hour shifts between the
// two most recent weeks. Fewer than two weeks of data yields an empty result.
func (c *Controller) Changes(ctx context.Context, records []domain.SessionRecord) []domain.ClientHoursChange {
	weeks := c.aggregator.Aggregate(records)
	if len(weeks) < 2 {
		return nil
	}
	latest := calendar.WeekKey(weeks[len(weeks)-1].Week)
	previous := calendar.WeekKey(weeks[len(weeks)-2].Week)
	return c.detector.Detect(records, previous, latest)
}

// Funnel classifies every assessed client and assembles cohort and summary
// statistics relative to now.
func (c *Controller) Funnel(
	ctx context.Context,
	records []domain.SessionRecord,
	overrides map[string]string,
	notes map[string]string,
	now time.Time,
) domain.FunnelReport {
	histories := c.funnelBuilder.Build(records)
	report := c.classifier.Classify(histories, overrides, notes, now)
	zerolog.Ctx(ctx).Debug().
		Int("clients", len(histories)).
		Int("active", len(report.Active)).
		Int("at_risk", len(report.AtRisk)).
		Int("converted", report.ConvertedTotal).
		Msg("classified conversion funnel")
	return report
}

// Dashboard runs every view in one pass.
func (c *Controller) Dashboard(
	ctx context.Context,
	records []domain.SessionRecord,
	overrides map[string]string,
	notes map[string]string,
	now time.Time,
) domain.Dashboard {
	return domain.Dashboard{
		RecordCount: len(records),
		Weeks:       c.Weekly(ctx, records),
		TopClients:  c.TopClients(ctx, records),
		Changes:     c.Changes(ctx, records),
		Funnel:      c.Funnel(ctx, records, overrides, notes, now),
	}
}
