package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/de-tools/billing-atlas/pkg/models/domain"
	"github.com/de-tools/billing-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/billing-atlas/pkg/services/analytics"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type FunnelCmd struct {
	filePath      string
	nowStr        string
	overridesPath string
	analytics     *analytics.Controller
	reporter      *export.Reporter
}

func NewFunnelCmd(ctrl *analytics.Controller, reporter *export.Reporter) *cobra.Command {
	fc := &FunnelCmd{analytics: ctrl, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "funnel",
		Short: "Classify the assessment-to-recurring conversion funnel",
		RunE:  fc.run,
	}

	cmd.Flags().StringVar(&fc.filePath, "file", "", "Path to the billing sheet (.csv or .xlsx)")
	cmd.Flags().StringVar(&fc.nowStr, "now", "", "Reference date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&fc.overridesPath, "overrides", "", "Path to a yaml file of client -> not-viable reason")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (fc *FunnelCmd) run(cmd *cobra.Command, args []string) error {
	records, err := loadRecords(fc.filePath)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if fc.nowStr != "" {
		now, err = time.Parse("2006-01-02", fc.nowStr)
		if err != nil {
			return fmt.Errorf("invalid --now date %q: %w", fc.nowStr, err)
		}
	}

	overrides, err := loadOverrides(fc.overridesPath)
	if err != nil {
		return err
	}

	report := fc.analytics.Funnel(cmd.Context(), records, overrides, nil, now)
	return fc.reporter.Handle(analytics.BuildFunnelReport(report))
}

// loadOverrides reads the manual not-viable reasons from a flat yaml map of
// client name to reason code.
func loadOverrides(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides file: %w", err)
	}

	overrides := make(map[string]string)
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse overrides file: %w", err)
	}
	for client, reason := range overrides {
		if !domain.ValidOverrideReason(reason) {
			return nil, fmt.Errorf("unknown override reason %q for client %q", reason, client)
		}
	}
	return overrides, nil
}
