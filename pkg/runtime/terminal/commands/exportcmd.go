package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/de-tools/billing-atlas/pkg/services/analytics"
	"github.com/de-tools/billing-atlas/pkg/services/export"
	"github.com/spf13/cobra"
)

type ExportCmd struct {
	filePath      string
	outPath       string
	nowStr        string
	overridesPath string
	analytics     *analytics.Controller
}

func NewExportCmd(ctrl *analytics.Controller) *cobra.Command {
	ec := &ExportCmd{analytics: ctrl}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export pending conversion leads as a CRM-ready CSV",
		RunE:  ec.run,
	}

	cmd.Flags().StringVar(&ec.filePath, "file", "", "Path to the billing sheet (.csv or .xlsx)")
	cmd.Flags().StringVar(&ec.outPath, "out", "", "Output CSV path")
	cmd.Flags().StringVar(&ec.nowStr, "now", "", "Reference date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&ec.overridesPath, "overrides", "", "Path to a yaml file of client -> not-viable reason")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, args []string) error {
	records, err := loadRecords(ec.filePath)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if ec.nowStr != "" {
		now, err = time.Parse("2006-01-02", ec.nowStr)
		if err != nil {
			return fmt.Errorf("invalid --now date %q: %w", ec.nowStr, err)
		}
	}

	overrides, err := loadOverrides(ec.overridesPath)
	if err != nil {
		return err
	}

	report := ec.analytics.Funnel(cmd.Context(), records, overrides, nil, now)

	out, err := os.Create(ec.outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", ec.outPath, err)
	}
	defer out.Close()

	if err := export.WriteConversionLeads(out, report.Pending); err != nil {
		return fmt.Errorf("write conversion leads: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d conversion leads to %s\n", len(report.Pending), ec.outPath)
	return nil
}
