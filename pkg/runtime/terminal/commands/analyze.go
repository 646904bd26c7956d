package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-tools/billing-atlas/pkg/models/domain"
	"github.com/de-tools/billing-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/billing-atlas/pkg/services/analytics"
	"github.com/de-tools/billing-atlas/pkg/services/ingest"
	"github.com/spf13/cobra"
)

type AnalyzeCmd struct {
	filePath  string
	weeks     int
	analytics *analytics.Controller
	reporter  *export.Reporter
}

func NewAnalyzeCmd(ctrl *analytics.Controller, reporter *export.Reporter) *cobra.Command {
	ac := &AnalyzeCmd{analytics: ctrl, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute weekly billing aggregates from a billing sheet",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.filePath, "file", "", "Path to the billing sheet (.csv or .xlsx)")
	cmd.Flags().IntVar(&ac.weeks, "weeks", 0, "Limit the report to the most recent N weeks")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, args []string) error {
	records, err := loadRecords(ac.filePath)
	if err != nil {
		return err
	}

	weeks := ac.analytics.Weekly(cmd.Context(), records)
	if ac.weeks > 0 && len(weeks) > ac.weeks {
		weeks = weeks[len(weeks)-ac.weeks:]
	}

	return ac.reporter.Handle(analytics.BuildWeeklyReport(weeks))
}

// loadRecords reads a billing sheet from disk, dispatching on extension.
func loadRecords(path string) ([]domain.SessionRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return ingest.ParseWorkbook(f)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ingest.ParseCSV(string(data)), nil
}
