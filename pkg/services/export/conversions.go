package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/de-tools/billing-atlas/pkg/models/domain"
)

// conversionHeader matches the CRM import template the outreach team uses.
var conversionHeader = []string{
	"First Name",
	"Last Name",
	"Last Psych Date",
	"Days Since Psych",
	"Psych Sessions",
	"Status",
	"Not Viable Reason",
}

// WriteConversionLeads writes the pending-conversion list as CSV, one row
// per client still awaiting follow-up.
func WriteConversionLeads(w io.Writer, entries []domain.FunnelEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(conversionHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, e := range entries {
		first, last := splitName(e.Name)

		status := "Active Conversion Lead"
		reason := ""
		if e.OverrideReason != "" {
			status = "Not Viable"
			reason = e.OverrideReason
		}

		row := []string{
			first,
			last,
			e.LastAssessment.Format("2006-01-02"),
			strconv.Itoa(e.DaysSinceLast),
			strconv.Itoa(e.AssessmentSessions),
			status,
			reason,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write lead %q: %w", e.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// splitName undoes the "<first> <last>" concatenation applied at ingestion;
// everything after the first space belongs to the last name.
func splitName(name string) (string, string) {
	first, last, _ := strings.Cut(name, " ")
	return first, last
}
