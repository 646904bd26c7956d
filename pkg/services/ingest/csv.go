package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/billing-atlas/pkg/models/domain"
	"github.com/de-tools/billing-atlas/pkg/services/calendar"
)

// Column headers expected in the billing sheet export. A missing column does
// not fail the parse; affected fields fall back to zero values.
const (
	colServiceDate   = "DateOfService"
	colAgreedCharges = "ClientChargesAgreedTotal"
	colUnits         = "UnitsOfService"
	colHours         = "TimeWorkedInHours"
	colClientFirst   = "ClientFirstName"
	colClientLast    = "ClientLastName"
	colProcedureCode = "ProcedureCode"
)

// ParseCSV parses raw delimited text with a header row into session records.
// Malformed rows are dropped silently; header-only or empty input yields an
// empty slice.
func ParseCSV(text string) []domain.SessionRecord {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return nil
	}

	header := splitFields(strings.TrimRight(lines[0], "\r"))
	for i := range header {
		header[i] = stripQuotes(strings.TrimSpace(header[i]))
	}

	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, splitFields(line))
	}

	return recordsFromRows(header, rows)
}

// splitFields splits one line on commas using quote-toggle scanning: a quote
// character flips the in-quotes flag and a comma only separates fields while
// outside quotes.
func splitFields(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false
	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, current.String())
	return fields
}

// recordsFromRows is the shared normalization path for every ingestion
// source (CSV text, xlsx workbooks).
func recordsFromRows(header []string, rows [][]string) []domain.SessionRecord {
	dateIdx := columnIndex(header, colServiceDate)
	agreedIdx := columnIndex(header, colAgreedCharges)
	unitsIdx := columnIndex(header, colUnits)
	hoursIdx := columnIndex(header, colHours)
	firstIdx := columnIndex(header, colClientFirst)
	lastIdx := columnIndex(header, colClientLast)
	codeIdx := columnIndex(header, colProcedureCode)

	var records []domain.SessionRecord
	for _, row := range rows {
		dateValue := cell(row, dateIdx)
		if !plausibleDate(dateValue) {
			continue
		}
		date, err := parseServiceDate(dateValue)
		if err != nil {
			continue
		}

		first := cell(row, firstIdx)
		last := cell(row, lastIdx)

		records = append(records, domain.SessionRecord{
			ServiceDate:   date,
			AgreedCharge:  parseNumber(cell(row, agreedIdx)),
			Units:         parseNumber(cell(row, unitsIdx)),
			HoursWorked:   parseNumber(cell(row, hoursIdx)),
			ClientName:    strings.TrimSpace(first + " " + last),
			ProcedureCode: cell(row, codeIdx),
		})
	}
	return records
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return stripQuotes(strings.TrimSpace(row[idx]))
}

func stripQuotes(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

// plausibleDate rejects rows whose date field is missing, too short, the
// header literal itself, or a spreadsheet error marker such as "########".
func plausibleDate(s string) bool {
	if s == "" || len(s) < 8 {
		return false
	}
	if s == colServiceDate || strings.Contains(s, "#") {
		return false
	}
	return true
}

// parseServiceDate accepts M/D/Y dates with 2- or 4-digit years,
// hyphen-delimited ISO-like dates, and a small set of fallback layouts. Any
// trailing time-of-day component after a space is discarded first.
func parseServiceDate(s string) (time.Time, error) {
	datePart, _, _ := strings.Cut(s, " ")

	if strings.Contains(datePart, "/") {
		return parseSlashDate(datePart)
	}
	if strings.Contains(datePart, "-") {
		return parseDashDate(datePart)
	}
	for _, layout := range []string{"Jan 2, 2006", "January 2, 2006", "20060102"} {
		if t, err := time.Parse(layout, datePart); err == nil {
			return calendar.Date(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseSlashDate(s string) (time.Time, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("malformed slash date %q", s)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, err
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, err
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, err
	}
	if year < 100 {
		year += 2000
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

func parseDashDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-1-2", "2-Jan-2006", "2-Jan-06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return calendar.Date(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed dash date %q", s)
}

func parseNumber(s string) float64 {
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
