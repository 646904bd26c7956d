package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/de-tools/billing-atlas/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

// ParseWorkbook reads session records from the first sheet of an xlsx
// workbook using streaming row reads. The first row is treated as the
// header; data rows go through the same normalization path as CSV input.
func ParseWorkbook(r io.Reader) ([]domain.SessionRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	iter, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	defer iter.Close()

	var header []string
	var rows [][]string
	for iter.Next() {
		vals, err := iter.Columns()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if header == nil {
			header = make([]string, len(vals))
			for i, v := range vals {
				header[i] = stripQuotes(strings.TrimSpace(v))
			}
			continue
		}
		rows = append(rows, vals)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return recordsFromRows(header, rows), nil
}
