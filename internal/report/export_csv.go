package report

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// ToCSV renders result as CSV text: a header row of column labels followed
// by one row per record in column order. A nil result renders empty.
func ToCSV(result *Result) (string, error) {
	if result == nil {
		return "", nil
	}

	columns := columnTables[result.Type]
	if columns == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownReportType, result.Type)
	}

	var b strings.Builder
	w := csv.NewWriter(&b)

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Label
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}

	row := make([]string, len(columns))
	for _, record := range result.Data {
		for i, col := range columns {
			row[i] = cellString(record[col.Key])
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}

	return b.String(), nil
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case bool:
		return FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
