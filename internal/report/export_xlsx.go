package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName = "Laporan"
	headerRow = 5
)

// ToSpreadsheet renders result as an XLSX workbook with a title block
// (title, period, generation time), a blank row, the header row and the
// data rows in the same column order as ToCSV
func ToSpreadsheet(result *Result) ([]byte, error) {
	if result == nil {
		return nil, ErrNilResult
	}

	columns := columnTables[result.Type]
	if columns == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReportType, result.Type)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	title := result.Title
	if title == "" {
		title = Title(result.Type)
	}
	period := fmt.Sprintf("Periode: %s - %s", longDate(result.DateRange.Start), longDate(result.DateRange.End))
	generated := "Dibuat: " + result.GeneratedAt.Format(dateTimeLayout)

	for row, text := range []string{title, period, generated} {
		name, err := cell(1, row+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, name, text); err != nil {
			return nil, fmt.Errorf("failed to write title block: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", titleStyle); err != nil {
		return nil, fmt.Errorf("failed to style title: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col.Label
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, name, name, col.Width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	headerStart, err := cell(1, headerRow)
	if err != nil {
		return nil, err
	}
	headerEnd, err := cell(len(columns), headerRow)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheetName, headerStart, &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}
	if err := f.SetCellStyle(sheetName, headerStart, headerEnd, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header row: %w", err)
	}

	values := make([]interface{}, len(columns))
	for i, record := range result.Data {
		for j, col := range columns {
			v := record[col.Key]
			if v == nil {
				v = ""
			}
			values[j] = v
		}
		start, err := cell(1, headerRow+1+i)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, start, &values); err != nil {
			return nil, fmt.Errorf("failed to write data row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}

// cell names a 1-based coordinate such as "B6"
func cell(col, row int) (string, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("invalid cell (%d, %d): %w", col, row, err)
	}
	return name, nil
}
