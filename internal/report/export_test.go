package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func loginResult(records ...Record) *Result {
	return &Result{
		Type:        LoginActivity,
		Title:       Title(LoginActivity),
		GeneratedAt: time.Date(2026, 10, 19, 12, 30, 0, 0, testLoc),
		DateRange: DateRange{
			Start: time.Date(2026, 10, 1, 0, 0, 0, 0, testLoc),
			End:   time.Date(2026, 10, 19, 23, 59, 59, 0, testLoc),
		},
		TotalRecords: len(records),
		Data:         records,
	}
}

func TestToCSV_Escaping(t *testing.T) {
	result := loginResult(Record{
		"attempted_at":   "19/10/2026 10.00.00",
		"email":          `a,b"c`,
		"status":         "Gagal",
		"failure_reason": "line one\nline two",
		"ip_address":     "1.2.3.4",
		"browser":        "Chrome",
		"lock_triggered": "Tidak",
	})

	out, err := ToCSV(result)
	require.NoError(t, err)

	assert.Contains(t, out, `"a,b""c"`)
	assert.Contains(t, out, "\"line one\nline two\"")

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	columns := Columns(LoginActivity)
	require.Len(t, rows[0], len(columns))
	for i, col := range columns {
		assert.Equal(t, col.Label, rows[0][i])
	}
	require.Len(t, rows[1], len(columns))
	assert.Equal(t, `a,b"c`, rows[1][1])
	assert.Equal(t, "1.2.3.4", rows[1][4])
}

func TestToCSV_NilAndMissingValues(t *testing.T) {
	out, err := ToCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)

	result := loginResult(Record{
		"attempted_at":   "19/10/2026 10.00.00",
		"email":          "budi@bank.co.id",
		"status":         "Berhasil",
		"failure_reason": nil,
		"browser":        "Edge",
		"lock_triggered": "Tidak",
	})

	out, err = ToCSV(result)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "19/10/2026 10.00.00,budi@bank.co.id,Berhasil,,,Edge,Tidak", lines[1])
}

func TestToCSV_NumericCells(t *testing.T) {
	result := &Result{Type: UserActivity, Data: []Record{{
		"name": "Budi", "email": "budi@bank.co.id", "role": "Agen", "status": "Aktif",
		"last_login_at": nil, "total_actions": 12, "login_attempts": 3, "failed_logins": 0,
	}}}

	out, err := ToCSV(result)
	require.NoError(t, err)
	assert.Contains(t, out, "Budi,budi@bank.co.id,Agen,Aktif,,12,3,0\n")
}

func TestToCSV_UnknownType(t *testing.T) {
	_, err := ToCSV(&Result{Type: "NOPE"})
	assert.ErrorIs(t, err, ErrUnknownReportType)
}

func TestToSpreadsheet_Layout(t *testing.T) {
	result := loginResult(
		Record{
			"attempted_at":   "19/10/2026 10.00.00",
			"email":          "budi@bank.co.id",
			"status":         "Gagal",
			"failure_reason": "Password Salah",
			"ip_address":     nil,
			"browser":        "Firefox",
			"lock_triggered": "Ya",
		},
		Record{
			"attempted_at":   "18/10/2026 09.00.00",
			"email":          "sari@bank.co.id",
			"status":         "Berhasil",
			"failure_reason": nil,
			"ip_address":     "10.0.0.1",
			"browser":        "Chrome",
			"lock_triggered": "Tidak",
		},
	)

	body, err := ToSpreadsheet(result)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 7)

	assert.Equal(t, "Laporan Aktivitas Login", rows[0][0])
	assert.Equal(t, "Periode: 1 Oktober 2026 - 19 Oktober 2026", rows[1][0])
	assert.Equal(t, "Dibuat: 19/10/2026 12.30.00", rows[2][0])
	assert.Empty(t, rows[3])

	columns := Columns(LoginActivity)
	require.Len(t, rows[4], len(columns))
	for i, col := range columns {
		assert.Equal(t, col.Label, rows[4][i])
	}

	assert.Equal(t, []string{"19/10/2026 10.00.00", "budi@bank.co.id", "Gagal", "Password Salah", "", "Firefox", "Ya"}, rows[5])
	assert.Equal(t, []string{"18/10/2026 09.00.00", "sari@bank.co.id", "Berhasil", "", "10.0.0.1", "Chrome", "Tidak"}, rows[6])

	width, err := f.GetColWidth(sheetName, "B")
	require.NoError(t, err)
	assert.Equal(t, columns[1].Width, width)
}

func TestToSpreadsheet_NumericCells(t *testing.T) {
	result := &Result{Type: UserActivity, Title: Title(UserActivity), Data: []Record{{
		"name": "Budi", "email": "budi@bank.co.id", "role": "Agen", "status": "Aktif",
		"last_login_at": "01/10/2026 08.00.00", "total_actions": 12, "login_attempts": 3, "failed_logins": 1,
	}}}

	body, err := ToSpreadsheet(result)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue(sheetName, "F6")
	require.NoError(t, err)
	assert.Equal(t, "12", value)
}

func TestToSpreadsheet_Errors(t *testing.T) {
	_, err := ToSpreadsheet(nil)
	assert.ErrorIs(t, err, ErrNilResult)

	_, err = ToSpreadsheet(&Result{Type: "NOPE"})
	assert.ErrorIs(t, err, ErrUnknownReportType)
}

func TestCell(t *testing.T) {
	name, err := cell(2, 6)
	require.NoError(t, err)
	assert.Equal(t, "B6", name)

	_, err = cell(0, 1)
	assert.Error(t, err)

	_, err = cell(1, 0)
	assert.Error(t, err)
}
