// Package report generates audit reports over the service desk's activity
// logs and renders them as JSON, CSV or XLSX.
package report

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Report errors
var (
	ErrUnknownReportType  = errors.New("unknown report type")
	ErrInvalidDateRange   = errors.New("start date must not be after end date")
	ErrUnsupportedFormat  = errors.New("unsupported output format")
	ErrArchiveUnavailable = errors.New("report archive storage is not configured")
	ErrNilResult          = errors.New("nil report result")
)

// ReportType identifies one of the seven report kinds
type ReportType string

const (
	LoginActivity   ReportType = "LOGIN_ACTIVITY"
	FailedLogins    ReportType = "FAILED_LOGINS"
	PasswordChanges ReportType = "PASSWORD_CHANGES"
	UserActivity    ReportType = "USER_ACTIVITY"
	SecurityEvents  ReportType = "SECURITY_EVENTS"
	ProfileChanges  ReportType = "PROFILE_CHANGES"
	SessionHistory  ReportType = "SESSION_HISTORY"
)

// AllTypes lists every report kind in display order
var AllTypes = []ReportType{
	LoginActivity,
	FailedLogins,
	PasswordChanges,
	UserActivity,
	SecurityEvents,
	ProfileChanges,
	SessionHistory,
}

// Valid reports whether t is one of the known report kinds
func (t ReportType) Valid() bool {
	_, ok := columnTables[t]
	return ok
}

// Format is the output format of a report
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DateRange is an inclusive time window
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Filters are the optional row filters of a report request. Each report
// kind honours only the filters that exist on its source table.
type Filters struct {
	UserID    *uuid.UUID `json:"user_id"`
	Actions   []string   `json:"actions"`
	IPAddress string     `json:"ip_address"`
	Email     string     `json:"email"`
}

// Request describes a report to generate
type Request struct {
	Type      ReportType
	DateRange DateRange
	Filters   Filters
	Format    Format
}

// Record is one flat report row keyed by column key
type Record map[string]any

// Result is a generated report
type Result struct {
	Type         ReportType `json:"type"`
	Title        string     `json:"title"`
	GeneratedAt  time.Time  `json:"generated_at"`
	DateRange    DateRange  `json:"date_range"`
	TotalRecords int        `json:"total_records"`
	Data         []Record   `json:"data"`
	Summary      any        `json:"summary"`
}

// Export is a rendered report file
type Export struct {
	Body        []byte
	ContentType string
	Filename    string
}

// ArchivedExport points at a report file uploaded to archive storage
type ArchivedExport struct {
	Key       string        `json:"key"`
	Filename  string        `json:"filename"`
	URL       string        `json:"url"`
	ExpiresIn time.Duration `json:"-"`
	// ExpiresInSeconds mirrors ExpiresIn for JSON clients
	ExpiresInSeconds int64 `json:"expires_in"`
	TotalRecords     int   `json:"total_records"`
}
