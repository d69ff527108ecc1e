package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/welldanyogia/servicedesk-audit/internal/repository"
)

const dateTimeLayout = "02/01/2006 15.04.05"

// TextCleaner normalizes free text for a report cell and detects markup
// embedded in stored values
type TextCleaner interface {
	Clean(text string) string
	HasMarkup(text string) bool
}

// Formatter renders raw values as display strings in a fixed time zone.
// All methods are total: they never fail and never panic on odd input.
type Formatter struct {
	loc     *time.Location
	cleaner TextCleaner
}

// NewFormatter creates a formatter for loc. A nil loc means UTC; a nil
// cleaner leaves free text untouched.
func NewFormatter(loc *time.Location, cleaner TextCleaner) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{loc: loc, cleaner: cleaner}
}

// Location returns the formatter's time zone
func (f *Formatter) Location() *time.Location {
	return f.loc
}

// FormatDateTime renders t as dd/mm/yyyy HH.MM.SS. The zero time renders empty.
func (f *Formatter) FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.loc).Format(dateTimeLayout)
}

func (f *Formatter) formatDateTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return f.FormatDateTime(*t)
}

// FormatDate renders t as "19 Oktober 2026"
func (f *Formatter) FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return longDate(t.In(f.loc))
}

// longDate formats t in its own location
func longDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthNames[t.Month()-1], t.Year())
}

// Text normalizes free text stored by other parts of the system
func (f *Formatter) Text(s string) string {
	if f.cleaner == nil {
		return s
	}
	return f.cleaner.Clean(s)
}

// HasMarkup reports whether s carries HTML. Without a cleaner nothing does.
func (f *Formatter) HasMarkup(s string) bool {
	if f.cleaner == nil {
		return false
	}
	return f.cleaner.HasMarkup(s)
}

func (f *Formatter) textPtr(s *string) any {
	if s == nil {
		return nil
	}
	return f.Text(*s)
}

// ParseUserAgentShort classifies a user agent as Edge, Chrome, Firefox,
// Safari or Unknown. Edge is checked first since its agent also names Chrome,
// and Chrome before Safari for the same reason.
func ParseUserAgentShort(ua string) string {
	ua = strings.ToLower(ua)
	switch {
	case ua == "":
		return "Unknown"
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge"):
		return "Edge"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "safari"):
		return "Safari"
	default:
		return "Unknown"
	}
}

// FormatDuration renders a duration in minutes, e.g. "45 menit" or
// "2 jam 5 menit". Negative values clamp to zero.
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	if minutes < 60 {
		return fmt.Sprintf("%d menit", minutes)
	}
	return fmt.Sprintf("%d jam %d menit", minutes/60, minutes%60)
}

// FormatBool renders b as Ya or Tidak
func FormatBool(b bool) string {
	if b {
		return "Ya"
	}
	return "Tidak"
}

// FormatDevice renders a session device as "Desktop - Chrome"
func FormatDevice(info *repository.DeviceInfo) string {
	if info == nil || (info.DeviceType == "" && info.Browser == "") {
		return "Tidak Diketahui"
	}

	deviceType := lookup(deviceTypeLabels, strings.ToLower(info.DeviceType))
	switch {
	case info.Browser == "":
		return deviceType
	case deviceType == "":
		return info.Browser
	default:
		return deviceType + " - " + info.Browser
	}
}

var sensitiveKeys = []string{"password", "token", "secret"}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// FormatValues flattens a JSON object into "key: value; ..." with keys
// sorted. Secret-looking keys are masked. Input that is not valid JSON is
// returned as cleaned text.
func (f *Formatter) FormatValues(raw []byte) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return f.Text(trimmed)
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return f.Text(valueString(decoded))
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := valueString(obj[k])
		if isSensitiveKey(k) {
			v = "[REDACTED]"
		}
		parts = append(parts, k+": "+v)
	}
	return f.Text(strings.Join(parts, "; "))
}

func valueString(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case bool:
		return FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strOrNil(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
