package report

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// GenerateRequest is the body of POST /api/v1/reports/audit
type GenerateRequest struct {
	Type      string        `json:"type" validate:"required,max=64"`
	StartDate string        `json:"start_date" validate:"required"`
	EndDate   string        `json:"end_date" validate:"required"`
	Filters   FilterRequest `json:"filters"`
	Format    string        `json:"format" validate:"omitempty,oneof=json csv xlsx"`
	Archive   bool          `json:"archive"`
}

// FilterRequest holds the optional report filters
type FilterRequest struct {
	UserID    string   `json:"user_id" validate:"omitempty,uuid"`
	Actions   []string `json:"actions" validate:"omitempty,max=50,dive,required,max=64"`
	IPAddress string   `json:"ip_address" validate:"omitempty,ip"`
	Email     string   `json:"email" validate:"omitempty,max=255"`
}

// Validator instance for request validation
var validate *validator.Validate

func init() {
	validate = validator.New()
	// report field errors under their JSON names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// validationDetails maps validator errors to field → messages
func validationDetails(err error) map[string][]string {
	details := map[string][]string{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		details["body"] = []string{err.Error()}
		return details
	}

	for _, fe := range verrs {
		details[fe.Field()] = append(details[fe.Field()], fieldMessage(fe))
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid UUID"
	case "ip":
		return "must be a valid IP address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must not exceed " + fe.Param()
	default:
		return "is invalid"
	}
}

// ToRequest validates the body and converts it into a Request. Calendar
// dates are read in loc: a start date begins at 00:00 and an end date ends
// at 23:59:59.999. RFC3339 timestamps are taken as given.
func (g *GenerateRequest) ToRequest(loc *time.Location) (Request, map[string][]string) {
	if err := validate.Struct(g); err != nil {
		return Request{}, validationDetails(err)
	}

	details := map[string][]string{}

	start, err := parseDate(g.StartDate, loc, false)
	if err != nil {
		details["start_date"] = []string{"must be YYYY-MM-DD or RFC3339"}
	}
	end, err := parseDate(g.EndDate, loc, true)
	if err != nil {
		details["end_date"] = []string{"must be YYYY-MM-DD or RFC3339"}
	}

	var userID *uuid.UUID
	if g.Filters.UserID != "" {
		id, err := uuid.Parse(g.Filters.UserID)
		if err != nil {
			details["user_id"] = []string{"must be a valid UUID"}
		} else {
			userID = &id
		}
	}

	if len(details) > 0 {
		return Request{}, details
	}

	format := Format(strings.ToLower(g.Format))
	if format == "" {
		format = FormatJSON
	}

	return Request{
		Type:      ReportType(strings.ToUpper(strings.TrimSpace(g.Type))),
		DateRange: DateRange{Start: start, End: end},
		Filters: Filters{
			UserID:    userID,
			Actions:   g.Filters.Actions,
			IPAddress: g.Filters.IPAddress,
			Email:     strings.TrimSpace(g.Filters.Email),
		},
		Format: format,
	}, nil
}

func parseDate(s string, loc *time.Location, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Millisecond)
		}
		return t, nil
	}

	return time.Parse(time.RFC3339, s)
}

// splitList splits a comma-separated query value, dropping empty items
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
