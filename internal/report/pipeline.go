package report

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/welldanyogia/servicedesk-audit/internal/repository"
)

// ActivityReader reads the append-only activity logs
type ActivityReader interface {
	FindLoginAttempts(ctx context.Context, filter repository.ActivityFilter) ([]repository.LoginAttempt, error)
	FindAuditLogs(ctx context.Context, filter repository.ActivityFilter) ([]repository.AuditLogEntry, error)
	FindProfileChanges(ctx context.Context, filter repository.ActivityFilter) ([]repository.ProfileChange, error)
	FindSessions(ctx context.Context, filter repository.ActivityFilter) ([]repository.Session, error)
	CountLoginAttemptsByEmail(ctx context.Context, start, end time.Time, failedOnly bool) (map[string]int, error)
}

// UserReader reads users with their audit-log action counts
type UserReader interface {
	ListActivity(ctx context.Context, start, end time.Time, userID *uuid.UUID) ([]repository.UserActivity, error)
}

// Sources are the readers a generator fetches from
type Sources struct {
	Activity ActivityReader
	Users    UserReader
}

// generator produces the rows and summary of one report kind
type generator interface {
	generate(ctx context.Context, src Sources, f *Formatter, req Request) ([]Record, any, error)
}

// pipeline drives fetch, order, transform and summarize for rows of type T
type pipeline[T any] struct {
	fetch     func(ctx context.Context, src Sources, req Request) ([]T, error)
	order     func(rows []T)
	transform func(f *Formatter, row T) Record
	summarize func(f *Formatter, rows []T) any
}

func (p pipeline[T]) generate(ctx context.Context, src Sources, f *Formatter, req Request) ([]Record, any, error) {
	rows, err := p.fetch(ctx, src, req)
	if err != nil {
		return nil, nil, err
	}
	if p.order != nil {
		p.order(rows)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, p.transform(f, row))
	}

	return records, p.summarize(f, rows), nil
}

var registry = map[ReportType]generator{
	LoginActivity:   loginActivityReport,
	FailedLogins:    failedLoginsReport,
	PasswordChanges: passwordChangesReport,
	UserActivity:    userActivityReport,
	SecurityEvents:  securityEventsReport,
	ProfileChanges:  profileChangesReport,
	SessionHistory:  sessionHistoryReport,
}

// byTimeDesc sorts rows newest first, keeping the reader's order on ties
func byTimeDesc[T any](at func(T) time.Time) func([]T) {
	return func(rows []T) {
		slices.SortStableFunc(rows, func(a, b T) int {
			return at(b).Compare(at(a))
		})
	}
}

func baseFilter(req Request) repository.ActivityFilter {
	return repository.ActivityFilter{
		Start: req.DateRange.Start,
		End:   req.DateRange.End,
	}
}

func fetchError(what string, err error) error {
	return fmt.Errorf("failed to fetch %s: %w", what, err)
}

// distinct counts the distinct non-empty keys
type distinct map[string]struct{}

func (d distinct) add(key string) {
	if key != "" {
		d[key] = struct{}{}
	}
}

func successRate(successful, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(successful)*100/float64(total))
}
