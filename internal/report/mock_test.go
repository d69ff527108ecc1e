package report

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/welldanyogia/servicedesk-audit/internal/repository"
	"github.com/welldanyogia/servicedesk-audit/internal/sanitizer"
)

var (
	testLoc = time.FixedZone("WIB", 7*60*60)
	testNow = time.Date(2026, 10, 19, 5, 0, 0, 0, time.UTC)
)

// MockActivityReader implements ActivityReader over in-memory rows.
// It applies the same predicates the SQL queries do but returns rows in
// insertion order, so tests can check the pipeline's own ordering.
type MockActivityReader struct {
	mu       sync.Mutex
	attempts []repository.LoginAttempt
	audits   []repository.AuditLogEntry
	changes  []repository.ProfileChange
	sessions []repository.Session
	err      error

	calls   int
	filters []repository.ActivityFilter
}

func (m *MockActivityReader) record(filter repository.ActivityFilter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.filters = append(m.filters, filter)
	return m.err
}

func (m *MockActivityReader) lastFilter() repository.ActivityFilter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.filters) == 0 {
		return repository.ActivityFilter{}
	}
	return m.filters[len(m.filters)-1]
}

func inRange(t time.Time, f repository.ActivityFilter) bool {
	return !t.Before(f.Start) && !t.After(f.End)
}

func (m *MockActivityReader) FindLoginAttempts(ctx context.Context, filter repository.ActivityFilter) ([]repository.LoginAttempt, error) {
	if err := m.record(filter); err != nil {
		return nil, err
	}
	out := []repository.LoginAttempt{}
	for _, a := range m.attempts {
		if !inRange(a.AttemptedAt, filter) || (filter.FailedOnly && a.Success) {
			continue
		}
		if filter.Email != "" && !strings.Contains(strings.ToLower(a.Email), strings.ToLower(filter.Email)) {
			continue
		}
		if filter.IPAddress != "" && deref(a.IPAddress) != filter.IPAddress {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *MockActivityReader) FindAuditLogs(ctx context.Context, filter repository.ActivityFilter) ([]repository.AuditLogEntry, error) {
	if err := m.record(filter); err != nil {
		return nil, err
	}
	out := []repository.AuditLogEntry{}
	for _, e := range m.audits {
		if !inRange(e.CreatedAt, filter) {
			continue
		}
		if len(filter.Actions) > 0 && !slices.Contains(filter.Actions, e.Action) {
			continue
		}
		if filter.UserID != nil && (e.UserID == nil || *e.UserID != *filter.UserID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *MockActivityReader) FindProfileChanges(ctx context.Context, filter repository.ActivityFilter) ([]repository.ProfileChange, error) {
	if err := m.record(filter); err != nil {
		return nil, err
	}
	out := []repository.ProfileChange{}
	for _, c := range m.changes {
		if !inRange(c.CreatedAt, filter) {
			continue
		}
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *MockActivityReader) FindSessions(ctx context.Context, filter repository.ActivityFilter) ([]repository.Session, error) {
	if err := m.record(filter); err != nil {
		return nil, err
	}
	out := []repository.Session{}
	for _, s := range m.sessions {
		if !inRange(s.LoginAt, filter) {
			continue
		}
		if filter.UserID != nil && s.UserID != *filter.UserID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *MockActivityReader) CountLoginAttemptsByEmail(ctx context.Context, start, end time.Time, failedOnly bool) (map[string]int, error) {
	if err := m.record(repository.ActivityFilter{Start: start, End: end, FailedOnly: failedOnly}); err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, a := range m.attempts {
		if a.AttemptedAt.Before(start) || a.AttemptedAt.After(end) || (failedOnly && a.Success) {
			continue
		}
		counts[strings.ToLower(a.Email)]++
	}
	return counts, nil
}

// MockUserReader implements UserReader
type MockUserReader struct {
	users []repository.UserActivity
	err   error
	calls int
}

func (m *MockUserReader) ListActivity(ctx context.Context, start, end time.Time, userID *uuid.UUID) ([]repository.UserActivity, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := []repository.UserActivity{}
	for _, u := range m.users {
		if userID != nil && u.ID != *userID {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// MockArchiver implements Archiver
type MockArchiver struct {
	uploads   map[string][]byte
	types     map[string]string
	uploadErr error
}

func NewMockArchiver() *MockArchiver {
	return &MockArchiver{uploads: map[string][]byte{}, types: map[string]string{}}
}

func (m *MockArchiver) Upload(ctx context.Context, key, contentType string, body []byte) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.uploads[key] = body
	m.types[key] = contentType
	return nil
}

func (m *MockArchiver) GetPresignedURL(ctx context.Context, key string) (string, time.Duration, error) {
	return "https://archive.example.com/" + key + "?sig=test", time.Hour, nil
}

func newTestService(activity *MockActivityReader, users *MockUserReader, archive Archiver) *Service {
	if activity == nil {
		activity = &MockActivityReader{}
	}
	if users == nil {
		users = &MockUserReader{}
	}
	cfg := ServiceConfig{
		Activity:  activity,
		Users:     users,
		Location:  testLoc,
		Sanitizer: sanitizer.NewTextSanitizer(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if archive != nil {
		cfg.Archive = archive
	}
	svc := NewService(cfg)
	svc.now = func() time.Time { return testNow }
	return svc
}

// octoberRange covers the whole of October 2026 in the test zone
func octoberRange() DateRange {
	return DateRange{
		Start: time.Date(2026, 10, 1, 0, 0, 0, 0, testLoc),
		End:   time.Date(2026, 10, 31, 23, 59, 59, 999e6, testLoc),
	}
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 10, day, hour, minute, 0, 0, testLoc)
}

func ptr[T any](v T) *T { return &v }
