package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/welldanyogia/servicedesk-audit/internal/metrics"
)

// ActivityRepository defines read access to the append-only activity logs
type ActivityRepository interface {
	FindLoginAttempts(ctx context.Context, filter ActivityFilter) ([]LoginAttempt, error)
	FindAuditLogs(ctx context.Context, filter ActivityFilter) ([]AuditLogEntry, error)
	FindProfileChanges(ctx context.Context, filter ActivityFilter) ([]ProfileChange, error)
	FindSessions(ctx context.Context, filter ActivityFilter) ([]Session, error)
	CountLoginAttemptsByEmail(ctx context.Context, start, end time.Time, failedOnly bool) (map[string]int, error)
}

// ActivityRepo implements ActivityRepository using PostgreSQL
type ActivityRepo struct {
	db *sqlx.DB
}

// NewActivityRepo creates a new ActivityRepo instance
func NewActivityRepo(db *sqlx.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// whereBuilder collects AND-ed predicates written with ? bindvars.
// Slice arguments are expanded by sqlx.In and the query is rebound to
// the driver's placeholder style on build.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (w *whereBuilder) add(clause string, args ...interface{}) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *whereBuilder) build(db *sqlx.DB, base, orderBy string) (string, []interface{}, error) {
	query := base
	if len(w.clauses) > 0 {
		query += " WHERE " + strings.Join(w.clauses, " AND ")
	}
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}

	query, args, err := sqlx.In(query, w.args...)
	if err != nil {
		return "", nil, fmt.Errorf("failed to expand query arguments: %w", err)
	}
	return db.Rebind(query), args, nil
}

// FindLoginAttempts retrieves login attempts inside the filter window,
// newest first. Email matches as a case-insensitive substring.
func (r *ActivityRepo) FindLoginAttempts(ctx context.Context, filter ActivityFilter) ([]LoginAttempt, error) {
	defer metrics.TimeQuery("find_login_attempts")()

	base := `
		SELECT
			la.id,
			la.email,
			la.success,
			la.failure_reason,
			la.ip_address,
			la.user_agent,
			la.attempted_at,
			la.lock_triggered
		FROM login_attempts la
	`

	w := &whereBuilder{}
	w.add("la.attempted_at >= ? AND la.attempted_at <= ?", filter.Start, filter.End)
	if filter.FailedOnly {
		w.add("la.success = false")
	}
	if filter.Email != "" {
		w.add("la.email ILIKE ?", "%"+escapeLike(filter.Email)+"%")
	}
	if filter.IPAddress != "" {
		w.add("la.ip_address = ?", filter.IPAddress)
	}

	query, args, err := w.build(r.db, base, "la.attempted_at DESC")
	if err != nil {
		return nil, err
	}

	attempts := []LoginAttempt{}
	if err := r.db.SelectContext(ctx, &attempts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query login attempts: %w", err)
	}

	return attempts, nil
}

// FindAuditLogs retrieves audit-log entries joined with the acting user,
// newest first. When Actions is set only those actions are returned.
func (r *ActivityRepo) FindAuditLogs(ctx context.Context, filter ActivityFilter) ([]AuditLogEntry, error) {
	defer metrics.TimeQuery("find_audit_logs")()

	base := `
		SELECT
			al.id,
			al.user_id,
			u.name AS user_name,
			u.email AS user_email,
			al.action,
			al.ip_address,
			al.new_values,
			al.created_at
		FROM audit_logs al
		LEFT JOIN users u ON u.id = al.user_id
	`

	w := &whereBuilder{}
	w.add("al.created_at >= ? AND al.created_at <= ?", filter.Start, filter.End)
	if len(filter.Actions) > 0 {
		w.add("al.action IN (?)", filter.Actions)
	}
	if filter.UserID != nil {
		w.add("al.user_id = ?", *filter.UserID)
	}
	if filter.IPAddress != "" {
		w.add("al.ip_address = ?", filter.IPAddress)
	}

	query, args, err := w.build(r.db, base, "al.created_at DESC")
	if err != nil {
		return nil, err
	}

	entries := []AuditLogEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}

	return entries, nil
}

// FindProfileChanges retrieves profile changes joined with the subject user
// and the user who made the change, newest first
func (r *ActivityRepo) FindProfileChanges(ctx context.Context, filter ActivityFilter) ([]ProfileChange, error) {
	defer metrics.TimeQuery("find_profile_changes")()

	base := `
		SELECT
			pc.id,
			pc.user_id,
			u.name AS user_name,
			u.email AS user_email,
			pc.field_name,
			pc.old_value,
			pc.new_value,
			pc.changed_by_id,
			cb.name AS changed_by_name,
			cb.email AS changed_by_email,
			pc.created_at
		FROM profile_change_logs pc
		LEFT JOIN users u ON u.id = pc.user_id
		LEFT JOIN users cb ON cb.id = pc.changed_by_id
	`

	w := &whereBuilder{}
	w.add("pc.created_at >= ? AND pc.created_at <= ?", filter.Start, filter.End)
	if filter.UserID != nil {
		w.add("pc.user_id = ?", *filter.UserID)
	}

	query, args, err := w.build(r.db, base, "pc.created_at DESC")
	if err != nil {
		return nil, err
	}

	changes := []ProfileChange{}
	if err := r.db.SelectContext(ctx, &changes, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query profile changes: %w", err)
	}

	return changes, nil
}

// FindSessions retrieves audit sessions that started inside the filter
// window, newest first
func (r *ActivityRepo) FindSessions(ctx context.Context, filter ActivityFilter) ([]Session, error) {
	defer metrics.TimeQuery("find_sessions")()

	base := `
		SELECT
			s.id,
			s.user_id,
			u.name AS user_name,
			u.email AS user_email,
			s.ip_address,
			s.device_info,
			s.login_at,
			s.logout_at,
			s.logout_reason,
			s.is_active,
			s.is_new_device
		FROM user_audit_sessions s
		LEFT JOIN users u ON u.id = s.user_id
	`

	w := &whereBuilder{}
	w.add("s.login_at >= ? AND s.login_at <= ?", filter.Start, filter.End)
	if filter.UserID != nil {
		w.add("s.user_id = ?", *filter.UserID)
	}
	if filter.IPAddress != "" {
		w.add("s.ip_address = ?", filter.IPAddress)
	}

	query, args, err := w.build(r.db, base, "s.login_at DESC")
	if err != nil {
		return nil, err
	}

	sessions := []Session{}
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}

	return sessions, nil
}

// CountLoginAttemptsByEmail counts login attempts per lower-cased email
// inside [start, end]. When failedOnly is set only unsuccessful attempts count.
func (r *ActivityRepo) CountLoginAttemptsByEmail(ctx context.Context, start, end time.Time, failedOnly bool) (map[string]int, error) {
	defer metrics.TimeQuery("count_login_attempts_by_email")()

	base := `
		SELECT LOWER(la.email) AS email, COUNT(*) AS count
		FROM login_attempts la
	`

	w := &whereBuilder{}
	w.add("la.attempted_at >= ? AND la.attempted_at <= ?", start, end)
	if failedOnly {
		w.add("la.success = false")
	}

	query, args, err := w.build(r.db, base, "")
	if err != nil {
		return nil, err
	}
	query += " GROUP BY LOWER(la.email)"

	var rows []EmailCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count login attempts: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Email] = row.Count
	}

	return counts, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
