package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/welldanyogia/servicedesk-audit/internal/metrics"
)

// UserRepository defines the read access the report pipeline needs on users
type UserRepository interface {
	ListActivity(ctx context.Context, start, end time.Time, userID *uuid.UUID) ([]UserActivity, error)
}

// userRepository implements UserRepository using PostgreSQL
type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// ListActivity returns users with the number of audit-log actions they
// performed between start and end (inclusive), most active first.
// When userID is set only that user is returned.
func (r *userRepository) ListActivity(ctx context.Context, start, end time.Time, userID *uuid.UUID) ([]UserActivity, error) {
	defer metrics.TimeQuery("list_user_activity")()

	query := `
		SELECT
			u.id,
			u.name,
			u.email,
			u.role,
			u.is_active,
			u.last_login_at,
			(
				SELECT COUNT(*)
				FROM audit_logs a
				WHERE a.user_id = u.id AND a.created_at >= $1 AND a.created_at <= $2
			) AS total_actions
		FROM users u
	`
	args := []interface{}{start, end}

	if userID != nil {
		query += " WHERE u.id = $3"
		args = append(args, *userID)
	}

	query += " ORDER BY total_actions DESC, u.name ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user activity: %w", err)
	}
	defer rows.Close()

	users := []UserActivity{}
	for rows.Next() {
		var u UserActivity
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.Role,
			&u.IsActive,
			&u.LastLoginAt,
			&u.TotalActions,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user activity: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user activity: %w", err)
	}

	return users, nil
}
