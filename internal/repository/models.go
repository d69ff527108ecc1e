package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents a service-desk account as read by the report pipeline
type User struct {
	ID          uuid.UUID  `db:"id"`
	Name        string     `db:"name"`
	Email       string     `db:"email"`
	Role        string     `db:"role"`
	IsActive    bool       `db:"is_active"`
	LastLoginAt *time.Time `db:"last_login_at"`
}

// UserActivity is a user together with the number of audit-log actions
// recorded for them inside a reporting window
type UserActivity struct {
	User
	TotalActions int `db:"total_actions"`
}

// LoginAttempt represents a single authentication attempt. Rows are append-only.
type LoginAttempt struct {
	ID            uuid.UUID `db:"id"`
	Email         string    `db:"email"`
	Success       bool      `db:"success"`
	FailureReason *string   `db:"failure_reason"`
	IPAddress     *string   `db:"ip_address"`
	UserAgent     *string   `db:"user_agent"`
	AttemptedAt   time.Time `db:"attempted_at"`
	LockTriggered bool      `db:"lock_triggered"`
}

// AuditLogEntry represents an audit-log row joined with the acting user
type AuditLogEntry struct {
	ID        uuid.UUID  `db:"id"`
	UserID    *uuid.UUID `db:"user_id"`
	UserName  *string    `db:"user_name"`
	UserEmail *string    `db:"user_email"`
	Action    string     `db:"action"`
	IPAddress *string    `db:"ip_address"`
	NewValues []byte     `db:"new_values"` // raw JSON, may be nil
	CreatedAt time.Time  `db:"created_at"`
}

// ProfileChange represents a profile change log row joined with the subject
// user and the user who made the change
type ProfileChange struct {
	ID             uuid.UUID `db:"id"`
	UserID         uuid.UUID `db:"user_id"`
	UserName       *string   `db:"user_name"`
	UserEmail      *string   `db:"user_email"`
	FieldName      string    `db:"field_name"`
	OldValue       *string   `db:"old_value"`
	NewValue       *string   `db:"new_value"`
	ChangedByID    uuid.UUID `db:"changed_by_id"`
	ChangedByName  *string   `db:"changed_by_name"`
	ChangedByEmail *string   `db:"changed_by_email"`
	CreatedAt      time.Time `db:"created_at"`
}

// DeviceInfo is the device fingerprint stored with a session
type DeviceInfo struct {
	DeviceType string `json:"deviceType"`
	Browser    string `json:"browser"`
	OS         string `json:"os,omitempty"`
}

// Session represents a user audit session joined with its user.
// A session is mutated once, on logout.
type Session struct {
	ID           uuid.UUID  `db:"id"`
	UserID       uuid.UUID  `db:"user_id"`
	UserName     *string    `db:"user_name"`
	UserEmail    *string    `db:"user_email"`
	IPAddress    *string    `db:"ip_address"`
	DeviceInfo   []byte     `db:"device_info"` // raw JSON, may be nil
	LoginAt      time.Time  `db:"login_at"`
	LogoutAt     *time.Time `db:"logout_at"`
	LogoutReason *string    `db:"logout_reason"`
	IsActive     bool       `db:"is_active"`
	IsNewDevice  bool       `db:"is_new_device"`
}

// Device decodes the stored device info. A missing or malformed value yields nil.
func (s *Session) Device() *DeviceInfo {
	if len(s.DeviceInfo) == 0 || string(s.DeviceInfo) == "null" {
		return nil
	}
	var info DeviceInfo
	if err := json.Unmarshal(s.DeviceInfo, &info); err != nil {
		return nil
	}
	return &info
}

// ActivityFilter holds the predicate shared by every log query.
// Start and End are inclusive; the remaining fields are optional and each
// query only honours the ones that exist on its table.
type ActivityFilter struct {
	Start     time.Time
	End       time.Time
	UserID    *uuid.UUID
	Email     string
	IPAddress string
	Actions   []string
	// FailedOnly restricts login attempt queries to unsuccessful attempts
	FailedOnly bool
}

// EmailCount is one row of a group-by-email aggregation
type EmailCount struct {
	Email string `db:"email"`
	Count int    `db:"count"`
}
