package report

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/welldanyogia/servicedesk-audit/internal/repository"
)

// UserActivitySummary summarizes a USER_ACTIVITY report
type UserActivitySummary struct {
	TotalUsers         int `json:"total_users"`
	ActiveUsers        int `json:"active_users"`
	UsersWithActivity  int `json:"users_with_activity"`
	TotalActions       int `json:"total_actions"`
	TotalLoginAttempts int `json:"total_login_attempts"`
	TotalFailedLogins  int `json:"total_failed_logins"`
}

type userActivityRow struct {
	repository.UserActivity
	LoginAttempts int
	FailedLogins  int
}

// fetchUserActivity joins login attempt counts onto users by lower-cased
// email. Attempts made under an address the user no longer has are not
// attributed to them.
func fetchUserActivity(ctx context.Context, src Sources, req Request) ([]userActivityRow, error) {
	start, end := req.DateRange.Start, req.DateRange.End

	users, err := src.Users.ListActivity(ctx, start, end, req.Filters.UserID)
	if err != nil {
		return nil, fetchError("user activity", err)
	}
	attempts, err := src.Activity.CountLoginAttemptsByEmail(ctx, start, end, false)
	if err != nil {
		return nil, fetchError("login attempt counts", err)
	}
	failed, err := src.Activity.CountLoginAttemptsByEmail(ctx, start, end, true)
	if err != nil {
		return nil, fetchError("failed login counts", err)
	}

	rows := make([]userActivityRow, 0, len(users))
	for _, u := range users {
		email := strings.ToLower(u.Email)
		rows = append(rows, userActivityRow{
			UserActivity:  u,
			LoginAttempts: attempts[email],
			FailedLogins:  failed[email],
		})
	}
	return rows, nil
}

var userActivityReport = pipeline[userActivityRow]{
	fetch: fetchUserActivity,
	order: func(rows []userActivityRow) {
		slices.SortStableFunc(rows, func(a, b userActivityRow) int {
			if c := cmp.Compare(b.TotalActions, a.TotalActions); c != 0 {
				return c
			}
			return strings.Compare(a.Name, b.Name)
		})
	},
	transform: func(f *Formatter, u userActivityRow) Record {
		status := "Nonaktif"
		if u.IsActive {
			status = "Aktif"
		}
		return Record{
			"name":           u.Name,
			"email":          u.Email,
			"role":           RoleLabel(u.Role),
			"status":         status,
			"last_login_at":  f.formatDateTimePtr(u.LastLoginAt),
			"total_actions":  u.TotalActions,
			"login_attempts": u.LoginAttempts,
			"failed_logins":  u.FailedLogins,
		}
	},
	summarize: func(_ *Formatter, rows []userActivityRow) any {
		s := UserActivitySummary{TotalUsers: len(rows)}
		for _, u := range rows {
			if u.IsActive {
				s.ActiveUsers++
			}
			if u.TotalActions > 0 {
				s.UsersWithActivity++
			}
			s.TotalActions += u.TotalActions
			s.TotalLoginAttempts += u.LoginAttempts
			s.TotalFailedLogins += u.FailedLogins
		}
		return s
	},
}
