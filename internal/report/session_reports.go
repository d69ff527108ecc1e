package report

import (
	"context"
	"time"

	"github.com/welldanyogia/servicedesk-audit/internal/repository"
)

// SessionHistorySummary summarizes a SESSION_HISTORY report
type SessionHistorySummary struct {
	Total           int    `json:"total"`
	ActiveSessions  int    `json:"active_sessions"`
	NewDeviceLogins int    `json:"new_device_logins"`
	UniqueUsers     int    `json:"unique_users"`
	AverageDuration string `json:"average_duration"`
}

// sessionMinutes returns the whole minutes of an ended session
func sessionMinutes(s repository.Session) (int, bool) {
	if s.LogoutAt == nil {
		return 0, false
	}
	return int(s.LogoutAt.Sub(s.LoginAt).Minutes()), true
}

var sessionHistoryReport = pipeline[repository.Session]{
	fetch: func(ctx context.Context, src Sources, req Request) ([]repository.Session, error) {
		filter := baseFilter(req)
		filter.UserID = req.Filters.UserID
		filter.IPAddress = req.Filters.IPAddress

		sessions, err := src.Activity.FindSessions(ctx, filter)
		if err != nil {
			return nil, fetchError("sessions", err)
		}
		return sessions, nil
	},
	order: byTimeDesc(func(s repository.Session) time.Time { return s.LoginAt }),
	transform: func(f *Formatter, s repository.Session) Record {
		var duration, logoutReason any
		if minutes, ended := sessionMinutes(s); ended {
			duration = FormatDuration(minutes)
		}
		if s.LogoutReason != nil && *s.LogoutReason != "" {
			logoutReason = LogoutReasonLabel(*s.LogoutReason)
		}
		status := "Berakhir"
		if s.IsActive {
			status = "Aktif"
		}
		return Record{
			"login_at":      f.FormatDateTime(s.LoginAt),
			"logout_at":     f.formatDateTimePtr(s.LogoutAt),
			"user_name":     strOrNil(s.UserName),
			"user_email":    strOrNil(s.UserEmail),
			"ip_address":    strOrNil(s.IPAddress),
			"device":        f.Text(FormatDevice(s.Device())),
			"duration":      duration,
			"logout_reason": logoutReason,
			"status":        status,
			"new_device":    FormatBool(s.IsNewDevice),
		}
	},
	summarize: func(_ *Formatter, sessions []repository.Session) any {
		s := SessionHistorySummary{Total: len(sessions)}
		users := distinct{}
		totalMinutes, ended := 0, 0
		for _, sess := range sessions {
			if sess.IsActive {
				s.ActiveSessions++
			}
			if sess.IsNewDevice {
				s.NewDeviceLogins++
			}
			users.add(sess.UserID.String())
			if minutes, ok := sessionMinutes(sess); ok {
				totalMinutes += max(minutes, 0)
				ended++
			}
		}
		s.UniqueUsers = len(users)
		if ended > 0 {
			s.AverageDuration = FormatDuration(totalMinutes / ended)
		} else {
			s.AverageDuration = FormatDuration(0)
		}
		return s
	},
}
