package report

import (
	"context"
	"slices"
	"time"

	"github.com/welldanyogia/servicedesk-audit/internal/repository"
)

// PasswordChangesSummary summarizes a PASSWORD_CHANGES report
type PasswordChangesSummary struct {
	Total       int            `json:"total"`
	UniqueUsers int            `json:"unique_users"`
	ByAction    map[string]int `json:"by_action"`
}

// SecurityEventsSummary summarizes a SECURITY_EVENTS report
type SecurityEventsSummary struct {
	Total       int            `json:"total"`
	UniqueUsers int            `json:"unique_users"`
	UniqueIPs   int            `json:"unique_ips"`
	ByAction    map[string]int `json:"by_action"`
}

func auditTime(e repository.AuditLogEntry) time.Time { return e.CreatedAt }

// fetchAuditLogs reads entries whose action is in actions(req). An empty
// action set matches nothing and skips the query.
func fetchAuditLogs(actions func(Request) []string) func(context.Context, Sources, Request) ([]repository.AuditLogEntry, error) {
	return func(ctx context.Context, src Sources, req Request) ([]repository.AuditLogEntry, error) {
		filter := baseFilter(req)
		filter.UserID = req.Filters.UserID
		filter.IPAddress = req.Filters.IPAddress
		filter.Actions = actions(req)
		if len(filter.Actions) == 0 {
			return []repository.AuditLogEntry{}, nil
		}

		entries, err := src.Activity.FindAuditLogs(ctx, filter)
		if err != nil {
			return nil, fetchError("audit logs", err)
		}
		return entries, nil
	}
}

func transformAuditEntry(f *Formatter, e repository.AuditLogEntry) Record {
	return Record{
		"created_at": f.FormatDateTime(e.CreatedAt),
		"user_name":  strOrNil(e.UserName),
		"user_email": strOrNil(e.UserEmail),
		"action":     ActionLabel(e.Action),
		"ip_address": strOrNil(e.IPAddress),
		"details":    f.FormatValues(e.NewValues),
	}
}

func userKey(e repository.AuditLogEntry) string {
	if e.UserID == nil {
		return ""
	}
	return e.UserID.String()
}

// passwordChangeActions narrows requested actions to the password actions.
// Without a request the whole password set is used.
func passwordChangeActions(req Request) []string {
	if len(req.Filters.Actions) == 0 {
		return passwordActions
	}
	actions := []string{}
	for _, a := range req.Filters.Actions {
		if slices.Contains(passwordActions, a) && !slices.Contains(actions, a) {
			actions = append(actions, a)
		}
	}
	return actions
}

var passwordChangesReport = pipeline[repository.AuditLogEntry]{
	fetch:     fetchAuditLogs(passwordChangeActions),
	order:     byTimeDesc(auditTime),
	transform: transformAuditEntry,
	summarize: func(_ *Formatter, entries []repository.AuditLogEntry) any {
		s := PasswordChangesSummary{Total: len(entries), ByAction: map[string]int{}}
		users := distinct{}
		for _, e := range entries {
			s.ByAction[e.Action]++
			users.add(userKey(e))
		}
		s.UniqueUsers = len(users)
		return s
	},
}

var securityEventsReport = pipeline[repository.AuditLogEntry]{
	fetch: fetchAuditLogs(func(req Request) []string {
		if len(req.Filters.Actions) > 0 {
			return req.Filters.Actions
		}
		return defaultSecurityActions
	}),
	order:     byTimeDesc(auditTime),
	transform: transformAuditEntry,
	summarize: func(_ *Formatter, entries []repository.AuditLogEntry) any {
		s := SecurityEventsSummary{Total: len(entries), ByAction: map[string]int{}}
		users, ips := distinct{}, distinct{}
		for _, e := range entries {
			s.ByAction[e.Action]++
			users.add(userKey(e))
			ips.add(deref(e.IPAddress))
		}
		s.UniqueUsers = len(users)
		s.UniqueIPs = len(ips)
		return s
	},
}
