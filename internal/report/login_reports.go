package report

import (
	"context"
	"strings"
	"time"

	"github.com/welldanyogia/servicedesk-audit/internal/repository"
)

// LoginActivitySummary summarizes a LOGIN_ACTIVITY report
type LoginActivitySummary struct {
	Total       int    `json:"total"`
	Successful  int    `json:"successful"`
	Failed      int    `json:"failed"`
	Lockouts    int    `json:"lockouts"`
	SuccessRate string `json:"success_rate"`
}

// FailedLoginsSummary summarizes a FAILED_LOGINS report
type FailedLoginsSummary struct {
	TotalFailed      int            `json:"total_failed"`
	LockoutTriggered int            `json:"lockout_triggered"`
	UniqueEmails     int            `json:"unique_emails"`
	UniqueIPs        int            `json:"unique_ips"`
	ByReason         map[string]int `json:"by_reason"`
	// SuspiciousEmails counts attempts whose submitted email carries HTML
	SuspiciousEmails int `json:"suspicious_emails"`
}

const unknownReason = "UNKNOWN"

func attemptTime(a repository.LoginAttempt) time.Time { return a.AttemptedAt }

func fetchLoginAttempts(failedOnly bool) func(context.Context, Sources, Request) ([]repository.LoginAttempt, error) {
	return func(ctx context.Context, src Sources, req Request) ([]repository.LoginAttempt, error) {
		filter := baseFilter(req)
		filter.Email = req.Filters.Email
		filter.IPAddress = req.Filters.IPAddress
		filter.FailedOnly = failedOnly

		attempts, err := src.Activity.FindLoginAttempts(ctx, filter)
		if err != nil {
			return nil, fetchError("login attempts", err)
		}
		return attempts, nil
	}
}

func failureReason(a repository.LoginAttempt) any {
	if a.FailureReason == nil || *a.FailureReason == "" {
		return nil
	}
	return FailureReasonLabel(*a.FailureReason)
}

var loginActivityReport = pipeline[repository.LoginAttempt]{
	fetch: fetchLoginAttempts(false),
	order: byTimeDesc(attemptTime),
	transform: func(f *Formatter, a repository.LoginAttempt) Record {
		status := "Gagal"
		if a.Success {
			status = "Berhasil"
		}
		return Record{
			"attempted_at":   f.FormatDateTime(a.AttemptedAt),
			"email":          a.Email,
			"status":         status,
			"failure_reason": failureReason(a),
			"ip_address":     strOrNil(a.IPAddress),
			"browser":        ParseUserAgentShort(deref(a.UserAgent)),
			"lock_triggered": FormatBool(a.LockTriggered),
		}
	},
	summarize: func(_ *Formatter, attempts []repository.LoginAttempt) any {
		s := LoginActivitySummary{Total: len(attempts)}
		for _, a := range attempts {
			if a.Success {
				s.Successful++
			} else {
				s.Failed++
			}
			if a.LockTriggered {
				s.Lockouts++
			}
		}
		s.SuccessRate = successRate(s.Successful, s.Total)
		return s
	},
}

var failedLoginsReport = pipeline[repository.LoginAttempt]{
	fetch: fetchLoginAttempts(true),
	order: byTimeDesc(attemptTime),
	transform: func(f *Formatter, a repository.LoginAttempt) Record {
		return Record{
			"attempted_at":   f.FormatDateTime(a.AttemptedAt),
			"email":          a.Email,
			"failure_reason": failureReason(a),
			"ip_address":     strOrNil(a.IPAddress),
			"browser":        ParseUserAgentShort(deref(a.UserAgent)),
			"user_agent":     strOrNil(a.UserAgent),
			"lock_triggered": FormatBool(a.LockTriggered),
		}
	},
	summarize: func(f *Formatter, attempts []repository.LoginAttempt) any {
		s := FailedLoginsSummary{
			TotalFailed: len(attempts),
			ByReason:    map[string]int{},
		}
		emails, ips := distinct{}, distinct{}
		for _, a := range attempts {
			if a.LockTriggered {
				s.LockoutTriggered++
			}
			reason := deref(a.FailureReason)
			if reason == "" {
				reason = unknownReason
			}
			s.ByReason[reason]++
			emails.add(strings.ToLower(a.Email))
			ips.add(deref(a.IPAddress))
			if f.HasMarkup(a.Email) {
				s.SuspiciousEmails++
			}
		}
		s.UniqueEmails = len(emails)
		s.UniqueIPs = len(ips)
		return s
	},
}
