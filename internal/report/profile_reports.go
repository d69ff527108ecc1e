package report

import (
	"context"
	"time"

	"github.com/welldanyogia/servicedesk-audit/internal/repository"
)

// ProfileChangesSummary summarizes a PROFILE_CHANGES report
type ProfileChangesSummary struct {
	Total        int            `json:"total"`
	UniqueUsers  int            `json:"unique_users"`
	SelfChanges  int            `json:"self_changes"`
	AdminChanges int            `json:"admin_changes"`
	ByField      map[string]int `json:"by_field"`
}

var profileChangesReport = pipeline[repository.ProfileChange]{
	fetch: func(ctx context.Context, src Sources, req Request) ([]repository.ProfileChange, error) {
		filter := baseFilter(req)
		filter.UserID = req.Filters.UserID

		changes, err := src.Activity.FindProfileChanges(ctx, filter)
		if err != nil {
			return nil, fetchError("profile changes", err)
		}
		return changes, nil
	},
	order: byTimeDesc(func(c repository.ProfileChange) time.Time { return c.CreatedAt }),
	transform: func(f *Formatter, c repository.ProfileChange) Record {
		changeType := "Admin"
		if c.ChangedByID == c.UserID {
			changeType = "Sendiri"
		}
		changedBy := strOrNil(c.ChangedByName)
		if changedBy == nil {
			changedBy = strOrNil(c.ChangedByEmail)
		}
		return Record{
			"created_at":  f.FormatDateTime(c.CreatedAt),
			"user_name":   strOrNil(c.UserName),
			"user_email":  strOrNil(c.UserEmail),
			"field":       FieldLabel(c.FieldName),
			"old_value":   f.textPtr(c.OldValue),
			"new_value":   f.textPtr(c.NewValue),
			"changed_by":  changedBy,
			"change_type": changeType,
		}
	},
	summarize: func(_ *Formatter, changes []repository.ProfileChange) any {
		s := ProfileChangesSummary{Total: len(changes), ByField: map[string]int{}}
		users := distinct{}
		for _, c := range changes {
			if c.ChangedByID == c.UserID {
				s.SelfChanges++
			} else {
				s.AdminChanges++
			}
			s.ByField[c.FieldName]++
			users.add(c.UserID.String())
		}
		s.UniqueUsers = len(users)
		return s
	},
}
