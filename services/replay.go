package services

import (
	"fmt"

	"content-approval-api/models"
)

// ReplayedState is the submission state implied by folding an audit trail.
type ReplayedState struct {
	Status     models.SubmissionStatus
	ApproverID *string
}

// ReplayStatus folds a submission's audit entries in order and returns the
// status and approver they imply. The stored submission row must always
// match this fold; the integrity endpoint and the tests rely on that.
func ReplayStatus(entries []models.AuditEntry) (ReplayedState, error) {
	if len(entries) == 0 {
		return ReplayedState{}, fmt.Errorf("empty audit trail")
	}
	if entries[0].Action != models.ActionCreated {
		return ReplayedState{}, fmt.Errorf("audit trail starts with %q, want %q", entries[0].Action, models.ActionCreated)
	}

	state := ReplayedState{Status: models.StatusPending}
	for i, entry := range entries[1:] {
		next, ok := models.NextStatus(state.Status, entry.Action)
		if !ok {
			return ReplayedState{}, fmt.Errorf("entry %d: action %q illegal from status %s", i+1, entry.Action, state.Status)
		}
		if entry.Action == models.ActionApproved || entry.Action == models.ActionRejected {
			actor := entry.UserID
			state.ApproverID = &actor
		}
		state.Status = next
	}
	return state, nil
}
