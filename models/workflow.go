package models

import "fmt"

// SubmissionStatus is the closed set of submission lifecycle states.
type SubmissionStatus string

const (
	StatusPending           SubmissionStatus = "Pending"
	StatusApproved          SubmissionStatus = "Approved"
	StatusRejected          SubmissionStatus = "Rejected"
	StatusRevisionRequested SubmissionStatus = "RevisionRequested"
)

// AuditAction is the closed set of state-changing actions recorded in the audit log.
type AuditAction string

const (
	ActionCreated           AuditAction = "created"
	ActionApproved          AuditAction = "approved"
	ActionRejected          AuditAction = "rejected"
	ActionRevisionRequested AuditAction = "revision_requested"
	ActionCommentAdded      AuditAction = "comment_added"
	ActionResubmitted       AuditAction = "resubmitted"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleRequester Role = "Requester"
	RoleApprover  Role = "Approver"
	RoleAdmin     Role = "Admin"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusRevisionRequested:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s SubmissionStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (a AuditAction) Valid() bool {
	switch a {
	case ActionCreated, ActionApproved, ActionRejected,
		ActionRevisionRequested, ActionCommentAdded, ActionResubmitted:
		return true
	}
	return false
}

// Description returns the human-readable label shown in history timelines.
func (a AuditAction) Description() string {
	switch a {
	case ActionCreated:
		return "Submission created"
	case ActionApproved:
		return "Submission approved"
	case ActionRejected:
		return "Submission rejected"
	case ActionRevisionRequested:
		return "Revision requested"
	case ActionCommentAdded:
		return "Comment or files added"
	case ActionResubmitted:
		return "Resubmitted for approval"
	}
	return string(a)
}

func (r Role) Valid() bool {
	switch r {
	case RoleRequester, RoleApprover, RoleAdmin:
		return true
	}
	return false
}

// CanDecide reports whether the role may approve, reject or request revision.
func (r Role) CanDecide() bool {
	return r == RoleApprover || r == RoleAdmin
}

// ParseStatus rejects any value outside the status enumeration. A persisted
// value that fails here is a data-integrity error, not a new state.
func ParseStatus(s string) (SubmissionStatus, error) {
	status := SubmissionStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown submission status %q", s)
	}
	return status, nil
}

// ParseAction rejects any value outside the action enumeration.
func ParseAction(s string) (AuditAction, error) {
	action := AuditAction(s)
	if !action.Valid() {
		return "", fmt.Errorf("unknown audit action %q", s)
	}
	return action, nil
}

// ParseRole rejects any value outside the role enumeration.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// transitions maps each state to the actions legal from it and the state each
// action leads to. comment_added keeps the submission in RevisionRequested.
var transitions = map[SubmissionStatus]map[AuditAction]SubmissionStatus{
	StatusPending: {
		ActionApproved:          StatusApproved,
		ActionRejected:          StatusRejected,
		ActionRevisionRequested: StatusRevisionRequested,
	},
	StatusRevisionRequested: {
		ActionCommentAdded: StatusRevisionRequested,
		ActionResubmitted:  StatusPending,
	},
	StatusApproved: {},
	StatusRejected: {},
}

// NextStatus returns the state reached by applying action from the given
// state, or false when the transition is illegal.
func NextStatus(from SubmissionStatus, action AuditAction) (SubmissionStatus, bool) {
	next, ok := transitions[from][action]
	return next, ok
}
