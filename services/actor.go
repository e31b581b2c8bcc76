package services

import "content-approval-api/models"

// ActorContext identifies the user performing a workflow operation. It is
// passed explicitly into every call instead of being read from ambient
// session state, so permission checks are testable in isolation. The role
// claim comes from the auth layer and is trusted as-is per call.
type ActorContext struct {
	UserID string
	Role   models.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a ActorContext) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanDecide reports whether the actor may approve, reject or request
// revision on pending submissions.
func (a ActorContext) CanDecide() bool {
	return a.Role.CanDecide()
}

// Owns reports whether the actor is the submission's requester.
func (a ActorContext) Owns(sub *models.Submission) bool {
	return sub != nil && sub.RequesterID == a.UserID
}
