package services

import (
	"context"
	"time"

	"content-approval-api/models"
)

// TransitionRecord bundles the effects of one workflow transition: exactly
// one status write guarded by FromStatus, zero-or-more attachment inserts,
// an optional comment insert and exactly one audit entry. The store applies
// the whole record atomically or not at all.
type TransitionRecord struct {
	SubmissionID string
	FromStatus   models.SubmissionStatus
	NewStatus    models.SubmissionStatus
	ApproverID   *string    // set on approve/reject, nil otherwise
	ApprovedAt   *time.Time // mutually exclusive with RejectedAt
	RejectedAt   *time.Time
	Attachments  []models.Attachment
	Comment      *models.Comment
	Entry        models.AuditEntry
}

// WorkflowStore is the persistence contract the workflow engine runs
// against. Implementations must serialize transitions per submission: the
// status write is a compare-and-swap on FromStatus, so of two concurrent
// transitions exactly one commits and the loser observes the changed state.
type WorkflowStore interface {
	// GetUser returns the user or a NotFound workflow error.
	GetUser(ctx context.Context, id string) (*models.User, error)

	// GetSubmission returns the submission or a NotFound workflow error.
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)

	// CreateSubmission atomically inserts the submission, its initial
	// attachments and the "created" audit entry (seq 1).
	CreateSubmission(ctx context.Context, sub *models.Submission, files []models.Attachment, entry *models.AuditEntry) error

	// ApplyTransition commits the record atomically. The returned entry
	// carries its assigned per-submission sequence number. A lost
	// compare-and-swap yields an InvalidTransition error (or NotFound when
	// the row disappeared).
	ApplyTransition(ctx context.Context, rec *TransitionRecord) (*models.Submission, *models.AuditEntry, error)

	// History returns the submission's audit entries ordered ascending by
	// (created_at, seq). Missing submission yields a NotFound error.
	History(ctx context.Context, submissionID string) ([]models.AuditEntry, error)
}
