package services

import (
	"context"
	"io"
	"strings"
	"time"

	"content-approval-api/models"

	"github.com/google/uuid"
)

// MaxUploadBytes caps a single attachment upload.
const MaxUploadBytes = 25 << 20

var allowedUploadTypes = map[string]bool{
	"application/pdf":    true,
	"image/jpeg":         true,
	"image/jpg":          true,
	"image/png":          true,
	"image/gif":          true,
	"image/webp":         true,
	"video/mp4":          true,
	"video/quicktime":    true,
	"video/webm":         true,
	"text/plain":         true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// FileInput is one uploaded file handed to the workflow engine. The engine
// pushes the content to the object store and persists only the handle.
type FileInput struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// CreateInput is the payload for creating a submission.
type CreateInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Files       []FileInput
}

// WorkflowService enforces the submission lifecycle: legal status
// transitions, role and ownership checks, and atomic recording of an audit
// entry alongside every submission mutation. All state changes go through
// it; presentation code never writes submissions directly.
type WorkflowService struct {
	store    WorkflowStore
	objects  ObjectStore
	notifier Notifier
}

func NewWorkflowService(store WorkflowStore, objects ObjectStore) *WorkflowService {
	return &WorkflowService{store: store, objects: objects}
}

// SetNotifier registers an observer called after each committed audit entry.
// Notification delivery is outside the transaction; failures there never
// fail the workflow operation.
func (s *WorkflowService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Create makes a new submission in Pending status with no approver.
func (s *WorkflowService) Create(ctx context.Context, actor ActorContext, input CreateInput) (*models.Submission, *models.AuditEntry, error) {
	if actor.Role != models.RoleRequester && !actor.IsAdmin() {
		return nil, nil, forbiddenError("only requesters can create submissions")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" {
		return nil, nil, validationError("title is required")
	}
	if description == "" {
		return nil, nil, validationError("description is required")
	}
	if err := validateFiles(input.Files); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	sub := &models.Submission{
		SubmissionID: uuid.NewString(),
		Title:        title,
		Description:  description,
		Status:       models.StatusPending,
		RequesterID:  actor.UserID,
		DueDate:      input.DueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	attachments, err := s.uploadAll(ctx, actor, sub.SubmissionID, input.Files, now)
	if err != nil {
		return nil, nil, err
	}

	entry := &models.AuditEntry{
		EntryID:      uuid.NewString(),
		SubmissionID: sub.SubmissionID,
		UserID:       actor.UserID,
		Action:       models.ActionCreated,
		Details: models.JSONMap{
			"new_status": string(models.StatusPending),
			"files":      len(attachments),
		},
		Seq:       1,
		CreatedAt: now,
	}

	if err := s.store.CreateSubmission(ctx, sub, attachments, entry); err != nil {
		s.removeAll(ctx, attachments)
		return nil, nil, err
	}

	sub.Attachments = attachments
	s.notify(sub, entry)
	return sub, entry, nil
}

// Approve moves a pending submission to Approved and records the deciding
// approver. The comment is optional.
func (s *WorkflowService) Approve(ctx context.Context, actor ActorContext, submissionID, comment string) (*models.Submission, *models.AuditEntry, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.CanDecide() {
		return nil, nil, forbiddenError("only approvers can approve submissions")
	}
	next, ok := models.NextStatus(sub.Status, models.ActionApproved)
	if !ok {
		return nil, nil, invalidTransitionError("cannot approve submission in status %s", sub.Status)
	}

	now := time.Now().UTC()
	rec := &TransitionRecord{
		SubmissionID: sub.SubmissionID,
		FromStatus:   sub.Status,
		NewStatus:    next,
		ApproverID:   &actor.UserID,
		ApprovedAt:   &now,
		Entry:        s.newEntry(sub, actor, models.ActionApproved, comment, next, now),
	}
	return s.apply(ctx, rec)
}

// Reject moves a pending submission to Rejected. A non-empty comment is
// required so the requester knows why.
func (s *WorkflowService) Reject(ctx context.Context, actor ActorContext, submissionID, comment string) (*models.Submission, *models.AuditEntry, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.CanDecide() {
		return nil, nil, forbiddenError("only approvers can reject submissions")
	}
	next, ok := models.NextStatus(sub.Status, models.ActionRejected)
	if !ok {
		return nil, nil, invalidTransitionError("cannot reject submission in status %s", sub.Status)
	}
	if strings.TrimSpace(comment) == "" {
		return nil, nil, validationError("comment required")
	}

	now := time.Now().UTC()
	rec := &TransitionRecord{
		SubmissionID: sub.SubmissionID,
		FromStatus:   sub.Status,
		NewStatus:    next,
		ApproverID:   &actor.UserID,
		RejectedAt:   &now,
		Entry:        s.newEntry(sub, actor, models.ActionRejected, comment, next, now),
	}
	return s.apply(ctx, rec)
}

// RequestRevision sends a pending submission back to its requester for
// rework. A non-empty comment is required and is also stored as a revision
// comment for the discussion thread.
func (s *WorkflowService) RequestRevision(ctx context.Context, actor ActorContext, submissionID, comment string) (*models.Submission, *models.AuditEntry, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.CanDecide() {
		return nil, nil, forbiddenError("only approvers can request revisions")
	}
	next, ok := models.NextStatus(sub.Status, models.ActionRevisionRequested)
	if !ok {
		return nil, nil, invalidTransitionError("cannot request revision for submission in status %s", sub.Status)
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, nil, validationError("comment required")
	}

	now := time.Now().UTC()
	rec := &TransitionRecord{
		SubmissionID: sub.SubmissionID,
		FromStatus:   sub.Status,
		NewStatus:    next,
		Comment: &models.Comment{
			CommentID:    uuid.NewString(),
			SubmissionID: sub.SubmissionID,
			UserID:       actor.UserID,
			Body:         comment,
			Kind:         models.CommentKindRevision,
			CreatedAt:    now,
		},
		Entry: s.newEntry(sub, actor, models.ActionRevisionRequested, comment, next, now),
	}
	return s.apply(ctx, rec)
}

// AddRevisionContent lets the owning requester add a comment and/or files
// while the submission is in a revision round. The status is unchanged.
func (s *WorkflowService) AddRevisionContent(ctx context.Context, actor ActorContext, submissionID, comment string, files []FileInput) (*models.Submission, *models.AuditEntry, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.Owns(sub) && !actor.IsAdmin() {
		return nil, nil, forbiddenError("only the submission's requester can add revision content")
	}
	next, ok := models.NextStatus(sub.Status, models.ActionCommentAdded)
	if !ok {
		return nil, nil, invalidTransitionError("cannot add revision content to submission in status %s", sub.Status)
	}
	comment = strings.TrimSpace(comment)
	if comment == "" && len(files) == 0 {
		return nil, nil, validationError("a comment or at least one file is required")
	}
	if err := validateFiles(files); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	attachments, err := s.uploadAll(ctx, actor, sub.SubmissionID, files, now)
	if err != nil {
		return nil, nil, err
	}

	entry := s.newEntry(sub, actor, models.ActionCommentAdded, comment, next, now)
	if len(attachments) > 0 {
		names := make([]string, 0, len(attachments))
		for _, a := range attachments {
			names = append(names, a.Filename)
		}
		entry.Details["files_added"] = names
	}

	rec := &TransitionRecord{
		SubmissionID: sub.SubmissionID,
		FromStatus:   sub.Status,
		NewStatus:    next,
		Attachments:  attachments,
		Entry:        entry,
	}
	if comment != "" {
		rec.Comment = &models.Comment{
			CommentID:    uuid.NewString(),
			SubmissionID: sub.SubmissionID,
			UserID:       actor.UserID,
			Body:         comment,
			Kind:         models.CommentKindRevision,
			CreatedAt:    now,
		}
	}

	updated, newEntry, err := s.apply(ctx, rec)
	if err != nil {
		s.removeAll(ctx, attachments)
		return nil, nil, err
	}
	return updated, newEntry, nil
}

// Resubmit returns a revision-requested submission to Pending for another
// approval round. The comment is optional.
func (s *WorkflowService) Resubmit(ctx context.Context, actor ActorContext, submissionID, comment string) (*models.Submission, *models.AuditEntry, error) {
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.Owns(sub) && !actor.IsAdmin() {
		return nil, nil, forbiddenError("only the submission's requester can resubmit")
	}
	next, ok := models.NextStatus(sub.Status, models.ActionResubmitted)
	if !ok {
		return nil, nil, invalidTransitionError("cannot resubmit submission in status %s", sub.Status)
	}

	now := time.Now().UTC()
	rec := &TransitionRecord{
		SubmissionID: sub.SubmissionID,
		FromStatus:   sub.Status,
		NewStatus:    next,
		Entry:        s.newEntry(sub, actor, models.ActionResubmitted, comment, next, now),
	}
	return s.apply(ctx, rec)
}

// History returns the submission's audit trail ordered ascending by
// (created_at, seq).
func (s *WorkflowService) History(ctx context.Context, submissionID string) ([]models.AuditEntry, error) {
	return s.store.History(ctx, submissionID)
}

func (s *WorkflowService) newEntry(sub *models.Submission, actor ActorContext, action models.AuditAction, comment string, next models.SubmissionStatus, now time.Time) models.AuditEntry {
	var commentPtr *string
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		commentPtr = &trimmed
	}
	return models.AuditEntry{
		EntryID:      uuid.NewString(),
		SubmissionID: sub.SubmissionID,
		UserID:       actor.UserID,
		Action:       action,
		Comment:      commentPtr,
		Details: models.JSONMap{
			"previous_status": string(sub.Status),
			"new_status":      string(next),
		},
		CreatedAt: now,
	}
}

func (s *WorkflowService) apply(ctx context.Context, rec *TransitionRecord) (*models.Submission, *models.AuditEntry, error) {
	sub, entry, err := s.store.ApplyTransition(ctx, rec)
	if err != nil {
		return nil, nil, err
	}
	s.notify(sub, entry)
	return sub, entry, nil
}

func (s *WorkflowService) notify(sub *models.Submission, entry *models.AuditEntry) {
	if s.notifier != nil {
		s.notifier.AuditRecorded(sub, entry)
	}
}

func (s *WorkflowService) uploadAll(ctx context.Context, actor ActorContext, submissionID string, files []FileInput, now time.Time) ([]models.Attachment, error) {
	attachments := make([]models.Attachment, 0, len(files))
	for _, f := range files {
		obj, err := s.objects.Put(ctx, f.Reader, f.Name)
		if err != nil {
			s.removeAll(ctx, attachments)
			return nil, storageError("failed to store uploaded file", err)
		}
		attachments = append(attachments, models.Attachment{
			AttachmentID: uuid.NewString(),
			SubmissionID: submissionID,
			Filename:     f.Name,
			Category:     models.CategoryForMime(f.ContentType),
			SizeBytes:    f.Size,
			StoragePath:  obj.Path,
			PublicURL:    obj.PublicURL,
			UploadedBy:   actor.UserID,
			CreatedAt:    now,
		})
	}
	return attachments, nil
}

// removeAll undoes object-store writes after a failed commit, best effort.
func (s *WorkflowService) removeAll(ctx context.Context, attachments []models.Attachment) {
	for _, a := range attachments {
		_ = s.objects.Remove(ctx, a.StoragePath)
	}
}

func validateFiles(files []FileInput) error {
	for _, f := range files {
		if f.Size > MaxUploadBytes {
			return validationError("file %s exceeds the %d MB limit", f.Name, MaxUploadBytes>>20)
		}
		if f.ContentType != "" && !allowedUploadTypes[strings.ToLower(f.ContentType)] {
			return validationError("file type %s is not allowed", f.ContentType)
		}
	}
	return nil
}
