package services

import (
	"context"
	"errors"
	"time"

	"content-approval-api/models"

	"gorm.io/gorm"
)

// ViewService serves read-only projections for dashboards and detail pages.
// It never mutates state; every state change goes through the workflow
// engine. "No results" is an empty slice, not an error.
type ViewService struct {
	db *gorm.DB
}

func NewViewService(db *gorm.DB) *ViewService {
	return &ViewService{db: db}
}

// SubmissionRow is the list projection: a submission joined with its
// requester/approver display names and attachment count.
type SubmissionRow struct {
	SubmissionID    string                  `gorm:"column:submission_id" json:"submission_id"`
	Title           string                  `gorm:"column:title" json:"title"`
	Status          models.SubmissionStatus `gorm:"column:status" json:"status"`
	RequesterID     string                  `gorm:"column:requester_id" json:"requester_id"`
	RequesterName   string                  `gorm:"column:requester_name" json:"requester_name"`
	ApproverID      *string                 `gorm:"column:approver_id" json:"approver_id"`
	ApproverName    *string                 `gorm:"column:approver_name" json:"approver_name"`
	DueDate         *time.Time              `gorm:"column:due_date" json:"due_date,omitempty"`
	AttachmentCount int64                   `gorm:"column:attachment_count" json:"attachment_count"`
	CreatedAt       time.Time               `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time               `gorm:"column:updated_at" json:"updated_at"`
}

// ListFilter narrows the submission list projection.
type ListFilter struct {
	Status      *models.SubmissionStatus
	RequesterID string
	ApproverID  string
}

// ListSubmissions returns submissions most-recently-created first, ties
// broken by identifier for a stable order.
func (v *ViewService) ListSubmissions(ctx context.Context, filter ListFilter) ([]SubmissionRow, error) {
	rows := make([]SubmissionRow, 0)

	q := v.db.WithContext(ctx).Table("submissions AS s").
		Joins("JOIN users req ON req.user_id = s.requester_id").
		Joins("LEFT JOIN users app ON app.user_id = s.approver_id").
		Select(`s.submission_id, s.title, s.status, s.requester_id,
			req.full_name AS requester_name, s.approver_id,
			app.full_name AS approver_name, s.due_date, s.created_at, s.updated_at,
			(SELECT COUNT(*) FROM attachments a WHERE a.submission_id = s.submission_id) AS attachment_count`)

	if filter.Status != nil {
		q = q.Where("s.status = ?", *filter.Status)
	}
	if filter.RequesterID != "" {
		q = q.Where("s.requester_id = ?", filter.RequesterID)
	}
	if filter.ApproverID != "" {
		q = q.Where("s.approver_id = ?", filter.ApproverID)
	}

	if err := q.Order("s.created_at DESC").Order("s.submission_id DESC").Scan(&rows).Error; err != nil {
		return nil, storageError("failed to list submissions", err)
	}
	return rows, nil
}

// SubmissionDetail is the full projection for the detail page.
type SubmissionDetail struct {
	models.Submission
	Comments []models.Comment `json:"comments"`
}

// GetSubmissionDetail loads a submission with requester, approver,
// attachments and the revision comment thread.
func (v *ViewService) GetSubmissionDetail(ctx context.Context, id string) (*SubmissionDetail, error) {
	var sub models.Submission
	if err := v.db.WithContext(ctx).
		Preload("Requester").
		Preload("Approver").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("submission_id = ?", id).
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("submission %s not found", id)
		}
		return nil, storageError("failed to load submission", err)
	}

	comments := make([]models.Comment, 0)
	if err := v.db.WithContext(ctx).
		Preload("Author").
		Where("submission_id = ?", id).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, storageError("failed to load comments", err)
	}

	return &SubmissionDetail{Submission: sub, Comments: comments}, nil
}

// HistoryRow is one audit entry joined with actor display attributes and a
// human-readable action description for the version-history timeline.
type HistoryRow struct {
	EntryID      string             `gorm:"column:entry_id" json:"entry_id"`
	SubmissionID string             `gorm:"column:submission_id" json:"submission_id"`
	Action       models.AuditAction `gorm:"column:action" json:"action"`
	Description  string             `gorm:"-" json:"description"`
	Comment      *string            `gorm:"column:comment" json:"comment"`
	Details      models.JSONMap     `gorm:"column:details" json:"details,omitempty"`
	Seq          int                `gorm:"column:seq" json:"seq"`
	ActorID      string             `gorm:"column:actor_id" json:"actor_id"`
	ActorName    string             `gorm:"column:actor_name" json:"actor_name"`
	ActorEmail   string             `gorm:"column:actor_email" json:"actor_email"`
	ActorAvatar  *string            `gorm:"column:actor_avatar" json:"actor_avatar,omitempty"`
	ActorRole    models.Role        `gorm:"column:actor_role" json:"actor_role"`
	CreatedAt    time.Time          `gorm:"column:created_at" json:"created_at"`
}

// History returns the submission's timeline with actor names, ascending by
// (created_at, seq).
func (v *ViewService) History(ctx context.Context, submissionID string) ([]HistoryRow, error) {
	rows := make([]HistoryRow, 0)
	if err := v.db.WithContext(ctx).Table("audit_entries AS e").
		Joins("JOIN users u ON u.user_id = e.user_id").
		Select(`e.entry_id, e.submission_id, e.action, e.comment, e.details,
			e.seq, e.created_at, u.user_id AS actor_id, u.full_name AS actor_name,
			u.email AS actor_email, u.avatar_url AS actor_avatar, u.role AS actor_role`).
		Where("e.submission_id = ?", submissionID).
		Order("e.created_at ASC, e.seq ASC").
		Scan(&rows).Error; err != nil {
		return nil, storageError("failed to load history", err)
	}
	for i := range rows {
		rows[i].Description = rows[i].Action.Description()
	}
	return rows, nil
}

// StatusCounts is the dashboard summary for one scope.
type StatusCounts struct {
	Total             int64 `json:"total"`
	Pending           int64 `json:"pending"`
	Approved          int64 `json:"approved"`
	Rejected          int64 `json:"rejected"`
	RevisionRequested int64 `json:"revision_requested"`
}

// CountByStatus tallies submissions per status, scoped to one requester when
// requesterID is non-empty (approvers and admins see everything).
func (v *ViewService) CountByStatus(ctx context.Context, requesterID string) (StatusCounts, error) {
	type statusCount struct {
		Status models.SubmissionStatus `gorm:"column:status"`
		N      int64                   `gorm:"column:n"`
	}

	q := v.db.WithContext(ctx).Model(&models.Submission{}).
		Select("status, COUNT(*) AS n").
		Group("status")
	if requesterID != "" {
		q = q.Where("requester_id = ?", requesterID)
	}

	var rows []statusCount
	if err := q.Scan(&rows).Error; err != nil {
		return StatusCounts{}, storageError("failed to count submissions", err)
	}

	var counts StatusCounts
	for _, r := range rows {
		counts.Total += r.N
		switch r.Status {
		case models.StatusPending:
			counts.Pending = r.N
		case models.StatusApproved:
			counts.Approved = r.N
		case models.StatusRejected:
			counts.Rejected = r.N
		case models.StatusRevisionRequested:
			counts.RevisionRequested = r.N
		}
	}
	return counts, nil
}
