package services

import (
	"context"
	"errors"

	"content-approval-api/models"

	"gorm.io/gorm"
)

// gormStore is the production WorkflowStore over MySQL. Per-submission
// serialization comes from the compare-and-swap status update: the UPDATE
// row lock plus the status guard mean that of two in-flight transitions on
// one submission, exactly one commits.
type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) WorkflowStore {
	return &gormStore{db: db}
}

func (s *gormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("user_id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("user %s not found", id)
		}
		return nil, storageError("failed to load user", err)
	}
	return &user, nil
}

func (s *gormStore) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	if err := s.db.WithContext(ctx).Where("submission_id = ?", id).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("submission %s not found", id)
		}
		return nil, storageError("failed to load submission", err)
	}
	return &sub, nil
}

func (s *gormStore) CreateSubmission(ctx context.Context, sub *models.Submission, files []models.Attachment, entry *models.AuditEntry) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		if len(files) > 0 {
			if err := tx.Create(&files).Error; err != nil {
				return err
			}
		}
		entry.Seq = 1
		return tx.Create(entry).Error
	})
	if err != nil {
		return storageError("failed to create submission", err)
	}
	return nil
}

func (s *gormStore) ApplyTransition(ctx context.Context, rec *TransitionRecord) (*models.Submission, *models.AuditEntry, error) {
	entry := rec.Entry

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     rec.NewStatus,
			"updated_at": entry.CreatedAt,
		}
		if rec.ApproverID != nil {
			updates["approver_id"] = *rec.ApproverID
		}
		if rec.ApprovedAt != nil {
			updates["approved_at"] = *rec.ApprovedAt
		}
		if rec.RejectedAt != nil {
			updates["rejected_at"] = *rec.RejectedAt
		}

		res := tx.Model(&models.Submission{}).
			Where("submission_id = ? AND status = ?", rec.SubmissionID, rec.FromStatus).
			Updates(updates)
		if res.Error != nil {
			return storageError("failed to update submission status", res.Error)
		}
		if res.RowsAffected == 0 {
			// The guarded update missed: either the row is gone or a
			// concurrent transition won. The caller must not retry blindly.
			var current models.Submission
			if err := tx.Where("submission_id = ?", rec.SubmissionID).First(&current).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFoundError("submission %s not found", rec.SubmissionID)
				}
				return storageError("failed to load submission", err)
			}
			return invalidTransitionError("submission %s is now in status %s", rec.SubmissionID, current.Status)
		}

		if len(rec.Attachments) > 0 {
			if err := tx.Create(&rec.Attachments).Error; err != nil {
				return storageError("failed to save attachments", err)
			}
		}
		if rec.Comment != nil {
			if err := tx.Create(rec.Comment).Error; err != nil {
				return storageError("failed to save comment", err)
			}
		}

		// Sequence numbers are per submission; the status row lock above
		// serializes this read-then-insert.
		var maxSeq int
		if err := tx.Model(&models.AuditEntry{}).
			Where("submission_id = ?", rec.SubmissionID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error; err != nil {
			return storageError("failed to read audit sequence", err)
		}
		entry.Seq = maxSeq + 1
		if err := tx.Create(&entry).Error; err != nil {
			return storageError("failed to append audit entry", err)
		}
		return nil
	})
	if err != nil {
		var werr *WorkflowError
		if errors.As(err, &werr) {
			return nil, nil, werr
		}
		return nil, nil, storageError("transition failed", err)
	}

	sub, err := s.GetSubmission(ctx, rec.SubmissionID)
	if err != nil {
		return nil, nil, err
	}
	return sub, &entry, nil
}

func (s *gormStore) History(ctx context.Context, submissionID string) ([]models.AuditEntry, error) {
	if _, err := s.GetSubmission(ctx, submissionID); err != nil {
		return nil, err
	}
	entries := make([]models.AuditEntry, 0)
	if err := s.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at ASC, seq ASC").
		Find(&entries).Error; err != nil {
		return nil, storageError("failed to load history", err)
	}
	return entries, nil
}
