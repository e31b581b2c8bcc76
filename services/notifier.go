package services

import (
	"fmt"
	"log"
	"time"

	"content-approval-api/config"
	"content-approval-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier observes committed audit entries. Implementations run outside
// the workflow transaction; their failures must never fail the operation
// that triggered them.
type Notifier interface {
	AuditRecorded(sub *models.Submission, entry *models.AuditEntry)
}

// AuditNotifier turns audit entries into in-app notifications plus a
// courtesy email when SMTP is configured. Actions taken by the requester
// notify the approver pool; decisions notify the requester.
type AuditNotifier struct {
	db *gorm.DB
}

func NewAuditNotifier(db *gorm.DB) *AuditNotifier {
	return &AuditNotifier{db: db}
}

func (n *AuditNotifier) AuditRecorded(sub *models.Submission, entry *models.AuditEntry) {
	recipients, err := n.recipients(sub, entry)
	if err != nil {
		log.Printf("notifier: failed to resolve recipients for %s: %v", sub.SubmissionID, err)
		return
	}
	if len(recipients) == 0 {
		return
	}

	title := entry.Action.Description()
	message := fmt.Sprintf("%s: %q", title, sub.Title)
	if entry.Comment != nil {
		message = fmt.Sprintf("%s: %s", message, *entry.Comment)
	}

	notifications := make([]models.Notification, 0, len(recipients))
	emails := make([]string, 0, len(recipients))
	for _, user := range recipients {
		submissionID := sub.SubmissionID
		notifications = append(notifications, models.Notification{
			NotificationID:      uuid.NewString(),
			UserID:              user.UserID,
			Title:               title,
			Message:             message,
			Type:                notificationType(entry.Action),
			RelatedSubmissionID: &submissionID,
			CreatedAt:           time.Now().UTC(),
		})
		emails = append(emails, user.Email)
	}

	if err := n.db.Create(&notifications).Error; err != nil {
		log.Printf("notifier: failed to save notifications for %s: %v", sub.SubmissionID, err)
	}

	if config.MailConfigured() {
		if err := config.SendMail(emails, title, fmt.Sprintf("<p>%s</p>", message)); err != nil {
			log.Printf("notifier: failed to send mail for %s: %v", sub.SubmissionID, err)
		}
	}
}

// recipients picks the counterparty of the action: decisions go to the
// requester, requester actions go to active approvers and admins.
func (n *AuditNotifier) recipients(sub *models.Submission, entry *models.AuditEntry) ([]models.User, error) {
	var users []models.User

	switch entry.Action {
	case models.ActionApproved, models.ActionRejected, models.ActionRevisionRequested:
		err := n.db.Where("user_id = ? AND is_active = ?", sub.RequesterID, true).Find(&users).Error
		return users, err
	case models.ActionCreated, models.ActionResubmitted, models.ActionCommentAdded:
		err := n.db.Where("role IN ? AND is_active = ? AND user_id <> ?",
			[]models.Role{models.RoleApprover, models.RoleAdmin}, true, entry.UserID).
			Find(&users).Error
		return users, err
	}
	return nil, nil
}

func notificationType(action models.AuditAction) string {
	switch action {
	case models.ActionApproved:
		return "success"
	case models.ActionRejected:
		return "error"
	case models.ActionRevisionRequested:
		return "warning"
	}
	return "info"
}
