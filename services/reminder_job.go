package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"content-approval-api/config"
	"content-approval-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrReminderJobAlreadyRunning = errors.New("due-date reminder job already running")

// ReminderSummary reports one run of the due-date reminder job.
type ReminderSummary struct {
	SubmissionsDue    int `json:"submissions_due"`
	RemindersSent     int `json:"reminders_sent"`
	SubmissionsFailed int `json:"submissions_failed"`
}

type ReminderJobInput struct {
	// Window is how far ahead of the due date a reminder fires.
	Window time.Duration
	// LockName, when set, takes a MySQL advisory lock so overlapping
	// runs from multiple instances do not double-notify.
	LockName string
	DryRun   bool
}

// ReminderJobService notifies the relevant party when an open submission
// approaches or passes its due date. Pending submissions remind the approver
// pool; revision rounds remind the requester. Each submission is reminded
// at most once per deadline.
type ReminderJobService struct {
	db *gorm.DB
}

func NewReminderJobService(db *gorm.DB) *ReminderJobService {
	if db == nil {
		db = config.DB
	}
	return &ReminderJobService{db: db}
}

func (s *ReminderJobService) Run(ctx context.Context, input *ReminderJobInput) (*ReminderSummary, error) {
	if input == nil {
		return nil, errors.New("input is nil")
	}
	window := input.Window
	if window <= 0 {
		window = 24 * time.Hour
	}

	release, err := s.acquireLock(ctx, input.LockName)
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer func() {
			if relErr := release(); relErr != nil {
				log.Printf("failed to release reminder job lock: %v", relErr)
			}
		}()
	}

	cutoff := time.Now().UTC().Add(window)
	summary := &ReminderSummary{}

	var due []models.Submission
	err = s.db.WithContext(ctx).
		Where("status IN ?", []models.SubmissionStatus{models.StatusPending, models.StatusRevisionRequested}).
		Where("due_date IS NOT NULL AND due_date <= ?", cutoff).
		Where("reminder_sent_at IS NULL").
		Order("due_date ASC").
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	summary.SubmissionsDue = len(due)

	for _, sub := range due {
		if input.DryRun {
			continue
		}
		if err := s.remind(ctx, &sub); err != nil {
			summary.SubmissionsFailed++
			log.Printf("reminder failed for submission %s: %v", sub.SubmissionID, err)
			continue
		}
		summary.RemindersSent++
	}

	return summary, nil
}

func (s *ReminderJobService) remind(ctx context.Context, sub *models.Submission) error {
	recipients, err := s.recipients(ctx, sub)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return s.markReminded(ctx, sub)
	}

	title := "Submission due soon"
	message := fmt.Sprintf("%q is awaiting action and is due %s", sub.Title, sub.DueDate.Format("2006-01-02"))
	if !sub.DueDate.After(time.Now().UTC()) {
		title = "Submission overdue"
		message = fmt.Sprintf("%q is still awaiting action and was due %s", sub.Title, sub.DueDate.Format("2006-01-02"))
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
			Type:                "warning",
			RelatedSubmissionID: &submissionID,
			CreatedAt:           time.Now().UTC(),
		})
		emails = append(emails, user.Email)
	}

	if err := s.db.WithContext(ctx).Create(&notifications).Error; err != nil {
		return err
	}
	if config.MailConfigured() {
		if err := config.SendMail(emails, title, fmt.Sprintf("<p>%s</p>", message)); err != nil {
			log.Printf("reminder mail failed for submission %s: %v", sub.SubmissionID, err)
		}
	}
	return s.markReminded(ctx, sub)
}

func (s *ReminderJobService) recipients(ctx context.Context, sub *models.Submission) ([]models.User, error) {
	var users []models.User
	query := s.db.WithContext(ctx).Where("is_active = ?", true)
	if sub.Status == models.StatusRevisionRequested {
		query = query.Where("user_id = ?", sub.RequesterID)
	} else {
		query = query.Where("role IN ?", []models.Role{models.RoleApprover, models.RoleAdmin})
	}
	err := query.Find(&users).Error
	return users, err
}

func (s *ReminderJobService) markReminded(ctx context.Context, sub *models.Submission) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&models.Submission{}).
		Where("submission_id = ?", sub.SubmissionID).
		Update("reminder_sent_at", now).Error
}

func (s *ReminderJobService) acquireLock(ctx context.Context, lockName string) (func() error, error) {
	if strings.TrimSpace(lockName) == "" {
		return nil, nil
	}

	var ok int
	if err := s.db.WithContext(ctx).Raw("SELECT GET_LOCK(?, 0)", lockName).Scan(&ok).Error; err != nil {
		return nil, err
	}
	if ok != 1 {
		return nil, ErrReminderJobAlreadyRunning
	}

	return func() error {
		var released int
		return s.db.WithContext(ctx).Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&released).Error
	}, nil
}

// StartReminderLoop runs the reminder job on a fixed interval until the
// context is cancelled. Interval <= 0 disables the loop.
func StartReminderLoop(ctx context.Context, svc *ReminderJobService, interval time.Duration, window time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				summary, err := svc.Run(ctx, &ReminderJobInput{
					Window:   window,
					LockName: "content_approval_due_reminders",
				})
				if err != nil {
					if !errors.Is(err, ErrReminderJobAlreadyRunning) {
						log.Printf("due-date reminder run failed: %v", err)
					}
					continue
				}
				if summary.SubmissionsDue > 0 {
					log.Printf("due-date reminders: %d due, %d sent, %d failed",
						summary.SubmissionsDue, summary.RemindersSent, summary.SubmissionsFailed)
				}
			}
		}
	}()
}
