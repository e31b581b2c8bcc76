package models

import (
	"time"
)

type Submission struct {
	SubmissionID string           `gorm:"primaryKey;column:submission_id;type:char(36)" json:"submission_id"`
	Title        string           `gorm:"column:title" json:"title"`
	Description  string           `gorm:"column:description;type:text" json:"description"`
	Status       SubmissionStatus `gorm:"column:status;type:varchar(30)" json:"status"`
	RequesterID  string           `gorm:"column:requester_id;type:char(36)" json:"requester_id"`
	ApproverID   *string          `gorm:"column:approver_id;type:char(36)" json:"approver_id"`
	DueDate      *time.Time       `gorm:"column:due_date" json:"due_date,omitempty"`
	// ReminderSentAt marks that a due-date reminder went out; keeps the
	// reminder job from notifying twice for the same deadline.
	ReminderSentAt *time.Time `gorm:"column:reminder_sent_at" json:"-"`
	ApprovedAt     *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	RejectedAt     *time.Time `gorm:"column:rejected_at" json:"rejected_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Requester   *User        `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Approver    *User        `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:SubmissionID" json:"attachments,omitempty"`
}

// TableName overrides
func (Submission) TableName() string {
	return "submissions"
}
