package models

import "time"

// Comment kinds. Stored separately from the audit log so revision threads
// can be listed without scanning history.
const CommentKindRevision = "revision"

type Comment struct {
	CommentID    string    `gorm:"primaryKey;column:comment_id;type:char(36)" json:"comment_id"`
	SubmissionID string    `gorm:"column:submission_id;type:char(36);index" json:"submission_id"`
	UserID       string    `gorm:"column:user_id;type:char(36)" json:"user_id"`
	Body         string    `gorm:"column:body;type:text" json:"body"`
	Kind         string    `gorm:"column:kind;type:varchar(20)" json:"kind"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`

	Author *User `gorm:"foreignKey:UserID" json:"author,omitempty"`
}

func (Comment) TableName() string { return "comments" }
