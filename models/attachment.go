package models

import (
	"time"
)

// ContentCategory classifies an attachment for display and validation.
type ContentCategory string

const (
	ContentImage ContentCategory = "image"
	ContentVideo ContentCategory = "video"
	ContentPDF   ContentCategory = "pdf"
	ContentOther ContentCategory = "other"
)

func (c ContentCategory) Valid() bool {
	switch c {
	case ContentImage, ContentVideo, ContentPDF, ContentOther:
		return true
	}
	return false
}

// CategoryForMime maps an uploaded file's MIME type to its content category.
func CategoryForMime(mimeType string) ContentCategory {
	switch {
	case mimeType == "application/pdf":
		return ContentPDF
	case len(mimeType) > 6 && mimeType[:6] == "image/":
		return ContentImage
	case len(mimeType) > 6 && mimeType[:6] == "video/":
		return ContentVideo
	}
	return ContentOther
}

// Attachment is append-only: rows are created at submission time or during a
// revision round and never mutated or deleted.
type Attachment struct {
	AttachmentID string          `gorm:"primaryKey;column:attachment_id;type:char(36)" json:"attachment_id"`
	SubmissionID string          `gorm:"column:submission_id;type:char(36);index" json:"submission_id"`
	Filename     string          `gorm:"column:filename" json:"filename"`
	Category     ContentCategory `gorm:"column:category;type:varchar(10)" json:"category"`
	SizeBytes    int64           `gorm:"column:size_bytes" json:"size_bytes"`
	StoragePath  string          `gorm:"column:storage_path" json:"storage_path"`
	PublicURL    string          `gorm:"column:public_url" json:"public_url"`
	UploadedBy   string          `gorm:"column:uploaded_by;type:char(36)" json:"uploaded_by"`
	CreatedAt    time.Time       `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides
func (Attachment) TableName() string {
	return "attachments"
}
