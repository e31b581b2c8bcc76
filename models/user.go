package models

import (
	"time"
)

type User struct {
	UserID     string  `gorm:"primaryKey;column:user_id;type:char(36)" json:"user_id"`
	Email      string  `gorm:"column:email;unique" json:"email"`
	Password   string  `gorm:"column:password" json:"-"`
	FullName   string  `gorm:"column:full_name" json:"full_name"`
	Role       Role    `gorm:"column:role;type:varchar(20)" json:"role"`
	Department *string `gorm:"column:department" json:"department,omitempty"`
	JobTitle   *string `gorm:"column:job_title" json:"job_title,omitempty"`
	Phone      *string `gorm:"column:phone" json:"phone,omitempty"`
	AvatarURL  *string `gorm:"column:avatar_url" json:"avatar_url,omitempty"`

	// Users are deactivated, never hard-deleted: submissions and audit
	// entries hold long-lived references that must stay resolvable.
	IsActive bool `gorm:"column:is_active;default:true" json:"is_active"`

	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}
