package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONMap stores a key/value snapshot as a JSON column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}
	return json.Unmarshal(data, m)
}

// AuditEntry is one immutable record of a state-changing action on a
// submission. Entries are append-only and ordered by (created_at, seq); seq
// is assigned monotonically per submission by the store so same-millisecond
// entries still replay deterministically.
type AuditEntry struct {
	EntryID      string      `gorm:"primaryKey;column:entry_id;type:char(36)" json:"entry_id"`
	SubmissionID string      `gorm:"column:submission_id;type:char(36);index" json:"submission_id"`
	UserID       string      `gorm:"column:user_id;type:char(36)" json:"user_id"`
	Action       AuditAction `gorm:"column:action;type:varchar(30)" json:"action"`
	Comment      *string     `gorm:"column:comment;type:text" json:"comment"`
	Details      JSONMap     `gorm:"column:details;type:json" json:"details,omitempty"`
	Seq          int         `gorm:"column:seq" json:"seq"`
	CreatedAt    time.Time   `gorm:"column:created_at" json:"created_at"`

	Actor *User `gorm:"foreignKey:UserID" json:"actor,omitempty"`
}

// TableName overrides
func (AuditEntry) TableName() string {
	return "audit_entries"
}
