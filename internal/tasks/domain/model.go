// Package domain contains core types for the tasks service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Task is a flat to-do item. ParentID links a subtask to its parent but the
// list itself stays flat.
type Task struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	UID       string        `gorm:"type:text;not null;index" json:"-"`
	Title     string        `gorm:"type:text;not null" json:"title"`
	Done      bool          `gorm:"not null;default:false" json:"done"`
	ParentID  *snowflake.ID `gorm:"index" json:"parentId,omitempty"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Task) TableName() string { return "tasks" }

// CreateTaskRequest carries the fields a client may set on creation.
type CreateTaskRequest struct {
	Title    string
	ParentID *snowflake.ID
}

// UpdateTaskRequest applies a partial update; nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title *string
	Done  *bool
}
