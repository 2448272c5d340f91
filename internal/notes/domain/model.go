// Package domain contains core types for the notes service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Note is a free-form text note.
type Note struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UID       string       `gorm:"type:text;not null;index" json:"-"`
	Title     string       `gorm:"type:text;not null" json:"title"`
	Body      string       `gorm:"type:text" json:"body"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Note) TableName() string { return "notes" }

type CreateNoteRequest struct {
	Title string
	Body  string
}

// UpdateNoteRequest applies a partial update; nil fields are left unchanged.
type UpdateNoteRequest struct {
	Title *string
	Body  *string
}
