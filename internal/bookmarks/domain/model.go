// Package domain contains core types for the bookmarks service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Bookmark is a saved link.
type Bookmark struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UID       string       `gorm:"type:text;not null;index" json:"-"`
	Title     string       `gorm:"type:text" json:"title"`
	URL       string       `gorm:"type:text;not null" json:"url"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Bookmark) TableName() string { return "bookmarks" }

type CreateBookmarkRequest struct {
	Title string
	URL   string
}
