// Package domain contains core types for the identity service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User represents an application user account.
type User struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	ExternalID    string       `gorm:"type:text;not null;uniqueIndex"`
	Email         string       `gorm:"type:text;not null;uniqueIndex"`
	DisplayName   string       `gorm:"type:text"`
	EmailVerified bool         `gorm:"column:email_verified;not null;default:false"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Profile is the provider identity used to resolve or create a user.
type Profile struct {
	Subject     string
	Email       string
	DisplayName string
}
