package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository persists user accounts.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
}
