package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository persists tasks. Every operation is scoped to a uid.
type Repository interface {
	List(ctx context.Context, uid string) ([]Task, error)
	FindByID(ctx context.Context, uid string, id snowflake.ID) (*Task, error)
	Create(ctx context.Context, task *Task) error
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, uid string, id snowflake.ID) error
}
