package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service is the task surface the HTTP layer exposes.
type Service interface {
	List(ctx context.Context, uid string) ([]Task, error)
	Create(ctx context.Context, uid string, req CreateTaskRequest) (*Task, error)
	Update(ctx context.Context, uid string, id snowflake.ID, req UpdateTaskRequest) (*Task, error)
	Delete(ctx context.Context, uid string, id snowflake.ID) error
}
