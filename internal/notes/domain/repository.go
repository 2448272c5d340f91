package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository persists notes. Every operation is scoped to a uid.
type Repository interface {
	List(ctx context.Context, uid string) ([]Note, error)
	FindByID(ctx context.Context, uid string, id snowflake.ID) (*Note, error)
	Create(ctx context.Context, note *Note) error
	Update(ctx context.Context, note *Note) error
	Delete(ctx context.Context, uid string, id snowflake.ID) error
}
