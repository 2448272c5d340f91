package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service is the note surface the HTTP layer exposes.
type Service interface {
	List(ctx context.Context, uid string) ([]Note, error)
	Create(ctx context.Context, uid string, req CreateNoteRequest) (*Note, error)
	Update(ctx context.Context, uid string, id snowflake.ID, req UpdateNoteRequest) (*Note, error)
	Delete(ctx context.Context, uid string, id snowflake.ID) error
}
