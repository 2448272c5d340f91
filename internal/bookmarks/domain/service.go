package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service is the bookmark surface the HTTP layer exposes.
type Service interface {
	List(ctx context.Context, uid string) ([]Bookmark, error)
	Create(ctx context.Context, uid string, req CreateBookmarkRequest) (*Bookmark, error)
	Delete(ctx context.Context, uid string, id snowflake.ID) error
}
