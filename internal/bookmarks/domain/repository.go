package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository persists bookmarks. Every operation is scoped to a uid.
type Repository interface {
	List(ctx context.Context, uid string) ([]Bookmark, error)
	Create(ctx context.Context, bookmark *Bookmark) error
	Delete(ctx context.Context, uid string, id snowflake.ID) error
}
