package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/daybook-app/daybook/internal/bookmarks/domain"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) List(ctx context.Context, uid string) ([]domain.Bookmark, error) {
	var bookmarks []domain.Bookmark
	err := r.db.WithContext(ctx).
		Where("uid = ?", uid).
		Order("created_at DESC").
		Find(&bookmarks).Error
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}

func (r *repo) Create(ctx context.Context, bookmark *domain.Bookmark) error {
	return r.db.WithContext(ctx).Create(bookmark).Error
}

func (r *repo) Delete(ctx context.Context, uid string, id snowflake.ID) error {
	result := r.db.WithContext(ctx).Where("uid = ? AND id = ?", uid, id).Delete(&domain.Bookmark{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrBookmarkNotFound
	}
	return nil
}
