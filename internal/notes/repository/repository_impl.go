package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/daybook-app/daybook/internal/notes/domain"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) List(ctx context.Context, uid string) ([]domain.Note, error) {
	var notes []domain.Note
	err := r.db.WithContext(ctx).
		Where("uid = ?", uid).
		Order("updated_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *repo) FindByID(ctx context.Context, uid string, id snowflake.ID) (*domain.Note, error) {
	var note domain.Note
	err := r.db.WithContext(ctx).Where("uid = ? AND id = ?", uid, id).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *repo) Create(ctx context.Context, note *domain.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *repo) Update(ctx context.Context, note *domain.Note) error {
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *repo) Delete(ctx context.Context, uid string, id snowflake.ID) error {
	result := r.db.WithContext(ctx).Where("uid = ? AND id = ?", uid, id).Delete(&domain.Note{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}
