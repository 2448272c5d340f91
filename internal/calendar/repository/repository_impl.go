package repository

import (
	"context"
	"errors"
	"time"

	"github.com/daybook-app/daybook/internal/calendar/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) domain.TokenRepository {
	return &repo{db: db, now: time.Now}
}

func (r *repo) Get(ctx context.Context, uid string) (*domain.RefreshTokenRecord, error) {
	var record domain.RefreshTokenRecord
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotConnected
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repo) Upsert(ctx context.Context, uid string, upsert domain.TokenUpsert) error {
	record := domain.RefreshTokenRecord{
		UID:          uid,
		RefreshToken: upsert.RefreshToken,
		Scope:        upsert.Scope,
		TokenType:    upsert.TokenType,
		UpdatedAt:    r.now().UnixMilli(),
	}

	// Only supplied columns participate in the conflict update so omitted
	// optional fields keep their prior values.
	columns := []string{"refresh_token", "updated_at"}
	if upsert.Scope != nil {
		columns = append(columns, "scope")
	}
	if upsert.TokenType != nil {
		columns = append(columns, "token_type")
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&record).Error
}
