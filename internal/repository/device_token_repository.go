package repository

import (
	"context"

	"github.com/emanuuele/girls-chat-api/internal/domain/user"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresDeviceTokenRepository struct {
	db *gorm.DB
}

func NewDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &PostgresDeviceTokenRepository{db: db}
}

func (r *PostgresDeviceTokenRepository) Upsert(ctx context.Context, t *user.DeviceToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "token"}},
			DoNothing: true,
		}).
		Create(t).Error
}

func (r *PostgresDeviceTokenRepository) GetUserTokens(ctx context.Context, userID int64) ([]user.DeviceToken, error) {
	var tokens []user.DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *PostgresDeviceTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&user.DeviceToken{}).Error
}
