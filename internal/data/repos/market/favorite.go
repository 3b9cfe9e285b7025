package market

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

type FavoriteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, favorite *types.MarketFavorite) (*types.MarketFavorite, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.MarketFavorite, error)
	GetByUserAndCrop(ctx context.Context, tx *gorm.DB, userID uuid.UUID, cropType string) (*types.MarketFavorite, error)
	Update(ctx context.Context, tx *gorm.DB, favoriteID uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, favoriteID uuid.UUID) error
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.MarketFavorite, error)
}

type favoriteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFavoriteRepo(db *gorm.DB, baseLog *logger.Logger) FavoriteRepo {
	return &favoriteRepo{db: db, log: baseLog.With("repo", "FavoriteRepo")}
}

func (fr *favoriteRepo) Create(ctx context.Context, tx *gorm.DB, favorite *types.MarketFavorite) (*types.MarketFavorite, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	if err := transaction.WithContext(ctx).Create(favorite).Error; err != nil {
		return nil, err
	}
	return favorite, nil
}

func (fr *favoriteRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.MarketFavorite, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.MarketFavorite
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("crop_type ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *favoriteRepo) GetByUserAndCrop(ctx context.Context, tx *gorm.DB, userID uuid.UUID, cropType string) (*types.MarketFavorite, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var result types.MarketFavorite
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND crop_type = ?", userID, cropType).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (fr *favoriteRepo) Update(ctx context.Context, tx *gorm.DB, favoriteID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.MarketFavorite{}).
		Where("id = ?", favoriteID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (fr *favoriteRepo) Delete(ctx context.Context, tx *gorm.DB, favoriteID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ?", favoriteID).
		Delete(&types.MarketFavorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (fr *favoriteRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.MarketFavorite, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.MarketFavorite
	if err := transaction.WithContext(ctx).
		Order("crop_type ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
