package market

import (
	"context"
	"time"

	"gorm.io/gorm"

	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

type PriceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, price *types.MarketPrice) (*types.MarketPrice, error)
	GetByCropType(ctx context.Context, tx *gorm.DB, cropType string) ([]*types.MarketPrice, error)
	GetLatest(ctx context.Context, tx *gorm.DB, cropType string, since time.Time) ([]*types.MarketPrice, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.MarketPrice, error)
}

type priceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPriceRepo(db *gorm.DB, baseLog *logger.Logger) PriceRepo {
	return &priceRepo{db: db, log: baseLog.With("repo", "PriceRepo")}
}

func (pr *priceRepo) Create(ctx context.Context, tx *gorm.DB, price *types.MarketPrice) (*types.MarketPrice, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Create(price).Error; err != nil {
		return nil, err
	}
	return price, nil
}

func (pr *priceRepo) GetByCropType(ctx context.Context, tx *gorm.DB, cropType string) ([]*types.MarketPrice, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.MarketPrice
	if err := transaction.WithContext(ctx).
		Where("crop_type = ?", cropType).
		Order("date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *priceRepo) GetLatest(ctx context.Context, tx *gorm.DB, cropType string, since time.Time) ([]*types.MarketPrice, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	query := transaction.WithContext(ctx).Where("date >= ?", since)
	if cropType != "" {
		query = query.Where("crop_type = ?", cropType)
	}
	var results []*types.MarketPrice
	if err := query.Order("date DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *priceRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.MarketPrice, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.MarketPrice
	if err := transaction.WithContext(ctx).
		Order("date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
