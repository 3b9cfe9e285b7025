package weather

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

type ForecastRepo interface {
	GetByLocation(ctx context.Context, tx *gorm.DB, location string, since time.Time) ([]*types.WeatherForecast, error)
	// ReplaceForLocation swaps out a location's cached forecasts in one
	// transaction so a refresh never leaves a mixed-age cache behind.
	ReplaceForLocation(ctx context.Context, tx *gorm.DB, location string, forecasts []*types.WeatherForecast) error
	LastRefreshedAt(ctx context.Context, tx *gorm.DB, location string) (time.Time, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.WeatherForecast, error)
}

type forecastRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewForecastRepo(db *gorm.DB, baseLog *logger.Logger) ForecastRepo {
	return &forecastRepo{db: db, log: baseLog.With("repo", "ForecastRepo")}
}

func (wr *forecastRepo) GetByLocation(ctx context.Context, tx *gorm.DB, location string, since time.Time) ([]*types.WeatherForecast, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	var results []*types.WeatherForecast
	if err := transaction.WithContext(ctx).
		Where("location = ? AND forecast_date >= ?", location, since).
		Order("forecast_date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (wr *forecastRepo) ReplaceForLocation(ctx context.Context, tx *gorm.DB, location string, forecasts []*types.WeatherForecast) error {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	return transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if err := inner.Where("location = ?", location).
			Delete(&types.WeatherForecast{}).Error; err != nil {
			return err
		}
		if len(forecasts) == 0 {
			return nil
		}
		return inner.Create(&forecasts).Error
	})
}

// LastRefreshedAt returns the most recent refresh time for a location's
// cache; the zero time means nothing is cached.
func (wr *forecastRepo) LastRefreshedAt(ctx context.Context, tx *gorm.DB, location string) (time.Time, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	var result types.WeatherForecast
	err := transaction.WithContext(ctx).
		Where("location = ?", location).
		Order("updated_at DESC").
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return result.UpdatedAt, nil
}

func (wr *forecastRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.WeatherForecast, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}
	var results []*types.WeatherForecast
	if err := transaction.WithContext(ctx).
		Order("forecast_date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
