package farm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

type FieldRepo interface {
	Create(ctx context.Context, tx *gorm.DB, field *types.Field) (*types.Field, error)
	GetByID(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID) (*types.Field, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Field, error)
	Update(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID, fields map[string]any) (*types.Field, error)
	UpdateSatelliteData(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID, data datatypes.JSON, fetchedAt time.Time) error
	Delete(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID) error
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Field, error)
}

type fieldRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFieldRepo(db *gorm.DB, baseLog *logger.Logger) FieldRepo {
	return &fieldRepo{db: db, log: baseLog.With("repo", "FieldRepo")}
}

func (fr *fieldRepo) Create(ctx context.Context, tx *gorm.DB, field *types.Field) (*types.Field, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	if err := transaction.WithContext(ctx).Create(field).Error; err != nil {
		return nil, err
	}
	return field, nil
}

func (fr *fieldRepo) GetByID(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID) (*types.Field, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var result types.Field
	if err := transaction.WithContext(ctx).
		Where("id = ?", fieldID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (fr *fieldRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Field, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.Field
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *fieldRepo) Update(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID, fields map[string]any) (*types.Field, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Field{}).
		Where("id = ?", fieldID).
		Updates(fields).Error; err != nil {
		return nil, err
	}
	return fr.GetByID(ctx, tx, fieldID)
}

func (fr *fieldRepo) UpdateSatelliteData(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID, data datatypes.JSON, fetchedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Field{}).
		Where("id = ?", fieldID).
		Updates(map[string]any{
			"satellite_data": data,
			"last_updated":   fetchedAt,
		}).Error
}

func (fr *fieldRepo) Delete(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ?", fieldID).
		Delete(&types.Field{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (fr *fieldRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Field, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.Field
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
