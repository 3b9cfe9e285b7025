package farm

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

type IrrigationRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.IrrigationRecord) (*types.IrrigationRecord, error)
	GetByFieldID(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID) ([]*types.IrrigationRecord, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.IrrigationRecord, error)
}

type irrigationRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIrrigationRecordRepo(db *gorm.DB, baseLog *logger.Logger) IrrigationRecordRepo {
	return &irrigationRecordRepo{db: db, log: baseLog.With("repo", "IrrigationRecordRepo")}
}

func (ir *irrigationRecordRepo) Create(ctx context.Context, tx *gorm.DB, record *types.IrrigationRecord) (*types.IrrigationRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	if err := transaction.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (ir *irrigationRecordRepo) GetByFieldID(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID) ([]*types.IrrigationRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	var results []*types.IrrigationRecord
	if err := transaction.WithContext(ctx).
		Where("field_id = ?", fieldID).
		Order("date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *irrigationRecordRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.IrrigationRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	var results []*types.IrrigationRecord
	if err := transaction.WithContext(ctx).
		Order("date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type FertilizerRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.FertilizerRecord) (*types.FertilizerRecord, error)
	GetByFieldID(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID) ([]*types.FertilizerRecord, error)
	GetRecent(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID, limit int) ([]*types.FertilizerRecord, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.FertilizerRecord, error)
}

type fertilizerRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFertilizerRecordRepo(db *gorm.DB, baseLog *logger.Logger) FertilizerRecordRepo {
	return &fertilizerRecordRepo{db: db, log: baseLog.With("repo", "FertilizerRecordRepo")}
}

func (fr *fertilizerRecordRepo) Create(ctx context.Context, tx *gorm.DB, record *types.FertilizerRecord) (*types.FertilizerRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	if err := transaction.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (fr *fertilizerRecordRepo) GetByFieldID(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID) ([]*types.FertilizerRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.FertilizerRecord
	if err := transaction.WithContext(ctx).
		Where("field_id = ?", fieldID).
		Order("date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *fertilizerRecordRepo) GetRecent(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID, limit int) ([]*types.FertilizerRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.FertilizerRecord
	if err := transaction.WithContext(ctx).
		Where("field_id = ?", fieldID).
		Order("date DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *fertilizerRecordRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.FertilizerRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}
	var results []*types.FertilizerRecord
	if err := transaction.WithContext(ctx).
		Order("date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
