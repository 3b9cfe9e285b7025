package farm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

type DiseaseReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, report *types.DiseaseReport) (*types.DiseaseReport, error)
	GetByID(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) (*types.DiseaseReport, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.DiseaseReport, error)
	GetByFieldID(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID) ([]*types.DiseaseReport, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, reportID uuid.UUID, status string) error
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.DiseaseReport, error)
}

type diseaseReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiseaseReportRepo(db *gorm.DB, baseLog *logger.Logger) DiseaseReportRepo {
	return &diseaseReportRepo{db: db, log: baseLog.With("repo", "DiseaseReportRepo")}
}

func (dr *diseaseReportRepo) Create(ctx context.Context, tx *gorm.DB, report *types.DiseaseReport) (*types.DiseaseReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	if err := transaction.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

func (dr *diseaseReportRepo) GetByID(ctx context.Context, tx *gorm.DB, reportID uuid.UUID) (*types.DiseaseReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var result types.DiseaseReport
	if err := transaction.WithContext(ctx).
		Where("id = ?", reportID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (dr *diseaseReportRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.DiseaseReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var results []*types.DiseaseReport
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("detection_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (dr *diseaseReportRepo) GetByFieldID(ctx context.Context, tx *gorm.DB, fieldID uuid.UUID) ([]*types.DiseaseReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var results []*types.DiseaseReport
	if err := transaction.WithContext(ctx).
		Where("field_id = ?", fieldID).
		Order("detection_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (dr *diseaseReportRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, reportID uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.DiseaseReport{}).
		Where("id = ?", reportID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (dr *diseaseReportRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.DiseaseReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}
	var results []*types.DiseaseReport
	if err := transaction.WithContext(ctx).
		Order("detection_date ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
