package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReportStatusDetected = "detected"
	ReportStatusTreating = "treating"
	ReportStatusResolved = "resolved"
)

type DiseaseReport struct {
	ID                       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	FieldID                  uuid.UUID `gorm:"type:uuid;not null;index" json:"field_id"`
	DiseaseName              string    `gorm:"size:100;not null" json:"disease_name"`
	DetectionDate            time.Time `gorm:"not null" json:"detection_date"`
	ConfidenceScore          float64   `json:"confidence_score"`
	ImagePath                string    `gorm:"size:255" json:"image_path"`
	Symptoms                 string    `gorm:"type:text" json:"symptoms"`
	TreatmentRecommendations string    `gorm:"type:text" json:"treatment_recommendations"`
	Status                   string    `gorm:"size:20;not null;default:detected" json:"status"`
	Notes                    string    `gorm:"type:text" json:"notes"`
}

func (DiseaseReport) TableName() string { return "disease_reports" }

func (r *DiseaseReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.DetectionDate.IsZero() {
		r.DetectionDate = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = ReportStatusDetected
	}
	return nil
}
