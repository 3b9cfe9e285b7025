package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FertilizerRecord logs one fertilizer application on a field. Append-only.
type FertilizerRecord struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FieldID         uuid.UUID `gorm:"type:uuid;not null;index" json:"field_id"`
	Date            time.Time `gorm:"not null" json:"date"`
	FertilizerType  string    `gorm:"size:100" json:"fertilizer_type"`
	ApplicationRate float64   `json:"application_rate"`
	Method          string    `gorm:"size:50" json:"method"`
	Notes           string    `gorm:"type:text" json:"notes"`
}

func (FertilizerRecord) TableName() string { return "fertilizer_records" }

func (r *FertilizerRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Date.IsZero() {
		r.Date = time.Now().UTC()
	}
	return nil
}
