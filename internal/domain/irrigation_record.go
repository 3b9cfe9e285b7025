package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IrrigationRecord logs one irrigation application on a field. Append-only.
type IrrigationRecord struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FieldID  uuid.UUID `gorm:"type:uuid;not null;index" json:"field_id"`
	Date     time.Time `gorm:"not null" json:"date"`
	Amount   float64   `json:"amount"`
	Method   string    `gorm:"size:50" json:"method"`
	Duration int       `json:"duration"`
	Notes    string    `gorm:"type:text" json:"notes"`
}

func (IrrigationRecord) TableName() string { return "irrigation_records" }

func (r *IrrigationRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Date.IsZero() {
		r.Date = time.Now().UTC()
	}
	return nil
}
