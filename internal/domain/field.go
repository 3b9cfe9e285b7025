package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Field is a farmer's parcel. SatelliteData caches the last satellite
// monitoring snapshot (ndvi, field_health, time_series, anomalies) and
// LastUpdated records its freshness.
type Field struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Location     string     `gorm:"size:255" json:"location"`
	Area         float64    `json:"area"`
	CropType     string     `gorm:"size:50" json:"crop_type"`
	SoilType     string     `gorm:"size:50" json:"soil_type"`
	PlantingDate *time.Time `json:"planting_date"`
	Notes        string     `gorm:"type:text" json:"notes"`

	SatelliteData datatypes.JSON `json:"satellite_data"`
	WeatherData   datatypes.JSON `json:"weather_data"`

	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	LastUpdated time.Time `gorm:"not null" json:"last_updated"`

	DiseaseReports    []DiseaseReport    `gorm:"foreignKey:FieldID;constraint:OnDelete:CASCADE" json:"-"`
	IrrigationRecords []IrrigationRecord `gorm:"foreignKey:FieldID;constraint:OnDelete:CASCADE" json:"-"`
	FertilizerRecords []FertilizerRecord `gorm:"foreignKey:FieldID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Field) TableName() string { return "fields" }

func (f *Field) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.LastUpdated.IsZero() {
		f.LastUpdated = time.Now().UTC()
	}
	return nil
}
