package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MarketPrice is one priced observation of a crop at a market on a date.
// Rows are append-only; refreshes insert new observations.
type MarketPrice struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CropType   string    `gorm:"size:50;not null;index" json:"crop_type"`
	MarketName string    `gorm:"size:100;not null" json:"market_name"`
	Price      float64   `gorm:"not null" json:"price"`
	MinPrice   float64   `json:"min_price"`
	MaxPrice   float64   `json:"max_price"`
	Date       time.Time `gorm:"not null;index" json:"date"`
	Source     string    `gorm:"size:100" json:"source"`
}

func (MarketPrice) TableName() string { return "market_prices" }

func (p *MarketPrice) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	return nil
}
