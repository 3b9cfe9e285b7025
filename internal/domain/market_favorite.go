package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MarketFavorite is a user's crop/market price-alert subscription. The alert
// bounds are optional; nil means no alert on that side.
type MarketFavorite struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CropType      string    `gorm:"size:50;not null" json:"crop_type"`
	MarketName    string    `gorm:"size:100" json:"market_name"`
	PriceAlertMin *float64  `json:"price_alert_min"`
	PriceAlertMax *float64  `json:"price_alert_max"`
}

func (MarketFavorite) TableName() string { return "market_favorites" }

func (f *MarketFavorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
