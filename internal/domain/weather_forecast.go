package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WeatherForecast is a cached location/date forecast snapshot. UpdatedAt is
// the cache freshness marker, not a row-version timestamp.
type WeatherForecast struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Location           string    `gorm:"size:100;not null;index" json:"location"`
	ForecastDate       time.Time `gorm:"not null" json:"forecast_date"`
	TemperatureMin     float64   `json:"temperature_min"`
	TemperatureMax     float64   `json:"temperature_max"`
	Humidity           float64   `json:"humidity"`
	Precipitation      float64   `json:"precipitation"`
	WindSpeed          float64   `json:"wind_speed"`
	WeatherDescription string    `gorm:"size:100" json:"weather_description"`
	// autoUpdateTime is off: this column records when the forecast was
	// fetched from the provider, not when the row was last written.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
}

func (WeatherForecast) TableName() string { return "weather_forecasts" }

func (w *WeatherForecast) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
