package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"
)

// ForecastDay is one day of provider weather data.
type ForecastDay struct {
	Date          string  `json:"date"`
	TempMin       float64 `json:"temp_min"`
	TempMax       float64 `json:"temp_max"`
	Humidity      float64 `json:"humidity"`
	Precipitation float64 `json:"precipitation"`
	WindSpeed     float64 `json:"wind_speed"`
	Description   string  `json:"description"`
}

// WeatherProvider fetches a 7-day forecast for a location.
type WeatherProvider interface {
	Fetch(ctx context.Context, location string) ([]ForecastDay, error)
}

// SatelliteProvider fetches a field-monitoring snapshot (ndvi,
// field_health, time_series, anomalies).
type SatelliteProvider interface {
	Fetch(ctx context.Context, fieldID string) (map[string]any, error)
}

// PriceQuote is one provider market observation.
type PriceQuote struct {
	CropType   string
	MarketName string
	Price      float64
	MinPrice   float64
	MaxPrice   float64
	Source     string
}

// MarketProvider fetches current quotes, optionally narrowed to a crop.
type MarketProvider interface {
	Fetch(ctx context.Context, cropType string) ([]PriceQuote, error)
}

// The simulated providers stand in for the real Farmonaut / weather /
// eNAM integrations. Values are deterministic per input so refreshes
// are stable within a day.

type SimulatedWeatherProvider struct{}

func (SimulatedWeatherProvider) Fetch(ctx context.Context, location string) ([]ForecastDay, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	days := make([]ForecastDay, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, ForecastDay{
			Date:          today.AddDate(0, 0, i).Format("2006-01-02"),
			TempMin:       float64(20 + i),
			TempMax:       float64(30 + i),
			Humidity:      float64(65 - i),
			Precipitation: 0.1 * float64(i),
			WindSpeed:     float64(10 + i%5),
			Description:   "Partly cloudy",
		})
	}
	return days, nil
}

type SimulatedSatelliteProvider struct{}

func (SimulatedSatelliteProvider) Fetch(ctx context.Context, fieldID string) (map[string]any, error) {
	now := time.Now().UTC()
	ndvi := float64(now.Day()%5)*0.1 + 0.5

	health := "Fair"
	if ndvi > 0.7 {
		health = "Good"
	}
	series := make([]map[string]any, 0, 6)
	for i := 0; i < 6; i++ {
		value := ndvi - float64(i)*0.05
		if value < 0.2 {
			value = 0.2
		}
		series = append(series, map[string]any{
			"date": now.AddDate(0, 0, -i*7).Format("2006-01-02"),
			"ndvi": value,
		})
	}
	data := map[string]any{
		"ndvi":            ndvi,
		"field_health":    health,
		"last_updated":    now.Format("2006-01-02"),
		"time_series":     series,
		"crop_stage":      "Vegetative",
		"estimated_yield": fmt.Sprintf("%d%%", 70+int(ndvi*30)),
		"anomalies":       []map[string]any{},
	}
	if ndvi < 0.6 {
		data["anomalies"] = []map[string]any{{
			"type":           "Low NDVI",
			"location":       "North-East section",
			"severity":       "Moderate",
			"recommendation": "Check for water stress or nutrient deficiency",
		}}
	}
	return data, nil
}

type SimulatedMarketProvider struct{}

var (
	simulatedCrops   = []string{"Rice", "Wheat", "Cotton", "Sugarcane", "Maize"}
	simulatedMarkets = []string{"Delhi", "Mumbai", "Kolkata", "Chennai", "Lucknow"}
)

func (SimulatedMarketProvider) Fetch(ctx context.Context, cropType string) ([]PriceQuote, error) {
	var quotes []PriceQuote
	for _, crop := range simulatedCrops {
		if cropType != "" && crop != cropType {
			continue
		}
		base := 1500 + float64(stableHash(crop)%1000)
		for _, market := range simulatedMarkets {
			quotes = append(quotes, PriceQuote{
				CropType:   crop,
				MarketName: market,
				Price:      base + float64(stableHash(market)%200),
				MinPrice:   base - 100,
				MaxPrice:   base + 300,
				Source:     "eNAM (simulated)",
			})
		}
	}
	return quotes, nil
}

func stableHash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
