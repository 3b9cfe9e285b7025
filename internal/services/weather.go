package services

import (
	"context"
	"fmt"
	"time"

	"github.com/farmassist/farmassist-backend/internal/data/documents"
	"github.com/farmassist/farmassist-backend/internal/data/fallback"
	"github.com/farmassist/farmassist-backend/internal/data/repos"
	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

// forecastMaxAge is how long a location's cached forecasts are served
// before a provider refresh.
const forecastMaxAge = 24 * time.Hour

type WeatherService interface {
	// Forecast returns the 7-day outlook for a location, refreshing the
	// cache when it is older than a day.
	Forecast(ctx context.Context, location string) ([]fallback.ForecastRecord, error)
}

type weatherService struct {
	docs         *documents.Documents
	forecastRepo repos.WeatherForecastRepo
	provider     WeatherProvider
	log          *logger.Logger
}

func NewWeatherService(docs *documents.Documents, forecastRepo repos.WeatherForecastRepo, provider WeatherProvider, baseLog *logger.Logger) WeatherService {
	return &weatherService{
		docs:         docs,
		forecastRepo: forecastRepo,
		provider:     provider,
		log:          baseLog.With("service", "WeatherService"),
	}
}

func (ws *weatherService) Forecast(ctx context.Context, location string) ([]fallback.ForecastRecord, error) {
	if location == "" {
		return nil, fmt.Errorf("location is required: %w", apperr.ErrInvalidArgument)
	}

	cached, backend, err := ws.load(ctx, location)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 && ws.fresh(ctx, backend, location, cached[0].UpdatedAt) {
		return cached, nil
	}

	days, err := ws.provider.Fetch(ctx, location)
	if err != nil {
		if len(cached) > 0 {
			ws.log.Warn("provider fetch failed, serving stale cache", "location", location, "error", err)
			return cached, nil
		}
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}

	if err := ws.store(ctx, backend, location, days); err != nil {
		ws.log.Warn("failed to refresh forecast cache", "location", location, "backend", backend, "error", err)
	}

	refreshed, _, err := ws.load(ctx, location)
	if err == nil && len(refreshed) > 0 {
		return refreshed, nil
	}

	// Cache write failed; answer from the provider payload directly.
	now := time.Now().UTC().Format(time.RFC3339)
	records := make([]fallback.ForecastRecord, 0, len(days))
	for _, day := range days {
		records = append(records, fallback.ForecastRecord{
			Location:           location,
			ForecastDate:       day.Date,
			TemperatureMin:     day.TempMin,
			TemperatureMax:     day.TempMax,
			Humidity:           day.Humidity,
			Precipitation:      day.Precipitation,
			WindSpeed:          day.WindSpeed,
			WeatherDescription: day.Description,
			UpdatedAt:          now,
		})
	}
	return records, nil
}

// fresh reports whether a location's cache is younger than the refresh
// window. The relational store is asked directly for its last refresh
// stamp; document records carry theirs inline.
func (ws *weatherService) fresh(ctx context.Context, backend, location, updatedAt string) bool {
	if backend == fallback.BackendRelational {
		refreshedAt, err := ws.forecastRepo.LastRefreshedAt(ctx, nil, location)
		if err != nil {
			ws.log.Warn("failed to read last refresh time", "location", location, "error", err)
			return false
		}
		return !refreshedAt.IsZero() && time.Since(refreshedAt) < forecastMaxAge
	}
	return freshEnough(updatedAt, forecastMaxAge)
}

func (ws *weatherService) load(ctx context.Context, location string) ([]fallback.ForecastRecord, string, error) {
	return fallback.Try(ctx, ws.log, "weather.load",
		func(ctx context.Context) ([]fallback.ForecastRecord, error) {
			docs, err := ws.docs.WeatherForecasts.GetByLocation(ctx, location)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.ForecastRecord, 0, len(docs))
			for _, doc := range docs {
				out = append(out, fallback.ForecastFromDoc(doc))
			}
			return out, nil
		},
		func(ctx context.Context) ([]fallback.ForecastRecord, error) {
			today := time.Now().UTC().Truncate(24 * time.Hour)
			rows, err := ws.forecastRepo.GetByLocation(ctx, nil, location, today)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.ForecastRecord, 0, len(rows))
			for _, row := range rows {
				out = append(out, fallback.ForecastFromRow(row))
			}
			return out, nil
		})
}

func (ws *weatherService) store(ctx context.Context, backend, location string, days []ForecastDay) error {
	now := time.Now().UTC()
	if backend == fallback.BackendRelational {
		rows := make([]*types.WeatherForecast, 0, len(days))
		for _, day := range days {
			date, err := time.Parse("2006-01-02", day.Date)
			if err != nil {
				return fmt.Errorf("malformed provider date %q: %w", day.Date, err)
			}
			rows = append(rows, &types.WeatherForecast{
				Location:           location,
				ForecastDate:       date,
				TemperatureMin:     day.TempMin,
				TemperatureMax:     day.TempMax,
				Humidity:           day.Humidity,
				Precipitation:      day.Precipitation,
				WindSpeed:          day.WindSpeed,
				WeatherDescription: day.Description,
				UpdatedAt:          now,
			})
		}
		return ws.forecastRepo.ReplaceForLocation(ctx, nil, location, rows)
	}

	if err := ws.docs.WeatherForecasts.DeleteByLocation(ctx, location); err != nil {
		return err
	}
	stamp := now.Format(time.RFC3339)
	for _, day := range days {
		_, err := ws.docs.WeatherForecasts.Create(ctx, map[string]any{
			"location":            location,
			"forecast_date":       day.Date,
			"temperature_min":     day.TempMin,
			"temperature_max":     day.TempMax,
			"humidity":            day.Humidity,
			"precipitation":       day.Precipitation,
			"wind_speed":          day.WindSpeed,
			"weather_description": day.Description,
			"updated_at":          stamp,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
