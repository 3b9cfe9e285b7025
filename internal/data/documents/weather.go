package documents

import (
	"context"

	"github.com/farmassist/farmassist-backend/internal/docstore"
)

type WeatherForecasts struct {
	Model
}

// GetByLocation returns the still-relevant forecasts (date >= today) for a
// location, soonest first.
func (w *WeatherForecasts) GetByLocation(ctx context.Context, location string) ([]map[string]any, error) {
	return w.List(ctx, docstore.ListOptions{
		Filters: []docstore.Filter{
			docstore.Eq("location", location),
			{Field: "forecast_date", Op: ">=", Value: todayISO()},
		},
		OrderBy: "forecast_date",
	})
}

// DeleteByLocation removes every forecast for a location. Refreshing a
// location's cache is delete-then-recreate, not an incremental upsert.
func (w *WeatherForecasts) DeleteByLocation(ctx context.Context, location string) error {
	docs, err := w.List(ctx, docstore.ListOptions{Filters: []docstore.Filter{docstore.Eq("location", location)}})
	if err != nil {
		return err
	}
	for _, doc := range docs {
		id, _ := doc["id"].(string)
		if id == "" {
			continue
		}
		if err := w.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
