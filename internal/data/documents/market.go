package documents

import (
	"context"

	"github.com/farmassist/farmassist-backend/internal/docstore"
)

type MarketPrices struct {
	Model
}

func (p *MarketPrices) GetByCropType(ctx context.Context, cropType string) ([]map[string]any, error) {
	return p.List(ctx, docstore.ListOptions{Filters: []docstore.Filter{docstore.Eq("crop_type", cropType)}})
}

// GetLatest returns today's (and newer) observations ordered newest first,
// optionally narrowed to one crop.
func (p *MarketPrices) GetLatest(ctx context.Context, cropType string) ([]map[string]any, error) {
	filters := []docstore.Filter{{Field: "date", Op: ">=", Value: todayISO()}}
	if cropType != "" {
		filters = append([]docstore.Filter{docstore.Eq("crop_type", cropType)}, filters...)
	}
	return p.List(ctx, docstore.ListOptions{Filters: filters, OrderBy: "date", Direction: "desc"})
}

type MarketFavorites struct {
	Model
}

func (f *MarketFavorites) GetByUserID(ctx context.Context, userID string) ([]map[string]any, error) {
	return f.List(ctx, docstore.ListOptions{Filters: []docstore.Filter{docstore.Eq("user_id", userID)}})
}
