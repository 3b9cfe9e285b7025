package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/farmassist/farmassist-backend/internal/data/documents"
	"github.com/farmassist/farmassist-backend/internal/data/fallback"
	"github.com/farmassist/farmassist-backend/internal/data/repos"
	"github.com/farmassist/farmassist-backend/internal/docstore"
	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

type FavoriteInput struct {
	UserID        string   `json:"user_id"`
	CropType      string   `json:"crop_type"`
	MarketName    string   `json:"market_name"`
	PriceAlertMin *float64 `json:"price_alert_min"`
	PriceAlertMax *float64 `json:"price_alert_max"`
}

type MarketService interface {
	// Prices answers from today's stored observations, then the newest
	// historical ones, and only then asks the provider (storing what it
	// returns).
	Prices(ctx context.Context, cropType string) ([]fallback.PriceRecord, error)
	ListFavorites(ctx context.Context, userID string) ([]fallback.FavoriteRecord, error)
	AddFavorite(ctx context.Context, in FavoriteInput) (fallback.FavoriteRecord, error)
	RemoveFavorite(ctx context.Context, favoriteID string) error
}

type marketService struct {
	docs         *documents.Documents
	priceRepo    repos.MarketPriceRepo
	favoriteRepo repos.MarketFavoriteRepo
	provider     MarketProvider
	log          *logger.Logger
}

func NewMarketService(docs *documents.Documents, priceRepo repos.MarketPriceRepo, favoriteRepo repos.MarketFavoriteRepo, provider MarketProvider, baseLog *logger.Logger) MarketService {
	return &marketService{
		docs:         docs,
		priceRepo:    priceRepo,
		favoriteRepo: favoriteRepo,
		provider:     provider,
		log:          baseLog.With("service", "MarketService"),
	}
}

func (ms *marketService) Prices(ctx context.Context, cropType string) ([]fallback.PriceRecord, error) {
	today, backend, err := ms.loadLatest(ctx, cropType)
	if err != nil {
		return nil, err
	}
	if len(today) > 0 {
		return today, nil
	}

	if cropType != "" {
		history, err := ms.loadHistory(ctx, cropType)
		if err != nil {
			return nil, err
		}
		if latest := newestDateOnly(history); len(latest) > 0 {
			return latest, nil
		}
	}

	quotes, err := ms.provider.Fetch(ctx, cropType)
	if err != nil {
		return nil, fmt.Errorf("fetch market prices: %w", err)
	}
	records, err := ms.storeQuotes(ctx, backend, quotes)
	if err != nil {
		ms.log.Warn("failed to store provider quotes", "crop_type", cropType, "backend", backend, "error", err)
	}
	return records, nil
}

func (ms *marketService) loadLatest(ctx context.Context, cropType string) ([]fallback.PriceRecord, string, error) {
	return fallback.Try(ctx, ms.log, "market.prices",
		func(ctx context.Context) ([]fallback.PriceRecord, error) {
			docs, err := ms.docs.MarketPrices.GetLatest(ctx, cropType)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.PriceRecord, 0, len(docs))
			for _, doc := range docs {
				out = append(out, fallback.PriceFromDoc(doc))
			}
			return out, nil
		},
		func(ctx context.Context) ([]fallback.PriceRecord, error) {
			today := time.Now().UTC().Truncate(24 * time.Hour)
			rows, err := ms.priceRepo.GetLatest(ctx, nil, cropType, today)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.PriceRecord, 0, len(rows))
			for _, row := range rows {
				out = append(out, fallback.PriceFromRow(row))
			}
			return out, nil
		})
}

func (ms *marketService) loadHistory(ctx context.Context, cropType string) ([]fallback.PriceRecord, error) {
	records, _, err := fallback.Try(ctx, ms.log, "market.history",
		func(ctx context.Context) ([]fallback.PriceRecord, error) {
			docs, err := ms.docs.MarketPrices.GetByCropType(ctx, cropType)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.PriceRecord, 0, len(docs))
			for _, doc := range docs {
				out = append(out, fallback.PriceFromDoc(doc))
			}
			return out, nil
		},
		func(ctx context.Context) ([]fallback.PriceRecord, error) {
			rows, err := ms.priceRepo.GetByCropType(ctx, nil, cropType)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.PriceRecord, 0, len(rows))
			for _, row := range rows {
				out = append(out, fallback.PriceFromRow(row))
			}
			return out, nil
		})
	return records, err
}

// newestDateOnly keeps the observations sharing the most recent date.
func newestDateOnly(records []fallback.PriceRecord) []fallback.PriceRecord {
	newest := ""
	for _, rec := range records {
		if rec.Date > newest {
			newest = rec.Date
		}
	}
	if newest == "" {
		return nil
	}
	var out []fallback.PriceRecord
	for _, rec := range records {
		if rec.Date == newest {
			out = append(out, rec)
		}
	}
	return out
}

func (ms *marketService) storeQuotes(ctx context.Context, backend string, quotes []PriceQuote) ([]fallback.PriceRecord, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	records := make([]fallback.PriceRecord, 0, len(quotes))

	if backend == fallback.BackendRelational {
		var firstErr error
		for _, q := range quotes {
			row, err := ms.priceRepo.Create(ctx, nil, &types.MarketPrice{
				CropType:   q.CropType,
				MarketName: q.MarketName,
				Price:      q.Price,
				MinPrice:   q.MinPrice,
				MaxPrice:   q.MaxPrice,
				Date:       today,
				Source:     q.Source,
			})
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			records = append(records, fallback.PriceFromRow(row))
		}
		return records, firstErr
	}

	dateISO := today.Format("2006-01-02")
	var firstErr error
	for _, q := range quotes {
		doc, err := ms.docs.MarketPrices.Create(ctx, map[string]any{
			"crop_type":   q.CropType,
			"market_name": q.MarketName,
			"price":       q.Price,
			"min_price":   q.MinPrice,
			"max_price":   q.MaxPrice,
			"date":        dateISO,
			"source":      q.Source,
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		records = append(records, fallback.PriceFromDoc(doc))
	}
	return records, firstErr
}

func (ms *marketService) ListFavorites(ctx context.Context, userID string) ([]fallback.FavoriteRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required: %w", apperr.ErrInvalidArgument)
	}
	records, _, err := fallback.Try(ctx, ms.log, "market.favorites",
		func(ctx context.Context) ([]fallback.FavoriteRecord, error) {
			docs, err := ms.docs.MarketFavorites.GetByUserID(ctx, userID)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.FavoriteRecord, 0, len(docs))
			for _, doc := range docs {
				out = append(out, fallback.FavoriteFromDoc(doc))
			}
			return out, nil
		},
		func(ctx context.Context) ([]fallback.FavoriteRecord, error) {
			id, err := uuid.Parse(userID)
			if err != nil {
				return nil, fmt.Errorf("malformed user id: %w", apperr.ErrInvalidArgument)
			}
			rows, err := ms.favoriteRepo.GetByUserID(ctx, nil, id)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.FavoriteRecord, 0, len(rows))
			for _, row := range rows {
				out = append(out, fallback.FavoriteFromRow(row))
			}
			return out, nil
		})
	return records, err
}

func (ms *marketService) AddFavorite(ctx context.Context, in FavoriteInput) (fallback.FavoriteRecord, error) {
	if in.UserID == "" || in.CropType == "" {
		return fallback.FavoriteRecord{}, fmt.Errorf("user_id and crop_type are required: %w", apperr.ErrInvalidArgument)
	}

	record, backend, err := fallback.Try(ctx, ms.log, "market.favorite.add",
		func(ctx context.Context) (fallback.FavoriteRecord, error) {
			existing, err := ms.docs.MarketFavorites.List(ctx, docstore.ListOptions{Filters: []docstore.Filter{
				docstore.Eq("user_id", in.UserID),
				docstore.Eq("crop_type", in.CropType),
			}})
			if err != nil {
				return fallback.FavoriteRecord{}, err
			}
			if len(existing) > 0 {
				return fallback.FavoriteRecord{}, fmt.Errorf("crop %q already favorited: %w", in.CropType, apperr.ErrAlreadyExists)
			}
			doc := map[string]any{
				"user_id":     in.UserID,
				"crop_type":   in.CropType,
				"market_name": in.MarketName,
			}
			if in.PriceAlertMin != nil {
				doc["price_alert_min"] = *in.PriceAlertMin
			}
			if in.PriceAlertMax != nil {
				doc["price_alert_max"] = *in.PriceAlertMax
			}
			created, err := ms.docs.MarketFavorites.Create(ctx, doc)
			if err != nil {
				return fallback.FavoriteRecord{}, err
			}
			return fallback.FavoriteFromDoc(created), nil
		},
		func(ctx context.Context) (fallback.FavoriteRecord, error) {
			userID, err := uuid.Parse(in.UserID)
			if err != nil {
				return fallback.FavoriteRecord{}, fmt.Errorf("malformed user id: %w", apperr.ErrInvalidArgument)
			}
			if _, err := ms.favoriteRepo.GetByUserAndCrop(ctx, nil, userID, in.CropType); err == nil {
				return fallback.FavoriteRecord{}, fmt.Errorf("crop %q already favorited: %w", in.CropType, apperr.ErrAlreadyExists)
			} else if !errors.Is(err, apperr.ErrNotFound) {
				return fallback.FavoriteRecord{}, err
			}
			row, err := ms.favoriteRepo.Create(ctx, nil, &types.MarketFavorite{
				UserID:        userID,
				CropType:      in.CropType,
				MarketName:    in.MarketName,
				PriceAlertMin: in.PriceAlertMin,
				PriceAlertMax: in.PriceAlertMax,
			})
			if err != nil {
				return fallback.FavoriteRecord{}, err
			}
			return fallback.FavoriteFromRow(row), nil
		})
	if err != nil {
		return fallback.FavoriteRecord{}, err
	}
	ms.log.Info("favorite added", "user_id", in.UserID, "crop_type", in.CropType, "backend", backend)
	return record, nil
}

func (ms *marketService) RemoveFavorite(ctx context.Context, favoriteID string) error {
	if favoriteID == "" {
		return fmt.Errorf("favorite id is required: %w", apperr.ErrInvalidArgument)
	}
	_, _, err := fallback.Try(ctx, ms.log, "market.favorite.remove",
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, ms.docs.MarketFavorites.Delete(ctx, favoriteID)
		},
		func(ctx context.Context) (struct{}, error) {
			id, err := uuid.Parse(favoriteID)
			if err != nil {
				return struct{}{}, fmt.Errorf("malformed favorite id: %w", apperr.ErrInvalidArgument)
			}
			return struct{}{}, ms.favoriteRepo.Delete(ctx, nil, id)
		})
	return err
}
