package services

import (
	"context"
	"errors"
	"testing"

	"github.com/farmassist/farmassist-backend/internal/data/repos"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
)

func newMarketService(t *testing.T) (MarketService, *countingMarket) {
	t.Helper()
	env := newEnv(t)
	provider := &countingMarket{inner: SimulatedMarketProvider{}}
	svc := NewMarketService(env.docs,
		repos.NewMarketPriceRepo(env.gdb, env.log),
		repos.NewMarketFavoriteRepo(env.gdb, env.log),
		provider, env.log)
	return svc, provider
}

func TestPricesInsertOnMissThenServeStored(t *testing.T) {
	svc, provider := newMarketService(t)
	ctx := context.Background()

	first, err := svc.Prices(ctx, "Rice")
	if err != nil {
		t.Fatalf("prices: %v", err)
	}
	if len(first) != 5 {
		t.Fatalf("got %d quotes, want 5 markets", len(first))
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}
	for _, rec := range first {
		if rec.CropType != "Rice" {
			t.Fatalf("unexpected crop %q", rec.CropType)
		}
		if rec.Source != "eNAM (simulated)" {
			t.Fatalf("unexpected source %q", rec.Source)
		}
	}

	second, err := svc.Prices(ctx, "Rice")
	if err != nil {
		t.Fatalf("second prices: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("today's stored prices should answer, calls = %d", provider.calls)
	}
	if len(second) != 5 {
		t.Fatalf("got %d stored quotes, want 5", len(second))
	}
}

func TestPricesAllCrops(t *testing.T) {
	svc, _ := newMarketService(t)
	records, err := svc.Prices(context.Background(), "")
	if err != nil {
		t.Fatalf("prices: %v", err)
	}
	if len(records) != 25 {
		t.Fatalf("got %d quotes, want 5 crops x 5 markets", len(records))
	}
}

func TestFavoriteLifecycle(t *testing.T) {
	svc, _ := newMarketService(t)
	ctx := context.Background()

	max := 2200.0
	fav, err := svc.AddFavorite(ctx, FavoriteInput{
		UserID:        "user-1",
		CropType:      "Wheat",
		MarketName:    "Delhi",
		PriceAlertMax: &max,
	})
	if err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	if fav.ID == "" || fav.PriceAlertMax == nil || *fav.PriceAlertMax != 2200 {
		t.Fatalf("unexpected favorite %+v", fav)
	}

	if _, err := svc.AddFavorite(ctx, FavoriteInput{UserID: "user-1", CropType: "Wheat"}); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	favorites, err := svc.ListFavorites(ctx, "user-1")
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(favorites) != 1 {
		t.Fatalf("got %d favorites, want 1", len(favorites))
	}

	if err := svc.RemoveFavorite(ctx, fav.ID); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}
	favorites, err = svc.ListFavorites(ctx, "user-1")
	if err != nil {
		t.Fatalf("list after remove: %v", err)
	}
	if len(favorites) != 0 {
		t.Fatalf("favorite not removed: %+v", favorites)
	}
}

func TestAddFavoriteValidation(t *testing.T) {
	svc, _ := newMarketService(t)
	if _, err := svc.AddFavorite(context.Background(), FavoriteInput{UserID: "user-1"}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
