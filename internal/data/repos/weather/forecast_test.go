package weather

import (
	"context"
	"testing"
	"time"

	"github.com/farmassist/farmassist-backend/internal/data/repos/testutil"
	types "github.com/farmassist/farmassist-backend/internal/domain"
)

func TestForecastReplaceForLocation(t *testing.T) {
	db := testutil.DB(t)
	repo := NewForecastRepo(db, testutil.Logger(t))
	ctx := context.Background()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	old := []*types.WeatherForecast{
		{Location: "Pune", ForecastDate: today, TemperatureMax: 30, UpdatedAt: today.Add(-48 * time.Hour)},
		{Location: "Pune", ForecastDate: today.AddDate(0, 0, 1), TemperatureMax: 31, UpdatedAt: today.Add(-48 * time.Hour)},
		{Location: "Nashik", ForecastDate: today, TemperatureMax: 27, UpdatedAt: today},
	}
	for _, f := range old {
		if err := db.Create(f).Error; err != nil {
			t.Fatalf("seed forecast: %v", err)
		}
	}

	fresh := []*types.WeatherForecast{
		{Location: "Pune", ForecastDate: today, TemperatureMax: 33, UpdatedAt: time.Now().UTC()},
	}
	if err := repo.ReplaceForLocation(ctx, nil, "Pune", fresh); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := repo.GetByLocation(ctx, nil, "Pune", today)
	if err != nil {
		t.Fatalf("get by location: %v", err)
	}
	if len(got) != 1 || got[0].TemperatureMax != 33 {
		t.Fatalf("expected single fresh forecast, got %+v", got)
	}

	other, err := repo.GetByLocation(ctx, nil, "Nashik", today)
	if err != nil || len(other) != 1 {
		t.Fatalf("Nashik cache should survive, got %d (err %v)", len(other), err)
	}
}

func TestForecastLastRefreshedAt(t *testing.T) {
	db := testutil.DB(t)
	repo := NewForecastRepo(db, testutil.Logger(t))
	ctx := context.Background()

	ts, err := repo.LastRefreshedAt(ctx, nil, "Pune")
	if err != nil {
		t.Fatalf("last refreshed: %v", err)
	}
	if !ts.IsZero() {
		t.Fatalf("expected zero time for empty cache, got %v", ts)
	}

	refreshed := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	f := &types.WeatherForecast{Location: "Pune", ForecastDate: refreshed, UpdatedAt: refreshed}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	ts, err = repo.LastRefreshedAt(ctx, nil, "Pune")
	if err != nil {
		t.Fatalf("last refreshed: %v", err)
	}
	if !ts.Equal(refreshed) {
		t.Fatalf("expected %v, got %v", refreshed, ts)
	}
}
