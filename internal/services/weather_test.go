package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/farmassist/farmassist-backend/internal/data/documents"
	"github.com/farmassist/farmassist-backend/internal/data/repos"
	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
)

func newWeatherService(t *testing.T) (WeatherService, *countingWeather) {
	t.Helper()
	env := newEnv(t)
	provider := &countingWeather{inner: SimulatedWeatherProvider{}}
	svc := NewWeatherService(env.docs, repos.NewWeatherForecastRepo(env.gdb, env.log), provider, env.log)
	return svc, provider
}

func TestForecastFetchesOnceThenServesCache(t *testing.T) {
	svc, provider := newWeatherService(t)
	ctx := context.Background()

	first, err := svc.Forecast(ctx, "Patna")
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(first) != 7 {
		t.Fatalf("got %d days, want 7", len(first))
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}
	for i := 1; i < len(first); i++ {
		if first[i].ForecastDate < first[i-1].ForecastDate {
			t.Fatalf("forecasts out of order: %s before %s", first[i].ForecastDate, first[i-1].ForecastDate)
		}
	}

	second, err := svc.Forecast(ctx, "Patna")
	if err != nil {
		t.Fatalf("second forecast: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("fresh cache should not refetch, calls = %d", provider.calls)
	}
	if len(second) != 7 || second[0].Location != "Patna" {
		t.Fatalf("unexpected cached result %+v", second[0])
	}
}

func TestForecastLocationsAreIndependent(t *testing.T) {
	svc, provider := newWeatherService(t)
	ctx := context.Background()

	if _, err := svc.Forecast(ctx, "Patna"); err != nil {
		t.Fatalf("forecast Patna: %v", err)
	}
	if _, err := svc.Forecast(ctx, "Nagpur"); err != nil {
		t.Fatalf("forecast Nagpur: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("each location needs its own fetch, calls = %d", provider.calls)
	}
}

func TestForecastRelationalCacheFreshness(t *testing.T) {
	env := newEnv(t)
	docs := documents.New(downStore{}, env.log)
	repo := repos.NewWeatherForecastRepo(env.gdb, env.log)
	provider := &countingWeather{inner: SimulatedWeatherProvider{}}
	svc := NewWeatherService(docs, repo, provider, env.log)
	ctx := context.Background()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	now := time.Now().UTC()
	seed := []*types.WeatherForecast{
		{Location: "Pune", ForecastDate: today, TemperatureMin: 21, TemperatureMax: 31, WeatherDescription: "Clear", UpdatedAt: now},
		{Location: "Pune", ForecastDate: today.AddDate(0, 0, 1), TemperatureMin: 22, TemperatureMax: 32, WeatherDescription: "Clear", UpdatedAt: now},
	}
	if err := repo.ReplaceForLocation(ctx, nil, "Pune", seed); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	cached, err := svc.Forecast(ctx, "Pune")
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("fresh relational cache should not refetch, calls = %d", provider.calls)
	}
	if len(cached) != 2 || cached[0].WeatherDescription != "Clear" {
		t.Fatalf("unexpected cached result %+v", cached)
	}

	stale := []*types.WeatherForecast{
		{Location: "Pune", ForecastDate: today, TemperatureMin: 21, TemperatureMax: 31, WeatherDescription: "Clear", UpdatedAt: now.Add(-2 * forecastMaxAge)},
	}
	if err := repo.ReplaceForLocation(ctx, nil, "Pune", stale); err != nil {
		t.Fatalf("age cache: %v", err)
	}

	refreshed, err := svc.Forecast(ctx, "Pune")
	if err != nil {
		t.Fatalf("stale forecast: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("stale relational cache should refetch once, calls = %d", provider.calls)
	}
	if len(refreshed) != 7 {
		t.Fatalf("got %d refreshed days, want 7", len(refreshed))
	}
	refreshedAt, err := repo.LastRefreshedAt(ctx, nil, "Pune")
	if err != nil {
		t.Fatalf("last refreshed: %v", err)
	}
	if refreshedAt.IsZero() || time.Since(refreshedAt) >= forecastMaxAge {
		t.Fatalf("refresh stamp not updated: %v", refreshedAt)
	}
}

func TestForecastRequiresLocation(t *testing.T) {
	svc, _ := newWeatherService(t)
	if _, err := svc.Forecast(context.Background(), ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
