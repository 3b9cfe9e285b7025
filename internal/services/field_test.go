package services

import (
	"context"
	"errors"
	"testing"

	"github.com/farmassist/farmassist-backend/internal/data/repos"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
)

func newFieldService(t *testing.T) (FieldService, *countingSatellite, testEnv) {
	t.Helper()
	env := newEnv(t)
	sat := &countingSatellite{inner: SimulatedSatelliteProvider{}}
	svc := NewFieldService(env.docs, repos.NewFieldRepo(env.gdb, env.log), sat, env.log)
	return svc, sat, env
}

func TestFieldCreateAndList(t *testing.T) {
	svc, _, _ := newFieldService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, FieldInput{
		UserID:       "user-1",
		Name:         "North Paddy",
		Location:     "Patna",
		Area:         2.5,
		CropType:     "Rice",
		SoilType:     "Clay",
		PlantingDate: "2026-06-15",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.PlantingDate != "2026-06-15" {
		t.Fatalf("unexpected record %+v", created)
	}

	if _, err := svc.Create(ctx, FieldInput{UserID: "user-1"}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for missing name, got %v", err)
	}

	fields, err := svc.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(fields) != 1 || fields[0].Name != "North Paddy" {
		t.Fatalf("unexpected list %+v", fields)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CropType != "Rice" {
		t.Fatalf("unexpected field %+v", got)
	}
}

func TestFieldGetUnknownIsNotFound(t *testing.T) {
	svc, _, _ := newFieldService(t)
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMonitorFetchesOnceThenServesCache(t *testing.T) {
	svc, sat, _ := newFieldService(t)
	ctx := context.Background()

	field, err := svc.Create(ctx, FieldInput{UserID: "user-1", Name: "South Plot", CropType: "Wheat"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.Monitor(ctx, field.ID)
	if err != nil {
		t.Fatalf("monitor: %v", err)
	}
	if _, ok := first["ndvi"]; !ok {
		t.Fatalf("snapshot missing ndvi: %+v", first)
	}
	if sat.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", sat.calls)
	}

	second, err := svc.Monitor(ctx, field.ID)
	if err != nil {
		t.Fatalf("second monitor: %v", err)
	}
	if sat.calls != 1 {
		t.Fatalf("cached snapshot should not refetch, calls = %d", sat.calls)
	}
	if second["ndvi"] != first["ndvi"] {
		t.Fatalf("cache returned different snapshot: %v vs %v", second["ndvi"], first["ndvi"])
	}
}
