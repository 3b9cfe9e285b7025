package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/farmassist/farmassist-backend/internal/data/fallback"
	"github.com/farmassist/farmassist-backend/internal/data/repos"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
)

func newAdvisoryService(t *testing.T, ai *fakeAI) (AdvisoryService, FieldService, testEnv) {
	t.Helper()
	env := newEnv(t)
	fieldRepo := repos.NewFieldRepo(env.gdb, env.log)
	advisory := NewAdvisoryService(env.docs, fieldRepo,
		repos.NewIrrigationRecordRepo(env.gdb, env.log),
		repos.NewFertilizerRecordRepo(env.gdb, env.log),
		ai, env.log)
	fields := NewFieldService(env.docs, fieldRepo, SimulatedSatelliteProvider{}, env.log)
	return advisory, fields, env
}

func TestFertilizerRecommendationsFromAI(t *testing.T) {
	ai := &fakeAI{textReply: "Apply 120 kg/ha urea split over two dressings."}
	advisory, fields, _ := newAdvisoryService(t, ai)
	ctx := context.Background()

	field, err := fields.Create(ctx, FieldInput{UserID: "user-1", Name: "East Plot", CropType: "Wheat", SoilType: "Loam"})
	if err != nil {
		t.Fatalf("create field: %v", err)
	}

	advice, err := advisory.FertilizerRecommendations(ctx, field.ID)
	if err != nil {
		t.Fatalf("recommendations: %v", err)
	}
	if advice.GeneratedBy != GeneratedByAI {
		t.Fatalf("generated_by = %q, want AI", advice.GeneratedBy)
	}
	if advice.CropType != "Wheat" || advice.FieldID != field.ID {
		t.Fatalf("unexpected advice %+v", advice)
	}
	if advice.Recommendations != "Apply 120 kg/ha urea split over two dressings." {
		t.Fatalf("unexpected recommendations %v", advice.Recommendations)
	}
}

func TestFertilizerRecommendationsRuleFallback(t *testing.T) {
	advisory, fields, _ := newAdvisoryService(t, &fakeAI{textErr: fmt.Errorf("model not found")})
	ctx := context.Background()

	field, err := fields.Create(ctx, FieldInput{UserID: "user-1", Name: "Paddy", CropType: "Basmati Rice"})
	if err != nil {
		t.Fatalf("create field: %v", err)
	}

	advice, err := advisory.FertilizerRecommendations(ctx, field.ID)
	if err != nil {
		t.Fatalf("recommendations: %v", err)
	}
	if advice.GeneratedBy != GeneratedByRules {
		t.Fatalf("generated_by = %q, want rules", advice.GeneratedBy)
	}
	table, ok := advice.Recommendations.(map[string]string)
	if !ok {
		t.Fatalf("recommendations type %T", advice.Recommendations)
	}
	if table["npk_ratio"] != "14-14-14" {
		t.Fatalf("npk_ratio = %q, want the rice row", table["npk_ratio"])
	}
}

func TestRuleFertilizerTable(t *testing.T) {
	if got := ruleFertilizer("Wheat")["npk_ratio"]; got != "12-32-16" {
		t.Fatalf("wheat npk = %q", got)
	}
	if got := ruleFertilizer("cotton")["npk_ratio"]; got != "20-10-10" {
		t.Fatalf("cotton npk = %q", got)
	}
	if got := ruleFertilizer("maize")["npk_ratio"]; got != "15-15-15" {
		t.Fatalf("generic npk = %q", got)
	}
	if got := ruleFertilizer("")["npk_ratio"]; !strings.HasPrefix(got, "Unknown") {
		t.Fatalf("missing-crop npk = %q", got)
	}
}

func TestFertilizerPromptIncludesContext(t *testing.T) {
	field := fallback.FieldRecord{
		ID:           "field-1",
		CropType:     "Cotton",
		SoilType:     "Black",
		PlantingDate: "2026-06-01",
		Area:         3,
		SatelliteData: map[string]any{
			"ndvi":         0.65,
			"field_health": "Fair",
			"crop_stage":   "Flowering",
		},
	}
	applications := []fallback.FertilizerRecord{
		{Date: "2026-08-01", FertilizerType: "DAP", ApplicationRate: 100},
	}

	prompt := fertilizerPrompt(field, applications)
	for _, want := range []string{
		"- Crop Type: Cotton",
		"- Soil Type: Black",
		"- Field Size: 3 hectares",
		"- Current NDVI: 0.65",
		"Recent Fertilizer Applications:",
		"- 2026-08-01: DAP at 100 kg/ha",
		"Application rates in kg/hectare",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestIrrigationLogAndList(t *testing.T) {
	advisory, _, _ := newAdvisoryService(t, &fakeAI{})
	ctx := context.Background()

	first, err := advisory.LogIrrigation(ctx, IrrigationInput{
		FieldID: "field-1",
		Date:    "2026-08-20",
		Amount:  25,
		Method:  "drip",
	})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if first.ID == "" || first.Date != "2026-08-20" {
		t.Fatalf("unexpected record %+v", first)
	}
	if _, err := advisory.LogIrrigation(ctx, IrrigationInput{FieldID: "field-1", Date: "2026-08-25", Amount: 30}); err != nil {
		t.Fatalf("second log: %v", err)
	}

	records, err := advisory.ListIrrigation(ctx, "field-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Date != "2026-08-25" {
		t.Fatalf("expected newest first, got %s", records[0].Date)
	}
}

func TestLogIrrigationValidation(t *testing.T) {
	advisory, _, _ := newAdvisoryService(t, &fakeAI{})
	ctx := context.Background()

	if _, err := advisory.LogIrrigation(ctx, IrrigationInput{FieldID: "field-1"}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for missing amount, got %v", err)
	}
	if _, err := advisory.LogIrrigation(ctx, IrrigationInput{FieldID: "field-1", Amount: 10, Date: "20-08-2026"}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for bad date, got %v", err)
	}
}
