package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/farmassist/farmassist-backend/internal/clients/genai"
	"github.com/farmassist/farmassist-backend/internal/data/documents"
	"github.com/farmassist/farmassist-backend/internal/data/fallback"
	"github.com/farmassist/farmassist-backend/internal/data/repos"
	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

// recentApplications caps how many past fertilizer applications feed
// the recommendation prompt.
const recentApplications = 3

type FertilizerAdvice struct {
	FieldID         string `json:"field_id"`
	CropType        string `json:"crop_type"`
	Recommendations any    `json:"recommendations"`
	GeneratedBy     string `json:"generated_by"`
}

type IrrigationInput struct {
	FieldID  string  `json:"field_id"`
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Method   string  `json:"method"`
	Duration int     `json:"duration"`
	Notes    string  `json:"notes"`
}

type AdvisoryService interface {
	// FertilizerRecommendations builds advice from the field's crop,
	// soil, satellite snapshot and recent applications; the rule-based
	// NPK table answers when the AI path fails.
	FertilizerRecommendations(ctx context.Context, fieldID string) (FertilizerAdvice, error)
	LogIrrigation(ctx context.Context, in IrrigationInput) (fallback.IrrigationRecord, error)
	ListIrrigation(ctx context.Context, fieldID string) ([]fallback.IrrigationRecord, error)
}

type advisoryService struct {
	docs           *documents.Documents
	fieldRepo      repos.FieldRepo
	irrigationRepo repos.IrrigationRecordRepo
	fertilizerRepo repos.FertilizerRecordRepo
	ai             genai.Client
	log            *logger.Logger
}

func NewAdvisoryService(docs *documents.Documents, fieldRepo repos.FieldRepo, irrigationRepo repos.IrrigationRecordRepo, fertilizerRepo repos.FertilizerRecordRepo, ai genai.Client, baseLog *logger.Logger) AdvisoryService {
	return &advisoryService{
		docs:           docs,
		fieldRepo:      fieldRepo,
		irrigationRepo: irrigationRepo,
		fertilizerRepo: fertilizerRepo,
		ai:             ai,
		log:            baseLog.With("service", "AdvisoryService"),
	}
}

func (av *advisoryService) FertilizerRecommendations(ctx context.Context, fieldID string) (FertilizerAdvice, error) {
	if fieldID == "" {
		return FertilizerAdvice{}, fmt.Errorf("field_id is required: %w", apperr.ErrInvalidArgument)
	}
	field, _, err := fallback.Try(ctx, av.log, "advisory.field",
		func(ctx context.Context) (fallback.FieldRecord, error) {
			doc, err := av.docs.Fields.Get(ctx, fieldID)
			if err != nil {
				return fallback.FieldRecord{}, err
			}
			return fallback.FieldFromDoc(doc), nil
		},
		func(ctx context.Context) (fallback.FieldRecord, error) {
			id, err := uuid.Parse(fieldID)
			if err != nil {
				return fallback.FieldRecord{}, fmt.Errorf("malformed field id: %w", apperr.ErrInvalidArgument)
			}
			row, err := av.fieldRepo.GetByID(ctx, nil, id)
			if err != nil {
				return fallback.FieldRecord{}, err
			}
			return fallback.FieldFromRow(row), nil
		})
	if err != nil {
		return FertilizerAdvice{}, err
	}

	applications := av.recentFertilizer(ctx, fieldID)

	advice := FertilizerAdvice{FieldID: field.ID, CropType: field.CropType}
	completion, err := av.ai.GenerateText(ctx, fertilizerPrompt(field, applications))
	if err == nil && strings.TrimSpace(completion) != "" {
		advice.Recommendations = strings.TrimSpace(completion)
		advice.GeneratedBy = GeneratedByAI
		return advice, nil
	}
	if err != nil {
		av.log.Warn("ai recommendation failed, using rule table", "field_id", fieldID, "error", err)
	}
	advice.Recommendations = ruleFertilizer(field.CropType)
	advice.GeneratedBy = GeneratedByRules
	return advice, nil
}

func (av *advisoryService) recentFertilizer(ctx context.Context, fieldID string) []fallback.FertilizerRecord {
	records, _, err := fallback.Try(ctx, av.log, "advisory.recent_applications",
		func(ctx context.Context) ([]fallback.FertilizerRecord, error) {
			docs, err := av.docs.FertilizerRecords.GetRecent(ctx, fieldID, recentApplications)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.FertilizerRecord, 0, len(docs))
			for _, doc := range docs {
				out = append(out, fallback.FertilizerFromDoc(doc))
			}
			return out, nil
		},
		func(ctx context.Context) ([]fallback.FertilizerRecord, error) {
			id, err := uuid.Parse(fieldID)
			if err != nil {
				return nil, fmt.Errorf("malformed field id: %w", apperr.ErrInvalidArgument)
			}
			rows, err := av.fertilizerRepo.GetRecent(ctx, nil, id, recentApplications)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.FertilizerRecord, 0, len(rows))
			for _, row := range rows {
				out = append(out, fallback.FertilizerFromRow(row))
			}
			return out, nil
		})
	if err != nil {
		av.log.Warn("failed to load recent applications", "field_id", fieldID, "error", err)
		return nil
	}
	return records
}

func fertilizerPrompt(field fallback.FieldRecord, applications []fallback.FertilizerRecord) string {
	var b strings.Builder
	b.WriteString("Field Information:\n")
	fmt.Fprintf(&b, "- Crop Type: %s\n", orUnknown(field.CropType))
	fmt.Fprintf(&b, "- Soil Type: %s\n", orUnknown(field.SoilType))
	fmt.Fprintf(&b, "- Planting Date: %s\n", orUnknown(field.PlantingDate))
	fmt.Fprintf(&b, "- Field Size: %g hectares\n", field.Area)

	if field.SatelliteData != nil {
		fmt.Fprintf(&b, "- Current NDVI: %v\n", valueOrUnknown(field.SatelliteData["ndvi"]))
		fmt.Fprintf(&b, "- Field Health: %v\n", valueOrUnknown(field.SatelliteData["field_health"]))
		fmt.Fprintf(&b, "- Crop Stage: %v\n", valueOrUnknown(field.SatelliteData["crop_stage"]))
	}
	if len(applications) > 0 {
		b.WriteString("\nRecent Fertilizer Applications:\n")
		for _, app := range applications {
			fmt.Fprintf(&b, "- %s: %s at %g kg/ha\n", app.Date, app.FertilizerType, app.ApplicationRate)
		}
	}
	b.WriteString("\n\nBased on the above information, provide fertilizer recommendations including:\n" +
		"1. Recommended fertilizer types\n" +
		"2. Application rates in kg/hectare\n" +
		"3. Timing of application\n" +
		"4. Application method\n" +
		"5. Special considerations for this crop and soil type")
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func valueOrUnknown(v any) any {
	if v == nil {
		return "Unknown"
	}
	return v
}

// ruleFertilizer is the deterministic NPK table used when no AI answer
// is available.
func ruleFertilizer(cropType string) map[string]string {
	crop := strings.ToLower(cropType)
	switch {
	case crop == "":
		return map[string]string{
			"npk_ratio": "Unknown (crop type not specified)",
			"rate":      "Consult local agricultural extension",
			"timing":    "Depends on crop growth stage",
			"method":    "Depends on fertilizer type and crop",
			"notes":     "Please update field information with crop type for specific recommendations.",
		}
	case strings.Contains(crop, "rice"):
		return map[string]string{
			"npk_ratio": "14-14-14",
			"rate":      "300-350 kg/ha",
			"timing":    "Apply 50% at planting, 25% during tillering, and 25% at panicle initiation",
			"method":    "Broadcast application before planting, followed by top dressing",
			"notes":     "Ensure good water management. Consider zinc supplements in deficient soils.",
		}
	case strings.Contains(crop, "wheat"):
		return map[string]string{
			"npk_ratio": "12-32-16",
			"rate":      "250-300 kg/ha",
			"timing":    "Apply 50% at sowing and 50% at first irrigation",
			"method":    "Incorporate into soil before sowing, top dress remainder",
			"notes":     "Additional nitrogen application may be needed at heading stage if crop shows deficiency.",
		}
	case strings.Contains(crop, "cotton"):
		return map[string]string{
			"npk_ratio": "20-10-10",
			"rate":      "200-250 kg/ha",
			"timing":    "Apply 30% at planting, 40% at square formation, 30% at flowering",
			"method":    "Side-dress or band application",
			"notes":     "Consider foliar application of micronutrients during peak growth.",
		}
	default:
		return map[string]string{
			"npk_ratio": "15-15-15",
			"rate":      "300 kg/ha",
			"timing":    "Apply 50% at planting and 50% during vegetative growth",
			"method":    "Broadcast and incorporate into soil",
			"notes":     "Consult local extension service for specific recommendations for your crop and soil type.",
		}
	}
}

func (av *advisoryService) LogIrrigation(ctx context.Context, in IrrigationInput) (fallback.IrrigationRecord, error) {
	if in.FieldID == "" || in.Amount <= 0 {
		return fallback.IrrigationRecord{}, fmt.Errorf("field_id and a positive amount are required: %w", apperr.ErrInvalidArgument)
	}
	date := in.Date
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	parsedDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fallback.IrrigationRecord{}, fmt.Errorf("date must be YYYY-MM-DD: %w", apperr.ErrInvalidArgument)
	}

	record, backend, err := fallback.Try(ctx, av.log, "advisory.log_irrigation",
		func(ctx context.Context) (fallback.IrrigationRecord, error) {
			doc, err := av.docs.IrrigationRecords.Create(ctx, map[string]any{
				"field_id": in.FieldID,
				"date":     date,
				"amount":   in.Amount,
				"method":   in.Method,
				"duration": in.Duration,
				"notes":    in.Notes,
			})
			if err != nil {
				return fallback.IrrigationRecord{}, err
			}
			return fallback.IrrigationFromDoc(doc), nil
		},
		func(ctx context.Context) (fallback.IrrigationRecord, error) {
			fieldID, err := uuid.Parse(in.FieldID)
			if err != nil {
				return fallback.IrrigationRecord{}, fmt.Errorf("malformed field id: %w", apperr.ErrInvalidArgument)
			}
			row, err := av.irrigationRepo.Create(ctx, nil, &types.IrrigationRecord{
				FieldID:  fieldID,
				Date:     parsedDate,
				Amount:   in.Amount,
				Method:   in.Method,
				Duration: in.Duration,
				Notes:    in.Notes,
			})
			if err != nil {
				return fallback.IrrigationRecord{}, err
			}
			return fallback.IrrigationFromRow(row), nil
		})
	if err != nil {
		return fallback.IrrigationRecord{}, err
	}
	av.log.Info("irrigation logged", "field_id", in.FieldID, "backend", backend)
	return record, nil
}

func (av *advisoryService) ListIrrigation(ctx context.Context, fieldID string) ([]fallback.IrrigationRecord, error) {
	if fieldID == "" {
		return nil, fmt.Errorf("field_id is required: %w", apperr.ErrInvalidArgument)
	}
	records, _, err := fallback.Try(ctx, av.log, "advisory.irrigation",
		func(ctx context.Context) ([]fallback.IrrigationRecord, error) {
			docs, err := av.docs.IrrigationRecords.GetByFieldID(ctx, fieldID)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.IrrigationRecord, 0, len(docs))
			for _, doc := range docs {
				out = append(out, fallback.IrrigationFromDoc(doc))
			}
			return out, nil
		},
		func(ctx context.Context) ([]fallback.IrrigationRecord, error) {
			id, err := uuid.Parse(fieldID)
			if err != nil {
				return nil, fmt.Errorf("malformed field id: %w", apperr.ErrInvalidArgument)
			}
			rows, err := av.irrigationRepo.GetByFieldID(ctx, nil, id)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.IrrigationRecord, 0, len(rows))
			for _, row := range rows {
				out = append(out, fallback.IrrigationFromRow(row))
			}
			return out, nil
		})
	return records, err
}
