package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/farmassist/farmassist-backend/internal/data/documents"
	"github.com/farmassist/farmassist-backend/internal/data/fallback"
	"github.com/farmassist/farmassist-backend/internal/data/repos"
	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

// satelliteMaxAge bounds how long a stored monitoring snapshot is served
// before the provider is consulted again.
const satelliteMaxAge = 7 * 24 * time.Hour

type FieldInput struct {
	UserID       string  `json:"user_id"`
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	Area         float64 `json:"area"`
	CropType     string  `json:"crop_type"`
	SoilType     string  `json:"soil_type"`
	PlantingDate string  `json:"planting_date"`
	Notes        string  `json:"notes"`
}

type FieldService interface {
	Create(ctx context.Context, in FieldInput) (fallback.FieldRecord, error)
	ListByUser(ctx context.Context, userID string) ([]fallback.FieldRecord, error)
	Get(ctx context.Context, fieldID string) (fallback.FieldRecord, error)
	Monitor(ctx context.Context, fieldID string) (map[string]any, error)
}

type fieldService struct {
	docs      *documents.Documents
	fieldRepo repos.FieldRepo
	satellite SatelliteProvider
	log       *logger.Logger
}

func NewFieldService(docs *documents.Documents, fieldRepo repos.FieldRepo, satellite SatelliteProvider, baseLog *logger.Logger) FieldService {
	return &fieldService{
		docs:      docs,
		fieldRepo: fieldRepo,
		satellite: satellite,
		log:       baseLog.With("service", "FieldService"),
	}
}

func (fs *fieldService) Create(ctx context.Context, in FieldInput) (fallback.FieldRecord, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.UserID == "" || in.Name == "" {
		return fallback.FieldRecord{}, fmt.Errorf("user_id and name are required: %w", apperr.ErrInvalidArgument)
	}
	if in.PlantingDate != "" {
		if _, err := time.Parse("2006-01-02", in.PlantingDate); err != nil {
			return fallback.FieldRecord{}, fmt.Errorf("planting_date must be YYYY-MM-DD: %w", apperr.ErrInvalidArgument)
		}
	}

	record, backend, err := fallback.Try(ctx, fs.log, "field.create",
		func(ctx context.Context) (fallback.FieldRecord, error) {
			doc := map[string]any{
				"user_id":   in.UserID,
				"name":      in.Name,
				"location":  in.Location,
				"area":      in.Area,
				"crop_type": in.CropType,
				"soil_type": in.SoilType,
				"notes":     in.Notes,
			}
			if in.PlantingDate != "" {
				doc["planting_date"] = in.PlantingDate
			}
			created, err := fs.docs.Fields.Create(ctx, doc)
			if err != nil {
				return fallback.FieldRecord{}, err
			}
			return fallback.FieldFromDoc(created), nil
		},
		func(ctx context.Context) (fallback.FieldRecord, error) {
			userID, err := uuid.Parse(in.UserID)
			if err != nil {
				return fallback.FieldRecord{}, fmt.Errorf("malformed user id: %w", apperr.ErrInvalidArgument)
			}
			row := &types.Field{
				UserID:   userID,
				Name:     in.Name,
				Location: in.Location,
				Area:     in.Area,
				CropType: in.CropType,
				SoilType: in.SoilType,
				Notes:    in.Notes,
			}
			if in.PlantingDate != "" {
				planted, _ := time.Parse("2006-01-02", in.PlantingDate)
				row.PlantingDate = &planted
			}
			created, err := fs.fieldRepo.Create(ctx, nil, row)
			if err != nil {
				return fallback.FieldRecord{}, err
			}
			return fallback.FieldFromRow(created), nil
		})
	if err != nil {
		return fallback.FieldRecord{}, err
	}
	fs.log.Info("field created", "field_id", record.ID, "user_id", in.UserID, "backend", backend)
	return record, nil
}

func (fs *fieldService) ListByUser(ctx context.Context, userID string) ([]fallback.FieldRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required: %w", apperr.ErrInvalidArgument)
	}
	records, _, err := fallback.Try(ctx, fs.log, "field.list",
		func(ctx context.Context) ([]fallback.FieldRecord, error) {
			docs, err := fs.docs.Fields.GetByUserID(ctx, userID)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.FieldRecord, 0, len(docs))
			for _, doc := range docs {
				out = append(out, fallback.FieldFromDoc(doc))
			}
			return out, nil
		},
		func(ctx context.Context) ([]fallback.FieldRecord, error) {
			id, err := uuid.Parse(userID)
			if err != nil {
				return nil, fmt.Errorf("malformed user id: %w", apperr.ErrInvalidArgument)
			}
			rows, err := fs.fieldRepo.GetByUserID(ctx, nil, id)
			if err != nil {
				return nil, err
			}
			out := make([]fallback.FieldRecord, 0, len(rows))
			for _, row := range rows {
				out = append(out, fallback.FieldFromRow(row))
			}
			return out, nil
		})
	return records, err
}

func (fs *fieldService) Get(ctx context.Context, fieldID string) (fallback.FieldRecord, error) {
	record, _, err := fs.getWithBackend(ctx, fieldID)
	return record, err
}

func (fs *fieldService) getWithBackend(ctx context.Context, fieldID string) (fallback.FieldRecord, string, error) {
	if fieldID == "" {
		return fallback.FieldRecord{}, "", fmt.Errorf("field_id is required: %w", apperr.ErrInvalidArgument)
	}
	return fallback.Try(ctx, fs.log, "field.get",
		func(ctx context.Context) (fallback.FieldRecord, error) {
			doc, err := fs.docs.Fields.Get(ctx, fieldID)
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
			row, err := fs.fieldRepo.GetByID(ctx, nil, id)
			if err != nil {
				return fallback.FieldRecord{}, err
			}
			return fallback.FieldFromRow(row), nil
		})
}

// Monitor serves the stored satellite snapshot while it is younger than
// satelliteMaxAge and refreshes it from the provider otherwise. A failed
// write-back is logged and the fresh data still returned.
func (fs *fieldService) Monitor(ctx context.Context, fieldID string) (map[string]any, error) {
	record, backend, err := fs.getWithBackend(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	if record.SatelliteData != nil && freshEnough(record.LastUpdated, satelliteMaxAge) {
		return record.SatelliteData, nil
	}

	data, err := fs.satellite.Fetch(ctx, fieldID)
	if err != nil {
		return nil, fmt.Errorf("fetch satellite data: %w", err)
	}

	now := time.Now().UTC()
	switch backend {
	case fallback.BackendDocument:
		_, err = fs.docs.Fields.Update(ctx, fieldID, map[string]any{
			"satellite_data": data,
			"last_updated":   now.Format(time.RFC3339),
		})
	case fallback.BackendRelational:
		var raw []byte
		raw, err = json.Marshal(data)
		if err == nil {
			id, parseErr := uuid.Parse(fieldID)
			if parseErr != nil {
				err = parseErr
			} else {
				err = fs.fieldRepo.UpdateSatelliteData(ctx, nil, id, datatypes.JSON(raw), now)
			}
		}
	}
	if err != nil {
		fs.log.Warn("failed to store satellite snapshot", "field_id", fieldID, "backend", backend, "error", err)
	}
	return data, nil
}

// freshEnough parses a stored timestamp (RFC3339 or bare date) and
// reports whether it is within maxAge of now.
func freshEnough(stamp string, maxAge time.Duration) bool {
	if stamp == "" {
		return false
	}
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		t, err = time.Parse("2006-01-02", stamp)
		if err != nil {
			return false
		}
	}
	return time.Since(t) < maxAge
}
