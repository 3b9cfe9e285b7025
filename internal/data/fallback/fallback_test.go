package fallback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestTryPrimaryWins(t *testing.T) {
	got, backend, err := Try(context.Background(), testLogger(t), "test.read",
		func(ctx context.Context) (string, error) { return "primary", nil },
		func(ctx context.Context) (string, error) {
			t.Fatal("secondary must not run when primary succeeds")
			return "", nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "primary" || backend != BackendDocument {
		t.Fatalf("got %q from %q", got, backend)
	}
}

func TestTryNotFoundIsAuthoritative(t *testing.T) {
	_, backend, err := Try(context.Background(), testLogger(t), "test.read",
		func(ctx context.Context) (string, error) { return "", apperr.ErrNotFound },
		func(ctx context.Context) (string, error) {
			t.Fatal("secondary must not run on a clean not-found")
			return "", nil
		})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if backend != BackendDocument {
		t.Fatalf("expected document backend, got %q", backend)
	}
}

func TestTryConflictNeverRetries(t *testing.T) {
	_, _, err := Try(context.Background(), testLogger(t), "test.write",
		func(ctx context.Context) (string, error) { return "", apperr.ErrAlreadyExists },
		func(ctx context.Context) (string, error) {
			t.Fatal("a duplicate must not be retried on the other backend")
			return "", nil
		})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestTryFallsBackOnBackendError(t *testing.T) {
	infraErr := errors.New("connection refused")
	got, backend, err := Try(context.Background(), testLogger(t), "test.read",
		func(ctx context.Context) (string, error) { return "", infraErr },
		func(ctx context.Context) (string, error) { return "secondary", nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "secondary" || backend != BackendRelational {
		t.Fatalf("got %q from %q", got, backend)
	}
}

func TestTryBothFail(t *testing.T) {
	secondaryErr := errors.New("relational down too")
	_, backend, err := Try(context.Background(), testLogger(t), "test.read",
		func(ctx context.Context) (string, error) { return "", errors.New("doc down") },
		func(ctx context.Context) (string, error) { return "", secondaryErr })
	if !errors.Is(err, secondaryErr) {
		t.Fatalf("expected secondary error, got %v", err)
	}
	if backend != BackendRelational {
		t.Fatalf("expected relational backend tag, got %q", backend)
	}
}

func TestTryNilSecondary(t *testing.T) {
	infraErr := errors.New("doc down")
	_, _, err := Try[string](context.Background(), testLogger(t), "test.read",
		func(ctx context.Context) (string, error) { return "", infraErr },
		nil)
	if !errors.Is(err, infraErr) {
		t.Fatalf("expected primary error, got %v", err)
	}
}

func TestRecordNormalization(t *testing.T) {
	detection := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	row := &types.DiseaseReport{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		FieldID:         uuid.New(),
		DiseaseName:     "leaf rust",
		DetectionDate:   detection,
		ConfidenceScore: 0.82,
		Status:          types.ReportStatusDetected,
	}
	fromRow := ReportFromRow(row)
	if fromRow.DetectionDate != "2025-03-14" {
		t.Fatalf("row date not normalized: %q", fromRow.DetectionDate)
	}
	if fromRow.ID != row.ID.String() {
		t.Fatalf("row id not stringified: %q", fromRow.ID)
	}

	fromDoc := ReportFromDoc(map[string]any{
		"id":               row.ID.String(),
		"user_id":          row.UserID.String(),
		"field_id":         row.FieldID.String(),
		"disease_name":     "leaf rust",
		"detection_date":   "2025-03-14T09:30:00Z",
		"confidence_score": 0.82,
		"status":           types.ReportStatusDetected,
	})
	if fromDoc.DetectionDate != "2025-03-14" {
		t.Fatalf("doc date not normalized: %q", fromDoc.DetectionDate)
	}
	if fromRow != fromDoc {
		t.Fatalf("records diverge:\nrow: %+v\ndoc: %+v", fromRow, fromDoc)
	}
}

func TestPriceFromDocCoercesNumbers(t *testing.T) {
	rec := PriceFromDoc(map[string]any{
		"id":        float64(41),
		"crop_type": "wheat",
		"price":     "24.5",
		"min_price": 20,
		"date":      "2025-03-14",
	})
	if rec.ID != "41" {
		t.Fatalf("numeric id not stringified: %q", rec.ID)
	}
	if rec.Price != 24.5 || rec.MinPrice != 20 {
		t.Fatalf("numeric coercion failed: %+v", rec)
	}
	if rec.Date != "2025-03-14" {
		t.Fatalf("date mangled: %q", rec.Date)
	}
}
