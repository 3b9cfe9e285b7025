package documents

import (
	"context"

	"github.com/farmassist/farmassist-backend/internal/docstore"
)

type Fields struct {
	Model
}

func (f *Fields) GetByUserID(ctx context.Context, userID string) ([]map[string]any, error) {
	return f.List(ctx, docstore.ListOptions{Filters: []docstore.Filter{docstore.Eq("user_id", userID)}})
}

type DiseaseReports struct {
	Model
}

func (r *DiseaseReports) GetByUserID(ctx context.Context, userID string) ([]map[string]any, error) {
	return r.List(ctx, docstore.ListOptions{Filters: []docstore.Filter{docstore.Eq("user_id", userID)}})
}

func (r *DiseaseReports) GetByFieldID(ctx context.Context, fieldID string) ([]map[string]any, error) {
	return r.List(ctx, docstore.ListOptions{Filters: []docstore.Filter{docstore.Eq("field_id", fieldID)}})
}

type IrrigationRecords struct {
	Model
}

func (r *IrrigationRecords) GetByFieldID(ctx context.Context, fieldID string) ([]map[string]any, error) {
	return r.List(ctx, docstore.ListOptions{
		Filters: []docstore.Filter{docstore.Eq("field_id", fieldID)},
		OrderBy: "date", Direction: "desc",
	})
}

type FertilizerRecords struct {
	Model
}

func (r *FertilizerRecords) GetByFieldID(ctx context.Context, fieldID string) ([]map[string]any, error) {
	return r.List(ctx, docstore.ListOptions{
		Filters: []docstore.Filter{docstore.Eq("field_id", fieldID)},
		OrderBy: "date", Direction: "desc",
	})
}

// GetRecent returns the newest n applications for a field, newest first.
func (r *FertilizerRecords) GetRecent(ctx context.Context, fieldID string, n int) ([]map[string]any, error) {
	return r.List(ctx, docstore.ListOptions{
		Filters: []docstore.Filter{docstore.Eq("field_id", fieldID)},
		OrderBy: "date", Direction: "desc", Limit: n,
	})
}
