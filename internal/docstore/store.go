package docstore

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Collection names shared by both backends. The relational tables use the
// same names so the migrator and the fallback layer can treat the two
// schemas as interchangeable.
const (
	UsersCollection             = "users"
	FieldsCollection            = "fields"
	DiseaseReportsCollection    = "disease_reports"
	MarketPricesCollection      = "market_prices"
	MarketFavoritesCollection   = "market_favorites"
	WeatherForecastsCollection  = "weather_forecasts"
	ChatHistoryCollection       = "chat_history"
	IrrigationRecordsCollection = "irrigation_records"
	FertilizerRecordsCollection = "fertilizer_records"
	UserLookupsCollection       = "user_lookups"
)

// Filter is one (field, op, value) query predicate. Op defaults to "==".
type Filter struct {
	Field string
	Op    string
	Value any
}

// Eq is shorthand for an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: "==", Value: value}
}

type ListOptions struct {
	Filters   []Filter
	OrderBy   string
	Direction string // "asc" (default) or "desc"
	Limit     int
}

// Store is the uniform document CRUD surface. Both the Firestore client
// wrapper and the in-memory fake implement it, so everything above this
// interface is backend-agnostic.
type Store interface {
	// Create stamps created_at and id when absent, writes the document and
	// returns the stored data including generated fields.
	Create(ctx context.Context, collection string, data map[string]any) (map[string]any, error)
	// CreateAt writes a document at a caller-chosen id and fails with
	// apperr.ErrAlreadyExists when the id is taken. Used for uniqueness
	// reservation documents.
	CreateAt(ctx context.Context, collection, id string, data map[string]any) (map[string]any, error)
	// Get returns the document or apperr.ErrNotFound.
	Get(ctx context.Context, collection, id string) (map[string]any, error)
	// Update stamps updated_at and merges the partial data into the existing
	// document, returning the post-update document.
	Update(ctx context.Context, collection, id string, data map[string]any) (map[string]any, error)
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string, opts ListOptions) ([]map[string]any, error)
}

func GenerateID() string { return uuid.New().String() }

func nowISO() string { return time.Now().UTC().Format(time.RFC3339) }

// prepareCreate copies data and stamps the generated fields the document
// contract promises: created_at (RFC3339 UTC) and a UUID id.
func prepareCreate(data map[string]any) (string, map[string]any) {
	out := make(map[string]any, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	if _, ok := out["created_at"]; !ok {
		out["created_at"] = nowISO()
	}
	id, _ := out["id"].(string)
	if id == "" {
		id = GenerateID()
		out["id"] = id
	}
	return id, out
}
