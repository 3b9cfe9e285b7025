package documents

import (
	"context"
	"time"

	"github.com/farmassist/farmassist-backend/internal/docstore"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

// Model gives every entity type the same create/get/update/delete/list
// contract over the document store; the per-entity types below only add
// semantically named queries on top of it.
type Model struct {
	store      docstore.Store
	collection string
	log        *logger.Logger
}

func newModel(store docstore.Store, collection string, log *logger.Logger) Model {
	return Model{store: store, collection: collection, log: log.With("collection", collection)}
}

func (m Model) Create(ctx context.Context, data map[string]any) (map[string]any, error) {
	return m.store.Create(ctx, m.collection, data)
}

func (m Model) Get(ctx context.Context, id string) (map[string]any, error) {
	return m.store.Get(ctx, m.collection, id)
}

func (m Model) Update(ctx context.Context, id string, data map[string]any) (map[string]any, error) {
	return m.store.Update(ctx, m.collection, id, data)
}

func (m Model) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, m.collection, id)
}

func (m Model) List(ctx context.Context, opts docstore.ListOptions) ([]map[string]any, error) {
	return m.store.List(ctx, m.collection, opts)
}

// Documents bundles one facade per entity type over a single store handle.
type Documents struct {
	Users             *Users
	Fields            *Fields
	DiseaseReports    *DiseaseReports
	MarketPrices      *MarketPrices
	MarketFavorites   *MarketFavorites
	WeatherForecasts  *WeatherForecasts
	ChatMessages      *ChatMessages
	IrrigationRecords *IrrigationRecords
	FertilizerRecords *FertilizerRecords
}

func New(store docstore.Store, log *logger.Logger) *Documents {
	docLog := log.With("layer", "documents")
	return &Documents{
		Users:             &Users{Model: newModel(store, docstore.UsersCollection, docLog)},
		Fields:            &Fields{Model: newModel(store, docstore.FieldsCollection, docLog)},
		DiseaseReports:    &DiseaseReports{Model: newModel(store, docstore.DiseaseReportsCollection, docLog)},
		MarketPrices:      &MarketPrices{Model: newModel(store, docstore.MarketPricesCollection, docLog)},
		MarketFavorites:   &MarketFavorites{Model: newModel(store, docstore.MarketFavoritesCollection, docLog)},
		WeatherForecasts:  &WeatherForecasts{Model: newModel(store, docstore.WeatherForecastsCollection, docLog)},
		ChatMessages:      &ChatMessages{Model: newModel(store, docstore.ChatHistoryCollection, docLog)},
		IrrigationRecords: &IrrigationRecords{Model: newModel(store, docstore.IrrigationRecordsCollection, docLog)},
		FertilizerRecords: &FertilizerRecords{Model: newModel(store, docstore.FertilizerRecordsCollection, docLog)},
	}
}

func todayISO() string { return time.Now().UTC().Format("2006-01-02") }
