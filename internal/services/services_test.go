package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/farmassist/farmassist-backend/internal/data/documents"
	"github.com/farmassist/farmassist-backend/internal/data/repos/testutil"
	"github.com/farmassist/farmassist-backend/internal/docstore"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

type testEnv struct {
	docs *documents.Documents
	gdb  *gorm.DB
	log  *logger.Logger
}

func newEnv(t *testing.T) testEnv {
	t.Helper()
	log := testutil.Logger(t)
	return testEnv{
		docs: documents.New(docstore.NewMemoryStore(), log),
		gdb:  testutil.DB(t),
		log:  log,
	}
}

// fakeAI scripts the generative client so tests can force either path.
type fakeAI struct {
	textReply   string
	textErr     error
	visionReply string
	visionErr   error
	textCalls   int
	visionCalls int
}

func (f *fakeAI) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.textCalls++
	return f.textReply, f.textErr
}

func (f *fakeAI) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	f.visionCalls++
	return f.visionReply, f.visionErr
}

func (f *fakeAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"gemini-1.5-flash"}, nil
}

// downStore fails every call so tests can drive the relational path.
type downStore struct{}

var errStoreDown = errors.New("document store unreachable")

func (downStore) Create(ctx context.Context, collection string, data map[string]any) (map[string]any, error) {
	return nil, errStoreDown
}

func (downStore) CreateAt(ctx context.Context, collection, id string, data map[string]any) (map[string]any, error) {
	return nil, errStoreDown
}

func (downStore) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	return nil, errStoreDown
}

func (downStore) Update(ctx context.Context, collection, id string, data map[string]any) (map[string]any, error) {
	return nil, errStoreDown
}

func (downStore) Delete(ctx context.Context, collection, id string) error {
	return errStoreDown
}

func (downStore) List(ctx context.Context, collection string, opts docstore.ListOptions) ([]map[string]any, error) {
	return nil, errStoreDown
}

type countingWeather struct {
	inner WeatherProvider
	calls int
}

func (c *countingWeather) Fetch(ctx context.Context, location string) ([]ForecastDay, error) {
	c.calls++
	return c.inner.Fetch(ctx, location)
}

type countingSatellite struct {
	inner SatelliteProvider
	calls int
}

func (c *countingSatellite) Fetch(ctx context.Context, fieldID string) (map[string]any, error) {
	c.calls++
	return c.inner.Fetch(ctx, fieldID)
}

type countingMarket struct {
	inner MarketProvider
	calls int
}

func (c *countingMarket) Fetch(ctx context.Context, cropType string) ([]PriceQuote, error) {
	c.calls++
	return c.inner.Fetch(ctx, cropType)
}
