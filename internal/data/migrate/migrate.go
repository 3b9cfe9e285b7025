// Package migrate copies the relational dataset into the document store
// in one pass. It exists for the cutover from a Postgres-only deployment
// to the dual-backend layout.
package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/farmassist/farmassist-backend/internal/data/repos"
	"github.com/farmassist/farmassist-backend/internal/docstore"
	types "github.com/farmassist/farmassist-backend/internal/domain"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

// Options tunes a migration run. SkipExisting probes the document store
// by id before each write and leaves existing documents untouched;
// the default overwrites them wholesale.
type Options struct {
	SkipExisting bool
}

// EntityResult counts one entity type's outcome.
type EntityResult struct {
	Entity  string `json:"entity"`
	Copied  int    `json:"copied"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

type Summary struct {
	Results []EntityResult `json:"results"`
	Took    string         `json:"took"`
}

func (s Summary) Totals() (copied, skipped, failed int) {
	for _, r := range s.Results {
		copied += r.Copied
		skipped += r.Skipped
		failed += r.Failed
	}
	return
}

type Migrator struct {
	users      repos.UserRepo
	fields     repos.FieldRepo
	reports    repos.DiseaseReportRepo
	irrigation repos.IrrigationRecordRepo
	fertilizer repos.FertilizerRecordRepo
	prices     repos.MarketPriceRepo
	favorites  repos.MarketFavoriteRepo
	forecasts  repos.WeatherForecastRepo
	messages   repos.ChatMessageRepo

	store docstore.Store
	log   *logger.Logger
}

func New(store docstore.Store,
	users repos.UserRepo,
	fields repos.FieldRepo,
	reports repos.DiseaseReportRepo,
	irrigation repos.IrrigationRecordRepo,
	fertilizer repos.FertilizerRecordRepo,
	prices repos.MarketPriceRepo,
	favorites repos.MarketFavoriteRepo,
	forecasts repos.WeatherForecastRepo,
	messages repos.ChatMessageRepo,
	baseLog *logger.Logger) *Migrator {
	return &Migrator{
		users:      users,
		fields:     fields,
		reports:    reports,
		irrigation: irrigation,
		fertilizer: fertilizer,
		prices:     prices,
		favorites:  favorites,
		forecasts:  forecasts,
		messages:   messages,
		store:      store,
		log:        baseLog.With("service", "Migrator"),
	}
}

// Run copies every relational row into the document store. Users go
// first, then fields, then the field-scoped records; order matters only
// for those three because document queries join on their ids. The run is
// not transactional and keeps going past individual row failures.
func (m *Migrator) Run(ctx context.Context, opts Options) (Summary, error) {
	start := time.Now()
	var summary Summary

	steps := []struct {
		entity string
		run    func(context.Context, Options) (EntityResult, error)
	}{
		{"users", m.migrateUsers},
		{"fields", m.migrateFields},
		{"disease_reports", m.migrateReports},
		{"irrigation_records", m.migrateIrrigation},
		{"fertilizer_records", m.migrateFertilizer},
		{"market_prices", m.migratePrices},
		{"market_favorites", m.migrateFavorites},
		{"weather_forecasts", m.migrateForecasts},
		{"chat_history", m.migrateMessages},
	}
	for _, step := range steps {
		result, err := step.run(ctx, opts)
		if err != nil {
			return summary, fmt.Errorf("migrate %s: %w", step.entity, err)
		}
		summary.Results = append(summary.Results, result)
		m.log.Info("entity migrated",
			"entity", result.Entity,
			"copied", result.Copied,
			"skipped", result.Skipped,
			"failed", result.Failed)
	}

	summary.Took = time.Since(start).String()
	return summary, nil
}

// writeDoc places one row's document at its relational id so both
// backends share keys.
func (m *Migrator) writeDoc(ctx context.Context, opts Options, collection, id string, doc map[string]any, result *EntityResult) {
	if opts.SkipExisting {
		if _, err := m.store.Get(ctx, collection, id); err == nil {
			result.Skipped++
			return
		} else if !errors.Is(err, apperr.ErrNotFound) {
			m.log.Error("existence probe failed", "collection", collection, "id", id, "error", err)
			result.Failed++
			return
		}
	}
	doc["id"] = id
	if _, err := m.store.Create(ctx, collection, doc); err != nil {
		m.log.Error("document write failed", "collection", collection, "id", id, "error", err)
		result.Failed++
		return
	}
	result.Copied++
}

func (m *Migrator) migrateUsers(ctx context.Context, opts Options) (EntityResult, error) {
	result := EntityResult{Entity: "users"}
	rows, err := m.users.ListAll(ctx, nil)
	if err != nil {
		return result, err
	}
	for _, row := range rows {
		m.writeDoc(ctx, opts, docstore.UsersCollection, row.ID.String(), userDoc(row), &result)
		// Reservation docs keep the uniqueness invariant alive on the
		// document side; a conflict means a previous run claimed them.
		for kind, value := range map[string]string{"username": row.Username, "email": row.Email} {
			_, err := m.store.CreateAt(ctx, docstore.UserLookupsCollection, kind+":"+value,
				map[string]any{"user_id": row.ID.String(), "kind": kind, "value": value})
			if err != nil && !errors.Is(err, apperr.ErrAlreadyExists) {
				m.log.Warn("reservation write failed", "kind", kind, "value", value, "error", err)
			}
		}
	}
	return result, nil
}

func (m *Migrator) migrateFields(ctx context.Context, opts Options) (EntityResult, error) {
	result := EntityResult{Entity: "fields"}
	rows, err := m.fields.ListAll(ctx, nil)
	if err != nil {
		return result, err
	}
	for _, row := range rows {
		m.writeDoc(ctx, opts, docstore.FieldsCollection, row.ID.String(), fieldDoc(row), &result)
	}
	return result, nil
}

func (m *Migrator) migrateReports(ctx context.Context, opts Options) (EntityResult, error) {
	result := EntityResult{Entity: "disease_reports"}
	rows, err := m.reports.ListAll(ctx, nil)
	if err != nil {
		return result, err
	}
	for _, row := range rows {
		m.writeDoc(ctx, opts, docstore.DiseaseReportsCollection, row.ID.String(), reportDoc(row), &result)
	}
	return result, nil
}

func (m *Migrator) migrateIrrigation(ctx context.Context, opts Options) (EntityResult, error) {
	result := EntityResult{Entity: "irrigation_records"}
	rows, err := m.irrigation.ListAll(ctx, nil)
	if err != nil {
		return result, err
	}
	for _, row := range rows {
		m.writeDoc(ctx, opts, docstore.IrrigationRecordsCollection, row.ID.String(), irrigationDoc(row), &result)
	}
	return result, nil
}

func (m *Migrator) migrateFertilizer(ctx context.Context, opts Options) (EntityResult, error) {
	result := EntityResult{Entity: "fertilizer_records"}
	rows, err := m.fertilizer.ListAll(ctx, nil)
	if err != nil {
		return result, err
	}
	for _, row := range rows {
		m.writeDoc(ctx, opts, docstore.FertilizerRecordsCollection, row.ID.String(), fertilizerDoc(row), &result)
	}
	return result, nil
}

func (m *Migrator) migratePrices(ctx context.Context, opts Options) (EntityResult, error) {
	result := EntityResult{Entity: "market_prices"}
	rows, err := m.prices.ListAll(ctx, nil)
	if err != nil {
		return result, err
	}
	for _, row := range rows {
		m.writeDoc(ctx, opts, docstore.MarketPricesCollection, row.ID.String(), priceDoc(row), &result)
	}
	return result, nil
}

func (m *Migrator) migrateFavorites(ctx context.Context, opts Options) (EntityResult, error) {
	result := EntityResult{Entity: "market_favorites"}
	rows, err := m.favorites.ListAll(ctx, nil)
	if err != nil {
		return result, err
	}
	for _, row := range rows {
		m.writeDoc(ctx, opts, docstore.MarketFavoritesCollection, row.ID.String(), favoriteDoc(row), &result)
	}
	return result, nil
}

func (m *Migrator) migrateForecasts(ctx context.Context, opts Options) (EntityResult, error) {
	result := EntityResult{Entity: "weather_forecasts"}
	rows, err := m.forecasts.ListAll(ctx, nil)
	if err != nil {
		return result, err
	}
	for _, row := range rows {
		m.writeDoc(ctx, opts, docstore.WeatherForecastsCollection, row.ID.String(), forecastDoc(row), &result)
	}
	return result, nil
}

func (m *Migrator) migrateMessages(ctx context.Context, opts Options) (EntityResult, error) {
	result := EntityResult{Entity: "chat_history"}
	rows, err := m.messages.ListAll(ctx, nil)
	if err != nil {
		return result, err
	}
	for _, row := range rows {
		m.writeDoc(ctx, opts, docstore.ChatHistoryCollection, row.ID.String(), messageDoc(row), &result)
	}
	return result, nil
}

func userDoc(row *types.User) map[string]any {
	return map[string]any{
		"username":      row.Username,
		"email":         row.Email,
		"password_hash": row.PasswordHash,
		"full_name":     row.FullName,
		"phone":         row.Phone,
		"profile_image": row.ProfileImage,
		"is_active":     row.IsActive,
		"created_at":    timestampString(row.CreatedAt),
	}
}

func fieldDoc(row *types.Field) map[string]any {
	doc := map[string]any{
		"user_id":      row.UserID.String(),
		"name":         row.Name,
		"location":     row.Location,
		"area":         row.Area,
		"crop_type":    row.CropType,
		"soil_type":    row.SoilType,
		"notes":        row.Notes,
		"created_at":   timestampString(row.CreatedAt),
		"last_updated": timestampString(row.LastUpdated),
	}
	if row.PlantingDate != nil {
		doc["planting_date"] = dateString(*row.PlantingDate)
	}
	if m := jsonMap(row.SatelliteData); m != nil {
		doc["satellite_data"] = m
	}
	if m := jsonMap(row.WeatherData); m != nil {
		doc["weather_data"] = m
	}
	return doc
}

func reportDoc(row *types.DiseaseReport) map[string]any {
	return map[string]any{
		"user_id":                   row.UserID.String(),
		"field_id":                  row.FieldID.String(),
		"disease_name":              row.DiseaseName,
		"detection_date":            dateString(row.DetectionDate),
		"confidence_score":          row.ConfidenceScore,
		"image_path":                row.ImagePath,
		"symptoms":                  row.Symptoms,
		"treatment_recommendations": row.TreatmentRecommendations,
		"status":                    row.Status,
		"notes":                     row.Notes,
	}
}

func irrigationDoc(row *types.IrrigationRecord) map[string]any {
	return map[string]any{
		"field_id": row.FieldID.String(),
		"date":     dateString(row.Date),
		"amount":   row.Amount,
		"method":   row.Method,
		"duration": row.Duration,
		"notes":    row.Notes,
	}
}

func fertilizerDoc(row *types.FertilizerRecord) map[string]any {
	return map[string]any{
		"field_id":         row.FieldID.String(),
		"date":             dateString(row.Date),
		"fertilizer_type":  row.FertilizerType,
		"application_rate": row.ApplicationRate,
		"method":           row.Method,
		"notes":            row.Notes,
	}
}

func priceDoc(row *types.MarketPrice) map[string]any {
	return map[string]any{
		"crop_type":   row.CropType,
		"market_name": row.MarketName,
		"price":       row.Price,
		"min_price":   row.MinPrice,
		"max_price":   row.MaxPrice,
		"date":        dateString(row.Date),
		"source":      row.Source,
	}
}

func favoriteDoc(row *types.MarketFavorite) map[string]any {
	doc := map[string]any{
		"user_id":     row.UserID.String(),
		"crop_type":   row.CropType,
		"market_name": row.MarketName,
	}
	if row.PriceAlertMin != nil {
		doc["price_alert_min"] = *row.PriceAlertMin
	}
	if row.PriceAlertMax != nil {
		doc["price_alert_max"] = *row.PriceAlertMax
	}
	return doc
}

func forecastDoc(row *types.WeatherForecast) map[string]any {
	return map[string]any{
		"location":            row.Location,
		"forecast_date":       dateString(row.ForecastDate),
		"temperature_min":     row.TemperatureMin,
		"temperature_max":     row.TemperatureMax,
		"humidity":            row.Humidity,
		"precipitation":       row.Precipitation,
		"wind_speed":          row.WindSpeed,
		"weather_description": row.WeatherDescription,
		"updated_at":          timestampString(row.UpdatedAt),
	}
}

func messageDoc(row *types.ChatMessage) map[string]any {
	doc := map[string]any{
		"user_id":    row.UserID.String(),
		"session_id": row.SessionID,
		"message":    row.Message,
		"sender":     row.Sender,
		"timestamp":  chatTimestampString(row.Timestamp),
	}
	if m := jsonMap(row.ContextData); m != nil {
		doc["context_data"] = m
	}
	return doc
}

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func timestampString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Chat stamps use the fixed-width layout so migrated turns interleave
// correctly with live ones under string ordering.
func chatTimestampString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(types.ChatTimestampLayout)
}

func jsonMap(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
