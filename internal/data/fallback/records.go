package fallback

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	types "github.com/farmassist/farmassist-backend/internal/domain"
)

// Canonical records are what the service layer hands to HTTP: ids as
// strings, dates as YYYY-MM-DD, timestamps as RFC3339, regardless of
// which backend produced the row.

type UserRecord struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	ProfileImage string `json:"profile_image"`
	CreatedAt    string `json:"created_at"`
}

func UserFromRow(row *types.User) UserRecord {
	return UserRecord{
		ID:           row.ID.String(),
		Username:     row.Username,
		Email:        row.Email,
		FullName:     row.FullName,
		Phone:        row.Phone,
		ProfileImage: row.ProfileImage,
		CreatedAt:    timestampString(row.CreatedAt),
	}
}

func UserFromDoc(doc map[string]any) UserRecord {
	return UserRecord{
		ID:           docString(doc, "id"),
		Username:     docString(doc, "username"),
		Email:        docString(doc, "email"),
		FullName:     docString(doc, "full_name"),
		Phone:        docString(doc, "phone"),
		ProfileImage: docString(doc, "profile_image"),
		CreatedAt:    docString(doc, "created_at"),
	}
}

type FieldRecord struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Name          string         `json:"name"`
	Location      string         `json:"location"`
	Area          float64        `json:"area"`
	CropType      string         `json:"crop_type"`
	SoilType      string         `json:"soil_type"`
	PlantingDate  string         `json:"planting_date,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	SatelliteData map[string]any `json:"satellite_data,omitempty"`
	WeatherData   map[string]any `json:"weather_data,omitempty"`
	CreatedAt     string         `json:"created_at"`
	LastUpdated   string         `json:"last_updated"`
}

func FieldFromRow(row *types.Field) FieldRecord {
	rec := FieldRecord{
		ID:            row.ID.String(),
		UserID:        row.UserID.String(),
		Name:          row.Name,
		Location:      row.Location,
		Area:          row.Area,
		CropType:      row.CropType,
		SoilType:      row.SoilType,
		Notes:         row.Notes,
		SatelliteData: jsonMap(row.SatelliteData),
		WeatherData:   jsonMap(row.WeatherData),
		CreatedAt:     timestampString(row.CreatedAt),
		LastUpdated:   timestampString(row.LastUpdated),
	}
	if row.PlantingDate != nil {
		rec.PlantingDate = dateString(*row.PlantingDate)
	}
	return rec
}

func FieldFromDoc(doc map[string]any) FieldRecord {
	return FieldRecord{
		ID:            docString(doc, "id"),
		UserID:        docString(doc, "user_id"),
		Name:          docString(doc, "name"),
		Location:      docString(doc, "location"),
		Area:          docFloat(doc, "area"),
		CropType:      docString(doc, "crop_type"),
		SoilType:      docString(doc, "soil_type"),
		PlantingDate:  docDate(doc, "planting_date"),
		Notes:         docString(doc, "notes"),
		SatelliteData: docMap(doc, "satellite_data"),
		WeatherData:   docMap(doc, "weather_data"),
		CreatedAt:     docString(doc, "created_at"),
		LastUpdated:   docString(doc, "last_updated"),
	}
}

type ReportRecord struct {
	ID                       string  `json:"id"`
	UserID                   string  `json:"user_id"`
	FieldID                  string  `json:"field_id"`
	DiseaseName              string  `json:"disease_name"`
	DetectionDate            string  `json:"detection_date"`
	ConfidenceScore          float64 `json:"confidence_score"`
	ImagePath                string  `json:"image_path,omitempty"`
	Symptoms                 string  `json:"symptoms,omitempty"`
	TreatmentRecommendations string  `json:"treatment_recommendations,omitempty"`
	Status                   string  `json:"status"`
	Notes                    string  `json:"notes,omitempty"`
}

func ReportFromRow(row *types.DiseaseReport) ReportRecord {
	return ReportRecord{
		ID:                       row.ID.String(),
		UserID:                   row.UserID.String(),
		FieldID:                  row.FieldID.String(),
		DiseaseName:              row.DiseaseName,
		DetectionDate:            dateString(row.DetectionDate),
		ConfidenceScore:          row.ConfidenceScore,
		ImagePath:                row.ImagePath,
		Symptoms:                 row.Symptoms,
		TreatmentRecommendations: row.TreatmentRecommendations,
		Status:                   row.Status,
		Notes:                    row.Notes,
	}
}

func ReportFromDoc(doc map[string]any) ReportRecord {
	return ReportRecord{
		ID:                       docString(doc, "id"),
		UserID:                   docString(doc, "user_id"),
		FieldID:                  docString(doc, "field_id"),
		DiseaseName:              docString(doc, "disease_name"),
		DetectionDate:            docDate(doc, "detection_date"),
		ConfidenceScore:          docFloat(doc, "confidence_score"),
		ImagePath:                docString(doc, "image_path"),
		Symptoms:                 docString(doc, "symptoms"),
		TreatmentRecommendations: docString(doc, "treatment_recommendations"),
		Status:                   docString(doc, "status"),
		Notes:                    docString(doc, "notes"),
	}
}

type PriceRecord struct {
	ID         string  `json:"id"`
	CropType   string  `json:"crop_type"`
	MarketName string  `json:"market_name"`
	Price      float64 `json:"price"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
	Date       string  `json:"date"`
	Source     string  `json:"source,omitempty"`
}

func PriceFromRow(row *types.MarketPrice) PriceRecord {
	return PriceRecord{
		ID:         row.ID.String(),
		CropType:   row.CropType,
		MarketName: row.MarketName,
		Price:      row.Price,
		MinPrice:   row.MinPrice,
		MaxPrice:   row.MaxPrice,
		Date:       dateString(row.Date),
		Source:     row.Source,
	}
}

func PriceFromDoc(doc map[string]any) PriceRecord {
	return PriceRecord{
		ID:         docString(doc, "id"),
		CropType:   docString(doc, "crop_type"),
		MarketName: docString(doc, "market_name"),
		Price:      docFloat(doc, "price"),
		MinPrice:   docFloat(doc, "min_price"),
		MaxPrice:   docFloat(doc, "max_price"),
		Date:       docDate(doc, "date"),
		Source:     docString(doc, "source"),
	}
}

type FavoriteRecord struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	CropType      string   `json:"crop_type"`
	MarketName    string   `json:"market_name,omitempty"`
	PriceAlertMin *float64 `json:"price_alert_min,omitempty"`
	PriceAlertMax *float64 `json:"price_alert_max,omitempty"`
}

func FavoriteFromRow(row *types.MarketFavorite) FavoriteRecord {
	return FavoriteRecord{
		ID:            row.ID.String(),
		UserID:        row.UserID.String(),
		CropType:      row.CropType,
		MarketName:    row.MarketName,
		PriceAlertMin: row.PriceAlertMin,
		PriceAlertMax: row.PriceAlertMax,
	}
}

func FavoriteFromDoc(doc map[string]any) FavoriteRecord {
	rec := FavoriteRecord{
		ID:         docString(doc, "id"),
		UserID:     docString(doc, "user_id"),
		CropType:   docString(doc, "crop_type"),
		MarketName: docString(doc, "market_name"),
	}
	if v, ok := doc["price_alert_min"]; ok && v != nil {
		f := docFloat(doc, "price_alert_min")
		rec.PriceAlertMin = &f
	}
	if v, ok := doc["price_alert_max"]; ok && v != nil {
		f := docFloat(doc, "price_alert_max")
		rec.PriceAlertMax = &f
	}
	return rec
}

type ForecastRecord struct {
	ID                 string  `json:"id"`
	Location           string  `json:"location"`
	ForecastDate       string  `json:"forecast_date"`
	TemperatureMin     float64 `json:"temperature_min"`
	TemperatureMax     float64 `json:"temperature_max"`
	Humidity           float64 `json:"humidity"`
	Precipitation      float64 `json:"precipitation"`
	WindSpeed          float64 `json:"wind_speed"`
	WeatherDescription string  `json:"weather_description"`
	UpdatedAt          string  `json:"updated_at"`
}

func ForecastFromRow(row *types.WeatherForecast) ForecastRecord {
	return ForecastRecord{
		ID:                 row.ID.String(),
		Location:           row.Location,
		ForecastDate:       dateString(row.ForecastDate),
		TemperatureMin:     row.TemperatureMin,
		TemperatureMax:     row.TemperatureMax,
		Humidity:           row.Humidity,
		Precipitation:      row.Precipitation,
		WindSpeed:          row.WindSpeed,
		WeatherDescription: row.WeatherDescription,
		UpdatedAt:          timestampString(row.UpdatedAt),
	}
}

func ForecastFromDoc(doc map[string]any) ForecastRecord {
	return ForecastRecord{
		ID:                 docString(doc, "id"),
		Location:           docString(doc, "location"),
		ForecastDate:       docDate(doc, "forecast_date"),
		TemperatureMin:     docFloat(doc, "temperature_min"),
		TemperatureMax:     docFloat(doc, "temperature_max"),
		Humidity:           docFloat(doc, "humidity"),
		Precipitation:      docFloat(doc, "precipitation"),
		WindSpeed:          docFloat(doc, "wind_speed"),
		WeatherDescription: docString(doc, "weather_description"),
		UpdatedAt:          docString(doc, "updated_at"),
	}
}

type ChatMessageRecord struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	SessionID   string         `json:"session_id"`
	Message     string         `json:"message"`
	Sender      string         `json:"sender"`
	Timestamp   string         `json:"timestamp"`
	ContextData map[string]any `json:"context_data,omitempty"`
}

func ChatMessageFromRow(row *types.ChatMessage) ChatMessageRecord {
	return ChatMessageRecord{
		ID:          row.ID.String(),
		UserID:      row.UserID.String(),
		SessionID:   row.SessionID,
		Message:     row.Message,
		Sender:      row.Sender,
		Timestamp:   chatTimestampString(row.Timestamp),
		ContextData: jsonMap(row.ContextData),
	}
}

func ChatMessageFromDoc(doc map[string]any) ChatMessageRecord {
	return ChatMessageRecord{
		ID:          docString(doc, "id"),
		UserID:      docString(doc, "user_id"),
		SessionID:   docString(doc, "session_id"),
		Message:     docString(doc, "message"),
		Sender:      docString(doc, "sender"),
		Timestamp:   docString(doc, "timestamp"),
		ContextData: docMap(doc, "context_data"),
	}
}

type IrrigationRecord struct {
	ID       string  `json:"id"`
	FieldID  string  `json:"field_id"`
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Method   string  `json:"method,omitempty"`
	Duration int     `json:"duration,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

func IrrigationFromRow(row *types.IrrigationRecord) IrrigationRecord {
	return IrrigationRecord{
		ID:       row.ID.String(),
		FieldID:  row.FieldID.String(),
		Date:     dateString(row.Date),
		Amount:   row.Amount,
		Method:   row.Method,
		Duration: row.Duration,
		Notes:    row.Notes,
	}
}

func IrrigationFromDoc(doc map[string]any) IrrigationRecord {
	return IrrigationRecord{
		ID:       docString(doc, "id"),
		FieldID:  docString(doc, "field_id"),
		Date:     docDate(doc, "date"),
		Amount:   docFloat(doc, "amount"),
		Method:   docString(doc, "method"),
		Duration: int(docFloat(doc, "duration")),
		Notes:    docString(doc, "notes"),
	}
}

type FertilizerRecord struct {
	ID              string  `json:"id"`
	FieldID         string  `json:"field_id"`
	Date            string  `json:"date"`
	FertilizerType  string  `json:"fertilizer_type"`
	ApplicationRate float64 `json:"application_rate"`
	Method          string  `json:"method,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

func FertilizerFromRow(row *types.FertilizerRecord) FertilizerRecord {
	return FertilizerRecord{
		ID:              row.ID.String(),
		FieldID:         row.FieldID.String(),
		Date:            dateString(row.Date),
		FertilizerType:  row.FertilizerType,
		ApplicationRate: row.ApplicationRate,
		Method:          row.Method,
		Notes:           row.Notes,
	}
}

func FertilizerFromDoc(doc map[string]any) FertilizerRecord {
	return FertilizerRecord{
		ID:              docString(doc, "id"),
		FieldID:         docString(doc, "field_id"),
		Date:            docDate(doc, "date"),
		FertilizerType:  docString(doc, "fertilizer_type"),
		ApplicationRate: docFloat(doc, "application_rate"),
		Method:          docString(doc, "method"),
		Notes:           docString(doc, "notes"),
	}
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

// Chat stamps use the fixed-width layout so records from either backend
// compare consistently under string ordering.
func chatTimestampString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(types.ChatTimestampLayout)
}

func docString(doc map[string]any, key string) string {
	switch v := doc[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func docFloat(doc map[string]any, key string) float64 {
	switch v := doc[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

// docDate normalizes whatever the document side stored (ISO date,
// RFC3339 timestamp, time.Time) into YYYY-MM-DD.
func docDate(doc map[string]any, key string) string {
	switch v := doc[key].(type) {
	case time.Time:
		return dateString(v)
	case string:
		if v == "" {
			return ""
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return dateString(t)
		}
		if len(v) >= 10 {
			if _, err := time.Parse("2006-01-02", v[:10]); err == nil {
				return v[:10]
			}
		}
		return v
	}
	return ""
}

func docMap(doc map[string]any, key string) map[string]any {
	m, _ := doc[key].(map[string]any)
	return m
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
