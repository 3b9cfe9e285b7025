package app

import (
	"github.com/farmassist/farmassist-backend/internal/clients/genai"
	"github.com/farmassist/farmassist-backend/internal/data/documents"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
	"github.com/farmassist/farmassist-backend/internal/platform/media"
	"github.com/farmassist/farmassist-backend/internal/services"
)

type Services struct {
	Auth     services.AuthService
	Field    services.FieldService
	Weather  services.WeatherService
	Market   services.MarketService
	Chat     services.ChatService
	Disease  services.DiseaseService
	Advisory services.AdvisoryService
}

func wireServices(log *logger.Logger, cfg Config, docs *documents.Documents, reposet Repos, ai genai.Client, mediaStore media.Store) Services {
	log.Info("Wiring services...")

	weatherProvider := services.SimulatedWeatherProvider{}
	satelliteProvider := services.SimulatedSatelliteProvider{}
	marketProvider := services.SimulatedMarketProvider{}

	return Services{
		Auth:     services.NewAuthService(docs, reposet.User, cfg.JWTSecretKey, cfg.AccessTokenTTL, log),
		Field:    services.NewFieldService(docs, reposet.Field, satelliteProvider, log),
		Weather:  services.NewWeatherService(docs, reposet.WeatherForecast, weatherProvider, log),
		Market:   services.NewMarketService(docs, reposet.MarketPrice, reposet.MarketFavorite, marketProvider, log),
		Chat:     services.NewChatService(docs, reposet.ChatMessage, ai, log),
		Disease:  services.NewDiseaseService(docs, reposet.DiseaseReport, ai, mediaStore, log),
		Advisory: services.NewAdvisoryService(docs, reposet.Field, reposet.IrrigationRecord, reposet.FertilizerRecord, ai, log),
	}
}
