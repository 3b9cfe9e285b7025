package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/farmassist/farmassist-backend/internal/http/handlers"
	httpMW "github.com/farmassist/farmassist-backend/internal/http/middleware"
)

type RouterConfig struct {
	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	FieldHandler    *httpH.FieldHandler
	WeatherHandler  *httpH.WeatherHandler
	MarketHandler   *httpH.MarketHandler
	DiseaseHandler  *httpH.DiseaseHandler
	AdvisoryHandler *httpH.AdvisoryHandler
	ChatHandler     *httpH.ChatHandler

	AdminHandler  *httpH.AdminHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.Check)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/users/register", cfg.AuthHandler.Register)
			api.POST("/users/login", cfg.AuthHandler.Login)
		}

		// Fields
		if cfg.FieldHandler != nil {
			api.POST("/fields", cfg.FieldHandler.Create)
			api.GET("/fields", cfg.FieldHandler.List)
			api.GET("/field_monitoring", cfg.FieldHandler.Monitor)
		}

		// Weather
		if cfg.WeatherHandler != nil {
			api.GET("/weather", cfg.WeatherHandler.Forecast)
		}

		// Market
		if cfg.MarketHandler != nil {
			api.GET("/market_prices", cfg.MarketHandler.Prices)
			api.GET("/market_favorites", cfg.MarketHandler.ListFavorites)
			api.POST("/market_favorites", cfg.MarketHandler.AddFavorite)
			api.DELETE("/market_favorites/:id", cfg.MarketHandler.RemoveFavorite)
		}

		// Disease detection
		if cfg.DiseaseHandler != nil {
			api.POST("/disease_detect", cfg.DiseaseHandler.Detect)
			api.GET("/disease_reports", cfg.DiseaseHandler.ListReports)
			api.PUT("/disease_reports/:id/status", cfg.DiseaseHandler.UpdateReportStatus)
		}

		// Advisory
		if cfg.AdvisoryHandler != nil {
			api.GET("/fertilizer_recommendations", cfg.AdvisoryHandler.FertilizerRecommendations)
			api.GET("/irrigation_records", cfg.AdvisoryHandler.ListIrrigation)
			api.POST("/irrigation_records", cfg.AdvisoryHandler.LogIrrigation)
		}

		// Chat
		if cfg.ChatHandler != nil {
			api.POST("/chat", cfg.ChatHandler.Send)
			api.GET("/chat/history", cfg.ChatHandler.History)
			api.GET("/chat/sessions", cfg.ChatHandler.Sessions)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.GET("/users/profile", cfg.AuthHandler.Profile)
		}

		// One-shot relational-to-document migration.
		if cfg.AdminHandler != nil {
			protected.POST("/admin/migrate", cfg.AdminHandler.Migrate)
		}
	}

	return r
}
