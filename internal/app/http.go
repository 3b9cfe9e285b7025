package app

import (
	"github.com/gin-gonic/gin"

	"github.com/farmassist/farmassist-backend/internal/data/db"
	"github.com/farmassist/farmassist-backend/internal/data/migrate"
	httpx "github.com/farmassist/farmassist-backend/internal/http"
	httpH "github.com/farmassist/farmassist-backend/internal/http/handlers"
	httpMW "github.com/farmassist/farmassist-backend/internal/http/middleware"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	Field    *httpH.FieldHandler
	Weather  *httpH.WeatherHandler
	Market   *httpH.MarketHandler
	Disease  *httpH.DiseaseHandler
	Advisory *httpH.AdvisoryHandler
	Chat     *httpH.ChatHandler
	Admin    *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, cfg Config, serviceset Services, rel *db.Service, migrator *migrate.Migrator) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(rel),
		Auth:     httpH.NewAuthHandler(serviceset.Auth),
		Field:    httpH.NewFieldHandler(serviceset.Field),
		Weather:  httpH.NewWeatherHandler(serviceset.Weather, cfg.DefaultLocation),
		Market:   httpH.NewMarketHandler(serviceset.Market),
		Disease:  httpH.NewDiseaseHandler(serviceset.Disease),
		Advisory: httpH.NewAdvisoryHandler(serviceset.Advisory),
		Chat:     httpH.NewChatHandler(serviceset.Chat),
		Admin:    httpH.NewAdminHandler(migrator),
	}
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(serviceset.Auth, log),
	}
}

func wireRouter(handlerset Handlers, middleware Middleware) *gin.Engine {
	return httpx.NewRouter(httpx.RouterConfig{
		HealthHandler:   handlerset.Health,
		AuthHandler:     handlerset.Auth,
		AuthMiddleware:  middleware.Auth,
		FieldHandler:    handlerset.Field,
		WeatherHandler:  handlerset.Weather,
		MarketHandler:   handlerset.Market,
		DiseaseHandler:  handlerset.Disease,
		AdvisoryHandler: handlerset.Advisory,
		ChatHandler:     handlerset.Chat,
		AdminHandler:    handlerset.Admin,
	})
}
