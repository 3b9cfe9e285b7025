package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/farmassist/farmassist-backend/internal/clients/genai"
	"github.com/farmassist/farmassist-backend/internal/data/db"
	"github.com/farmassist/farmassist-backend/internal/data/documents"
	"github.com/farmassist/farmassist-backend/internal/data/migrate"
	"github.com/farmassist/farmassist-backend/internal/docstore"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
	"github.com/farmassist/farmassist-backend/internal/platform/media"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Docstore *docstore.Handle
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
}

// New boots the whole backend: document store first, relational store
// second, then the service and handler graph. Every optional integration
// degrades instead of failing, so the only fatal paths are a broken
// config file and a relational store that cannot even open.
func New() (*App, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Skipping .env file: %v\n", err)
	}

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	ctx := context.Background()

	handle := docstore.Bootstrap(ctx, log)
	docs := documents.New(handle.Store, log)

	rel, err := db.Connect(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init relational store: %w", err)
	}
	if err := rel.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("relational automigrate: %w", err)
	}

	ai, err := genai.NewClient(log)
	if err != nil {
		log.Warn("Generative AI disabled, rule-based answers only", "error", err)
		ai = genai.NewDisabledClient()
	}

	mediaStore, err := media.New(ctx, log)
	if err != nil {
		log.Warn("Cloud media store unavailable, using local directory", "error", err)
		mediaStore, err = media.NewLocalStore("uploads", log)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init media store: %w", err)
		}
	}

	reposet := wireRepos(rel.DB(), log)

	migrator := migrate.New(handle.Store,
		reposet.User,
		reposet.Field,
		reposet.DiseaseReport,
		reposet.IrrigationRecord,
		reposet.FertilizerRecord,
		reposet.MarketPrice,
		reposet.MarketFavorite,
		reposet.WeatherForecast,
		reposet.ChatMessage,
		log)

	serviceset := wireServices(log, cfg, docs, reposet, ai, mediaStore)
	handlerset := wireHandlers(log, cfg, serviceset, rel, migrator)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(handlerset, middleware)

	return &App{
		Log:      log,
		DB:       rel.DB(),
		Docstore: handle,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
