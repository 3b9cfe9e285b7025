package app

import (
	"gorm.io/gorm"

	"github.com/farmassist/farmassist-backend/internal/data/repos"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

type Repos struct {
	User repos.UserRepo

	Field            repos.FieldRepo
	DiseaseReport    repos.DiseaseReportRepo
	IrrigationRecord repos.IrrigationRecordRepo
	FertilizerRecord repos.FertilizerRecordRepo

	MarketPrice    repos.MarketPriceRepo
	MarketFavorite repos.MarketFavoriteRepo

	WeatherForecast repos.WeatherForecastRepo

	ChatMessage repos.ChatMessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:             repos.NewUserRepo(db, log),
		Field:            repos.NewFieldRepo(db, log),
		DiseaseReport:    repos.NewDiseaseReportRepo(db, log),
		IrrigationRecord: repos.NewIrrigationRecordRepo(db, log),
		FertilizerRecord: repos.NewFertilizerRecordRepo(db, log),
		MarketPrice:      repos.NewMarketPriceRepo(db, log),
		MarketFavorite:   repos.NewMarketFavoriteRepo(db, log),
		WeatherForecast:  repos.NewWeatherForecastRepo(db, log),
		ChatMessage:      repos.NewChatMessageRepo(db, log),
	}
}
