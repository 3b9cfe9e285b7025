package repos

import (
	"gorm.io/gorm"

	"github.com/farmassist/farmassist-backend/internal/data/repos/chat"
	"github.com/farmassist/farmassist-backend/internal/data/repos/farm"
	"github.com/farmassist/farmassist-backend/internal/data/repos/market"
	"github.com/farmassist/farmassist-backend/internal/data/repos/user"
	"github.com/farmassist/farmassist-backend/internal/data/repos/weather"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type FieldRepo = farm.FieldRepo
type DiseaseReportRepo = farm.DiseaseReportRepo
type IrrigationRecordRepo = farm.IrrigationRecordRepo
type FertilizerRecordRepo = farm.FertilizerRecordRepo

type MarketPriceRepo = market.PriceRepo
type MarketFavoriteRepo = market.FavoriteRepo

type WeatherForecastRepo = weather.ForecastRepo

type ChatMessageRepo = chat.MessageRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewFieldRepo(db *gorm.DB, baseLog *logger.Logger) FieldRepo {
	return farm.NewFieldRepo(db, baseLog)
}
func NewDiseaseReportRepo(db *gorm.DB, baseLog *logger.Logger) DiseaseReportRepo {
	return farm.NewDiseaseReportRepo(db, baseLog)
}
func NewIrrigationRecordRepo(db *gorm.DB, baseLog *logger.Logger) IrrigationRecordRepo {
	return farm.NewIrrigationRecordRepo(db, baseLog)
}
func NewFertilizerRecordRepo(db *gorm.DB, baseLog *logger.Logger) FertilizerRecordRepo {
	return farm.NewFertilizerRecordRepo(db, baseLog)
}

func NewMarketPriceRepo(db *gorm.DB, baseLog *logger.Logger) MarketPriceRepo {
	return market.NewPriceRepo(db, baseLog)
}
func NewMarketFavoriteRepo(db *gorm.DB, baseLog *logger.Logger) MarketFavoriteRepo {
	return market.NewFavoriteRepo(db, baseLog)
}

func NewWeatherForecastRepo(db *gorm.DB, baseLog *logger.Logger) WeatherForecastRepo {
	return weather.NewForecastRepo(db, baseLog)
}

func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return chat.NewMessageRepo(db, baseLog)
}
