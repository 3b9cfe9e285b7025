package db

import (
	types "github.com/farmassist/farmassist-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Identity
		// =========================
		&types.User{},

		// =========================
		// Farm geography + records
		// =========================
		&types.Field{},
		&types.DiseaseReport{},
		&types.IrrigationRecord{},
		&types.FertilizerRecord{},

		// =========================
		// Market
		// =========================
		&types.MarketPrice{},
		&types.MarketFavorite{},

		// =========================
		// Weather cache
		// =========================
		&types.WeatherForecast{},

		// =========================
		// Chat
		// =========================
		&types.ChatMessage{},
	)
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating relational tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}
