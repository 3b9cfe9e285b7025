package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/farmassist/farmassist-backend/internal/platform/envutil"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

// NewSQLiteService opens an embedded SQLite file at SQLITE_PATH. It is
// the zero-configuration relational store for local development and for
// deployments where Postgres never comes up.
func NewSQLiteService(logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "SQLiteService")

	path := envutil.GetEnv("SQLITE_PATH", "farmassist.db", logg)
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite at %s: %w", path, err)
	}
	if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	serviceLog.Info("Opened SQLite store", "path", path)
	return &Service{db: gdb, driver: DriverSQLite, log: serviceLog}, nil
}
