package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/farmassist/farmassist-backend/internal/platform/envutil"
	"github.com/farmassist/farmassist-backend/internal/platform/logger"
)

const (
	connectAttempts  = 5
	connectBaseDelay = 1 * time.Second

	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Service wraps the relational store behind one handle regardless of
// which driver backs it.
type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

// Connect opens the relational store. Postgres is used when DATABASE_URL
// or POSTGRES_HOST is set; an unreachable Postgres or an unconfigured one
// degrades to an embedded SQLite file so the relational side stays
// available.
func Connect(logg *logger.Logger) (*Service, error) {
	if envutil.GetEnv("DATABASE_URL", "", nil) != "" || envutil.GetEnv("POSTGRES_HOST", "", nil) != "" {
		svc, err := NewPostgresService(logg)
		if err == nil {
			return svc, nil
		}
		logg.Warn("Postgres unavailable, degrading to embedded SQLite", "error", err)
	}
	return NewSQLiteService(logg)
}

// NewPostgresService opens the relational store. DATABASE_URL wins when
// set; otherwise the DSN is assembled from the POSTGRES_* variables.
// Connection attempts back off doubling from one second.
func NewPostgresService(logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "PostgresService")

	dsn := envutil.GetEnv("DATABASE_URL", "", logg)
	if dsn == "" {
		host := envutil.GetEnv("POSTGRES_HOST", "localhost", logg)
		port := envutil.GetEnv("POSTGRES_PORT", "5432", logg)
		user := envutil.GetEnv("POSTGRES_USER", "postgres", logg)
		password := envutil.GetEnv("POSTGRES_PASSWORD", "", logg)
		name := envutil.GetEnv("POSTGRES_NAME", "farmassist", logg)
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
	}

	var (
		gdb *gorm.DB
		err error
	)
	delay := connectBaseDelay
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		gdb, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: newGormLogger()})
		if err == nil {
			var sqlDB *sql.DB
			if sqlDB, err = gdb.DB(); err == nil {
				if err = sqlDB.Ping(); err == nil {
					break
				}
			}
		}
		if attempt == connectAttempts {
			return nil, fmt.Errorf("failed to connect to Postgres after %d attempts: %w", connectAttempts, err)
		}
		serviceLog.Warn("Postgres not ready, retrying", "attempt", attempt, "delay", delay.String(), "error", err)
		time.Sleep(delay)
		delay *= 2
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	serviceLog.Info("Connected to Postgres")
	return &Service{db: gdb, driver: DriverPostgres, log: serviceLog}, nil
}

func newGormLogger() gormLogger.Interface {
	return gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func (s *Service) DB() *gorm.DB { return s.db }

// Driver names the backing engine, "postgres" or "sqlite".
func (s *Service) Driver() string { return s.driver }

// Ping reports whether the pool can still reach the server. The
// fallback layer treats a failed ping as "relational side unavailable".
func (s *Service) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
