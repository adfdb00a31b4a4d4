package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/memolite-backend/config"
	appLogger "github.com/ikkim/memolite-backend/pkg/logger"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize initializes the database connection
func Initialize(cfg *config.DatabaseConfig) error {
	dsn := cfg.DSN()

	appLogger.Info("Connecting to database", map[string]interface{}{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.DBName,
		"user":     cfg.User,
		"driver":   cfg.Driver,
	})

	var err error
	DB, err = gorm.Open(openDialector(cfg.Driver, dsn), &gorm.Config{
		Logger: newGormLogger(logLevelFor(cfg.LogQueries)),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	appLogger.Info("Database connection established successfully", map[string]interface{}{
		"max_idle_conns": maxIdleConns,
		"max_open_conns": maxOpenConns,
	})
	return nil
}

const (
	maxIdleConns    = 10
	maxOpenConns    = 100
	connMaxLifetime = 30 * time.Minute
)

// DB_LOG_QUERIES=true면 모든 쿼리를 debug로 남긴다
func logLevelFor(logQueries bool) logger.LogLevel {
	if logQueries {
		return logger.Info
	}
	return logger.Warn
}

// openDialector picks the database/sql driver under gorm's postgres dialect.
// "postgres" selects lib/pq; anything else uses the bundled pgx driver.
func openDialector(driver, dsn string) gorm.Dialector {
	if driver == "postgres" {
		return postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        dsn,
		})
	}
	return postgres.Open(dsn)
}

// Close closes the database connection
func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
