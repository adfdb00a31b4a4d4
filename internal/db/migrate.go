package db

import (
	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table owned by the service, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Memo{},
		&model.Tag{},
		&model.MemoTag{},
		&model.Comment{},
		&model.Resource{},
		&model.Setting{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(DB); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData(DB)
}

func seedInitialData(db *gorm.DB) error {
	logger.Info("Seeding initial data...")

	// 사이트 기본 설정 (이미 있으면 유지)
	if err := seedSettings(db); err != nil {
		logger.Error("Failed to seed settings", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

func seedSettings(db *gorm.DB) error {
	for key, value := range model.DefaultSettings {
		setting := model.Setting{Key: key, Value: value}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&setting).Error; err != nil {
			return err
		}
	}

	logger.Info("Default settings ensured", map[string]interface{}{
		"count": len(model.DefaultSettings),
	})
	return nil
}
