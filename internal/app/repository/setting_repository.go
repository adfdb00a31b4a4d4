package repository

import (
	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	FindAll() ([]model.Setting, error)
	FindByKeys(keys []string) ([]model.Setting, error)
	Upsert(values map[string]string) error
}

// "key" is a keyword in some dialects, so it goes through gorm's quoting.
var byKey = clause.OrderByColumn{Column: clause.Column{Name: "key"}}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) FindAll() ([]model.Setting, error) {
	var settings []model.Setting
	if err := r.db.Order(byKey).Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *settingRepository) FindByKeys(keys []string) ([]model.Setting, error) {
	var settings []model.Setting
	if err := r.db.Where(map[string]interface{}{"key": keys}).Order(byKey).Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// Upsert 설정 값 일괄 저장 (있으면 갱신)
func (r *settingRepository) Upsert(values map[string]string) error {
	logger.Debug("Upserting settings in database", map[string]interface{}{
		"count": len(values),
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			setting := model.Setting{Key: key, Value: value}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&setting).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
