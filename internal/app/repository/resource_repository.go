package repository

import (
	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"gorm.io/gorm"
)

type ResourceRepository interface {
	Create(resource *model.Resource) error
	FindByID(id uint) (*model.Resource, error)
	FindByUserID(userID uint, limit, offset int) ([]model.Resource, int64, error)
	Delete(id uint) error
}

type resourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(resource *model.Resource) error {
	logger.Debug("Creating resource in database", map[string]interface{}{
		"user_id":    resource.UserID,
		"object_key": resource.ObjectKey,
	})

	if err := r.db.Omit("User").Create(resource).Error; err != nil {
		logger.Error("Failed to create resource in database", err, map[string]interface{}{
			"object_key": resource.ObjectKey,
		})
		return err
	}
	return nil
}

func (r *resourceRepository) FindByID(id uint) (*model.Resource, error) {
	var resource model.Resource
	if err := r.db.First(&resource, id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

// FindByUserID 사용자 첨부 파일 목록 (최신순)
func (r *resourceRepository) FindByUserID(userID uint, limit, offset int) ([]model.Resource, int64, error) {
	query := r.db.Model(&model.Resource{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var resources []model.Resource
	if err := query.Session(&gorm.Session{}).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&resources).Error; err != nil {
		return nil, 0, err
	}
	return resources, total, nil
}

func (r *resourceRepository) Delete(id uint) error {
	logger.Debug("Deleting resource from database", map[string]interface{}{
		"resource_id": id,
	})
	return r.db.Delete(&model.Resource{}, id).Error
}
