package repository

import (
	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindAll() ([]model.User, error)
	Update(user *model.User) error
	GetStats(userID uint) (*model.UserStats, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"username": user.Username,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"username": user.Username,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		logger.Debug("User not found by ID in database", map[string]interface{}{
			"user_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	logger.Debug("Finding user by username in database", map[string]interface{}{
		"username": username,
	})

	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		logger.Debug("User not found by username in database", map[string]interface{}{
			"username": username,
			"error":    err.Error(),
		})
		return nil, err
	}

	logger.Debug("User found by username in database", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return &user, nil
}

// FindAll 전체 사용자 목록 (최근 가입순)
func (r *userRepository) FindAll() ([]model.User, error) {
	var users []model.User
	if err := r.db.Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		logger.Error("Failed to list users in database", err)
		return nil, err
	}

	logger.Debug("Users listed from database", map[string]interface{}{
		"count": len(users),
	})
	return users, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

// GetStats 작성 메모 수, 사용한 태그 수(중복 제외), 작성 댓글 수
func (r *userRepository) GetStats(userID uint) (*model.UserStats, error) {
	var stats model.UserStats

	if err := r.db.Model(&model.Memo{}).Where("user_id = ?", userID).Count(&stats.TotalMemos).Error; err != nil {
		return nil, err
	}

	if err := r.db.Table("memo_tags").
		Joins("JOIN memos ON memos.id = memo_tags.memo_id").
		Where("memos.user_id = ?", userID).
		Distinct("memo_tags.tag_id").
		Count(&stats.TotalTags).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.Comment{}).Where("user_id = ?", userID).Count(&stats.TotalComments).Error; err != nil {
		return nil, err
	}

	logger.Debug("User stats computed", map[string]interface{}{
		"user_id":        userID,
		"total_memos":    stats.TotalMemos,
		"total_tags":     stats.TotalTags,
		"total_comments": stats.TotalComments,
	})
	return &stats, nil
}
