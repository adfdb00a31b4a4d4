package service

import (
	"errors"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/repository"
	"gorm.io/gorm"
)

type UserService interface {
	GetUser(id uint) (*model.User, error)
	GetUserStats(id uint) (*model.UserStats, error)
	ListUsers() ([]model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetUser(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeError(err)
	}
	return user, nil
}

// GetUserStats 사용자 통계 (없는 사용자는 ErrUserNotFound)
func (s *userService) GetUserStats(id uint) (*model.UserStats, error) {
	if _, err := s.GetUser(id); err != nil {
		return nil, err
	}
	stats, err := s.userRepo.GetStats(id)
	if err != nil {
		return nil, storeError(err)
	}
	return stats, nil
}

func (s *userService) ListUsers() ([]model.User, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, storeError(err)
	}
	return users, nil
}
