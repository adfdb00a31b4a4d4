package service

import (
	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/repository"
	"github.com/ikkim/memolite-backend/pkg/logger"
)

type SettingService interface {
	GetPublicSettings() (map[string]string, error)
	GetAllSettings() (map[string]string, error)
	UpdateSettings(values map[string]string) (map[string]string, error)
	RegistrationAllowed() (bool, error)
}

type settingService struct {
	settingRepo repository.SettingRepository
}

func NewSettingService(settingRepo repository.SettingRepository) SettingService {
	return &settingService{settingRepo: settingRepo}
}

func (s *settingService) GetPublicSettings() (map[string]string, error) {
	settings, err := s.settingRepo.FindByKeys(model.PublicSettingKeys)
	if err != nil {
		return nil, storeError(err)
	}
	return toSettingMap(settings), nil
}

func (s *settingService) GetAllSettings() (map[string]string, error) {
	settings, err := s.settingRepo.FindAll()
	if err != nil {
		return nil, storeError(err)
	}
	return toSettingMap(settings), nil
}

func (s *settingService) UpdateSettings(values map[string]string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, newValidationError("settings", "must not be empty")
	}
	for key := range values {
		if key == "" {
			return nil, newValidationError("settings", "key must not be empty")
		}
	}

	if err := s.settingRepo.Upsert(values); err != nil {
		logger.Error("Failed to update settings", err)
		return nil, storeError(err)
	}

	logger.Info("Settings updated", map[string]interface{}{
		"count": len(values),
	})
	return s.GetAllSettings()
}

// RegistrationAllowed reports whether allow_registration is exactly "true".
func (s *settingService) RegistrationAllowed() (bool, error) {
	settings, err := s.settingRepo.FindByKeys([]string{model.SettingAllowRegistration})
	if err != nil {
		return false, storeError(err)
	}
	for _, setting := range settings {
		if setting.Key == model.SettingAllowRegistration {
			return setting.Value == "true", nil
		}
	}
	return false, nil
}

func toSettingMap(settings []model.Setting) map[string]string {
	result := make(map[string]string, len(settings))
	for _, setting := range settings {
		result[setting.Key] = setting.Value
	}
	return result
}
