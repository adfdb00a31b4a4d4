package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/service"
	"github.com/ikkim/memolite-backend/internal/middleware"
)

type SettingController struct {
	settingService service.SettingService
}

func NewSettingController(settingService service.SettingService) *SettingController {
	return &SettingController{settingService: settingService}
}

// GetPublicSettings 비로그인 사용자도 볼 수 있는 설정
// GET /api/v1/settings/public
func (ctrl *SettingController) GetPublicSettings(c *gin.Context) {
	settings, err := ctrl.settingService.GetPublicSettings()
	if err != nil {
		respondServiceError(c, middleware.GetLoggerFromContext(c), err, "settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// GetSettings 전체 설정 (관리자)
// GET /api/v1/settings
func (ctrl *SettingController) GetSettings(c *gin.Context) {
	settings, err := ctrl.settingService.GetAllSettings()
	if err != nil {
		respondServiceError(c, middleware.GetLoggerFromContext(c), err, "settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings 설정 변경 (관리자)
// PUT /api/v1/settings
func (ctrl *SettingController) UpdateSettings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	settings, err := ctrl.settingService.UpdateSettings(req.Settings)
	if err != nil {
		respondServiceError(c, log, err, "update settings")
		return
	}

	userID, _ := middleware.GetUserID(c)
	log.Info("Settings updated by admin", map[string]interface{}{
		"user_id": userID,
		"keys":    len(req.Settings),
	})

	c.JSON(http.StatusOK, gin.H{
		"message":  "설정이 저장되었습니다",
		"settings": settings,
	})
}
