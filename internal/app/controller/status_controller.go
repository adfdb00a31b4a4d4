package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/service"
	"github.com/ikkim/memolite-backend/internal/middleware"
	"github.com/ikkim/memolite-backend/internal/storage"
)

// memos 호환 클라이언트가 기대하는 버전
const compatVersion = "0.24.4"

type StatusController struct {
	settingService service.SettingService
	environment    string
	uploadEnabled  bool
}

func NewStatusController(settingService service.SettingService, environment string, uploadEnabled bool) *StatusController {
	return &StatusController{
		settingService: settingService,
		environment:    environment,
		uploadEnabled:  uploadEnabled,
	}
}

// GetStatus 서버 프로필 (memos 클라이언트 호환)
// GET /api/v1/status
func (ctrl *StatusController) GetStatus(c *gin.Context) {
	settings, err := ctrl.settingService.GetPublicSettings()
	if err != nil {
		respondServiceError(c, middleware.GetLoggerFromContext(c), err, "status")
		return
	}

	maxUploadMiB := int64(0)
	if ctrl.uploadEnabled {
		maxUploadMiB = storage.MaxResourceSize >> 20
	}

	c.JSON(http.StatusOK, gin.H{
		"host": "memolite",
		"profile": gin.H{
			"mode":    ctrl.environment,
			"version": compatVersion,
		},
		"allowSignUp":          settings[model.SettingAllowRegistration] == "true",
		"disablePasswordLogin": false,
		"disablePublicMemos":   false,
		"maxUploadSizeMiB":     maxUploadMiB,
		"memo": gin.H{
			"enableComment":       true,
			"enableTagSuggestion": true,
		},
		"customizedProfile": gin.H{
			"title":       settings[model.SettingSiteTitle],
			"description": settings[model.SettingSiteDescription],
		},
	})
}
