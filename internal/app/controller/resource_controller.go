package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/service"
	apperrors "github.com/ikkim/memolite-backend/internal/errors"
	"github.com/ikkim/memolite-backend/internal/middleware"
)

type ResourceController struct {
	resourceService service.ResourceService
}

func NewResourceController(resourceService service.ResourceService) *ResourceController {
	return &ResourceController{
		resourceService: resourceService,
	}
}

func (ctrl *ResourceController) respondError(c *gin.Context, err error, context string) {
	log := middleware.GetLoggerFromContext(c)
	switch {
	case errors.Is(err, service.ErrStorageDisabled):
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.UploadDisabled, "파일 업로드가 비활성화되어 있습니다")
	case errors.Is(err, service.ErrResourceNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "파일을 찾을 수 없습니다")
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrStoreUnavailable):
		respondServiceError(c, log, err, context)
	default:
		log.Error("Object storage request failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "파일 저장소 요청에 실패했습니다")
	}
}

// GeneratePresignedURL S3 업로드용 Presigned URL 발급 및 리소스 등록
// POST /api/v1/resources/presigned-url
func (ctrl *ResourceController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.PresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presigned URL request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	resource, presigned, err := ctrl.resourceService.CreateUpload(c.Request.Context(), userID, req)
	if err != nil {
		ctrl.respondError(c, err, "presign upload")
		return
	}

	log.Info("Presigned URL generated successfully", map[string]interface{}{
		"resource_id":  resource.ID,
		"content_type": req.ContentType,
		"key":          presigned.Key,
	})

	c.JSON(http.StatusOK, gin.H{
		"resource":   resource,
		"upload_url": presigned.UploadURL,
		"file_url":   presigned.FileURL,
		"key":        presigned.Key,
		"expires_at": presigned.ExpiresAt,
	})
}

// ListResources 내 첨부 파일 목록
// GET /api/v1/resources
func (ctrl *ResourceController) ListResources(c *gin.Context) {
	var query model.ResourceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	page, err := ctrl.resourceService.ListResources(userID, query)
	if err != nil {
		ctrl.respondError(c, err, "list resources")
		return
	}

	c.JSON(http.StatusOK, page)
}

// DeleteResource 첨부 파일 삭제 (S3 오브젝트 포함)
// DELETE /api/v1/resources/:id
func (ctrl *ResourceController) DeleteResource(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := ctrl.resourceService.DeleteResource(c.Request.Context(), userID, id); err != nil {
		ctrl.respondError(c, err, "delete resource")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "파일이 삭제되었습니다",
	})
}
