package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/memolite-backend/internal/app/service"
	"github.com/ikkim/memolite-backend/internal/middleware"
)

type TagController struct {
	tagService service.TagService
}

func NewTagController(tagService service.TagService) *TagController {
	return &TagController{tagService: tagService}
}

// ListTags 태그 목록 (메모 수 내림차순, 이름 오름차순)
// GET /api/v1/tags
func (ctrl *TagController) ListTags(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	tags, err := ctrl.tagService.ListTags(c.Request.Context())
	if err != nil {
		respondServiceError(c, log, err, "list tags")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags":  tags,
		"count": len(tags),
	})
}
