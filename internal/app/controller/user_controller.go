package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/memolite-backend/internal/app/service"
	apperrors "github.com/ikkim/memolite-backend/internal/errors"
	"github.com/ikkim/memolite-backend/internal/middleware"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{userService: userService}
}

func (ctrl *UserController) respondError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		apperrors.NotFound(c, apperrors.UserNotFound, "사용자를 찾을 수 없습니다")
		return
	}
	respondServiceError(c, middleware.GetLoggerFromContext(c), err, "user")
}

// GetMe 내 정보
// GET /api/v1/users/me
func (ctrl *UserController) GetMe(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	user, err := ctrl.userService.GetUser(userID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// GetUserStats 사용자 활동 통계
// GET /api/v1/users/:id/stats
func (ctrl *UserController) GetUserStats(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := ctrl.userService.GetUserStats(id)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers 전체 사용자 (관리자)
// GET /api/v1/users
func (ctrl *UserController) ListUsers(c *gin.Context) {
	users, err := ctrl.userService.ListUsers()
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	result := make([]gin.H, 0, len(users))
	for i := range users {
		result = append(result, userResponse(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"users": result,
		"count": len(result),
	})
}
