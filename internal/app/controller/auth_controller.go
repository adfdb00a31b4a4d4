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

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

func userResponse(user *model.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"nickname":   user.Nickname,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	}
}

// Register handles user registration
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	user, tokens, err := ctrl.authService.Register(req.Username, req.Password, req.Nickname)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameAlreadyExists):
			log.Warn("Registration failed: username already exists", map[string]interface{}{
				"username": req.Username,
			})
			apperrors.Conflict(c, apperrors.AuthUsernameExists, "이미 사용 중인 아이디입니다")
		case errors.Is(err, service.ErrRegistrationDisabled):
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthRegistrationDisabled, "현재 회원가입이 비활성화되어 있습니다")
		default:
			respondServiceError(c, log, err, "register user")
		}
		return
	}

	log.Info("User registered successfully", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    userResponse(user),
		"tokens":  tokens,
	})
}

// Login handles user login
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("Login failed: invalid credentials", map[string]interface{}{
				"username": req.Username,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "아이디 또는 비밀번호가 올바르지 않습니다")
			return
		}
		respondServiceError(c, log, err, "login")
		return
	}

	log.Info("Login successful", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    userResponse(user),
		"tokens":  tokens,
	})
}

// GetMe returns current user information
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized access to GetMe endpoint")
		apperrors.Unauthorized(c, "로그인이 필요합니다")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			log.Warn("User not found", map[string]interface{}{
				"user_id": userID,
			})
			apperrors.NotFound(c, apperrors.UserNotFound, "사용자를 찾을 수 없습니다")
			return
		}
		respondServiceError(c, log, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userResponse(user),
	})
}

// RefreshToken 리프레시 토큰으로 새 토큰 발급
// POST /api/v1/auth/refresh
func (ctrl *AuthController) RefreshToken(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, tokens, err := ctrl.authService.Refresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			log.Warn("Token refresh rejected")
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "유효하지 않은 리프레시 토큰입니다")
			return
		}
		respondServiceError(c, log, err, "refresh token")
		return
	}

	log.Info("Token refreshed", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"tokens": tokens,
	})
}

// Logout 현재 액세스 토큰을 만료 시까지 차단
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.authService.Logout(c.Request.Context(), middleware.GetAccessToken(c)); err != nil {
		log.Error("Failed to revoke token", err)
		apperrors.InternalError(c, "로그아웃 처리 중 오류가 발생했습니다")
		return
	}

	userID, _ := middleware.GetUserID(c)
	log.Info("User logged out", map[string]interface{}{
		"user_id": userID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}
