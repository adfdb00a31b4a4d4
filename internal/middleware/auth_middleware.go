package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/errors"
	"github.com/ikkim/memolite-backend/pkg/util"
)

// Context keys for user information
const (
	UserIDKey      = "user_id"
	UsernameKey    = "username"
	UserRoleKey    = "user_role"
	AccessTokenKey = "access_token"
)

// TokenChecker reports tokens revoked before expiry (logout).
type TokenChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret string
	checker   TokenChecker
}

// NewAuthMiddleware builds the middleware. checker may be nil when no blacklist is configured.
func NewAuthMiddleware(jwtSecret string, checker TokenChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		checker:   checker,
	}
}

// extractToken reads "Bearer <token>" or, for websocket clients, ?token=.
// ok is false when an Authorization header is present but malformed.
func extractToken(c *gin.Context) (token string, ok bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return c.Query("token"), true
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func (m *AuthMiddleware) revoked(c *gin.Context, token string) bool {
	if m.checker == nil {
		return false
	}
	revoked, err := m.checker.IsRevoked(c.Request.Context(), token)
	if err != nil {
		// fail open: a blacklist outage only re-admits logged-out tokens
		GetLoggerFromContext(c).Error("Token blacklist lookup failed", err)
		return false
	}
	return revoked
}

func setClaims(c *gin.Context, claims *util.Claims, token string) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UsernameKey, claims.Username)
	c.Set(UserRoleKey, model.UserRole(claims.Role))
	c.Set(AccessTokenKey, token)
}

// Authenticate validates JWT token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := extractToken(c)
		if !ok {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "인증 형식이 올바르지 않습니다")
			c.Abort()
			return
		}
		if token == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "로그인이 필요합니다")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			// 토큰 만료 에러인 경우 명확히 표시
			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "로그인이 만료되었습니다")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "유효하지 않은 인증 토큰입니다")
			}
			c.Abort()
			return
		}
		if claims.TokenType != util.TokenTypeAccess {
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "유효하지 않은 인증 토큰입니다")
			c.Abort()
			return
		}
		if m.revoked(c, token) {
			log.Warn("Revoked token used", map[string]interface{}{
				"user_id": claims.UserID,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "로그아웃된 토큰입니다")
			c.Abort()
			return
		}

		setClaims(c, claims, token)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id":  claims.UserID,
			"username": claims.Username,
			"role":     claims.Role,
		})

		c.Next()
	}
}

// OptionalAuthenticate validates JWT token if present (optional)
// - If token is present and valid: sets user info in context
// - If token is missing or invalid: continues as anonymous
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := extractToken(c)
		if !ok || token == "" {
			log.Debug("No usable token - continuing as anonymous", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Next()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil || claims.TokenType != util.TokenTypeAccess || m.revoked(c, token) {
			log.Debug("Token rejected - continuing as anonymous", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Next()
			return
		}

		setClaims(c, claims, token)

		log.Debug("User authenticated successfully (optional)", map[string]interface{}{
			"user_id":  claims.UserID,
			"username": claims.Username,
		})

		c.Next()
	}
}

// RequireRole checks if user has required role
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, exists := GetUserRole(c)
		if !exists {
			log.Warn("Role information not found in context", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		userID, _ := GetUserID(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        userID,
			"user_role":      role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.RespondWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "관리자만 사용할 수 있습니다")
		c.Abort()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetUserRole extracts user role from context
func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	return role.(model.UserRole), true
}

// GetAccessToken returns the raw bearer token of the request, if authenticated.
func GetAccessToken(c *gin.Context) string {
	return c.GetString(AccessTokenKey)
}

// ViewerFromContext resolves the requesting viewer; anonymous when no valid token was presented.
func ViewerFromContext(c *gin.Context) model.Viewer {
	userID, ok := GetUserID(c)
	if !ok {
		return model.AnonymousViewer()
	}
	role, _ := GetUserRole(c)
	return model.AuthenticatedViewer(userID, c.GetString(UsernameKey), role)
}
