package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/repository"
	"github.com/ikkim/memolite-backend/internal/metrics"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"github.com/ikkim/memolite-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrUserNotFound          = errors.New("user not found")
	ErrRegistrationDisabled  = errors.New("registration is disabled")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
)

// TokenRevoker invalidates a token before its natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

type AuthService interface {
	Register(username, password, nickname string) (*model.User, *util.TokenPair, error)
	Login(username, password string) (*model.User, *util.TokenPair, error)
	Refresh(refreshToken string) (*model.User, *util.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	GetUserByID(id uint) (*model.User, error)
}

type authService struct {
	userRepo       repository.UserRepository
	settingService SettingService
	revoker        TokenRevoker
	jwtSecret      string
	accessExpiry   time.Duration
	refreshExpiry  time.Duration
}

// NewAuthService builds the auth service. revoker may be nil, in which case
// logout only succeeds without invalidating the token server side.
func NewAuthService(
	userRepo repository.UserRepository,
	settingService SettingService,
	revoker TokenRevoker,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		settingService: settingService,
		revoker:        revoker,
		jwtSecret:      jwtSecret,
		accessExpiry:   accessExpiry,
		refreshExpiry:  refreshExpiry,
	}
}

func (s *authService) Register(username, password, nickname string) (*model.User, *util.TokenPair, error) {
	username = strings.TrimSpace(username)
	logger.Info("Attempting user registration", map[string]interface{}{
		"username": username,
	})

	allowed, err := s.settingService.RegistrationAllowed()
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		logger.Warn("Registration rejected: disabled by settings", map[string]interface{}{
			"username": username,
		})
		metrics.TrackAuthAttempt("failure", "register")
		return nil, nil, ErrRegistrationDisabled
	}

	if err := util.ValidateCredentials(username, password); err != nil {
		field := "password"
		if errors.Is(err, util.ErrUsernameTooShort) {
			field = "username"
		}
		return nil, nil, newValidationError(field, err.Error())
	}

	existingUser, err := s.userRepo.FindByUsername(username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"username": username,
		})
		return nil, nil, storeError(err)
	}
	if existingUser != nil {
		logger.Warn("Registration failed: username already exists", map[string]interface{}{
			"username": username,
		})
		metrics.TrackAuthAttempt("failure", "register")
		return nil, nil, ErrUsernameAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"username": username,
		})
		return nil, nil, err
	}

	if nickname == "" {
		nickname = username
	}
	user := &model.User{
		Username:     username,
		Nickname:     nickname,
		PasswordHash: hashedPassword,
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, nil, storeError(err)
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	metrics.TrackAuthAttempt("success", "register")
	logger.Info("User registered successfully", map[string]interface{}{
		"user_id":  user.ID,
		"username": username,
		"role":     user.Role,
	})
	return user, tokens, nil
}

func (s *authService) Login(username, password string) (*model.User, *util.TokenPair, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"username": username,
	})

	user, err := s.userRepo.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"username": username,
			})
			metrics.TrackAuthAttempt("failure", "login")
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"username": username,
		})
		return nil, nil, storeError(err)
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"username": username,
			"user_id":  user.ID,
		})
		metrics.TrackAuthAttempt("failure", "login")
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	metrics.TrackAuthAttempt("success", "login")
	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id":  user.ID,
		"username": username,
		"role":     user.Role,
	})
	return user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *authService) Refresh(refreshToken string) (*model.User, *util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil || claims.TokenType != util.TokenTypeRefresh {
		metrics.TrackAuthAttempt("failure", "refresh")
		return nil, nil, ErrInvalidRefreshToken
	}

	user, err := s.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrInvalidRefreshToken
		}
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	metrics.TrackAuthAttempt("success", "refresh")
	return user, tokens, nil
}

// Logout revokes the access token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, accessToken string) error {
	if s.revoker == nil {
		return nil
	}

	claims, err := util.ValidateToken(accessToken, s.jwtSecret)
	if err != nil {
		// already unusable
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revoker.Revoke(ctx, accessToken, ttl); err != nil {
		logger.Error("Failed to revoke token on logout", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, storeError(err)
	}
	return user, nil
}

func (s *authService) issueTokens(user *model.User) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Username,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return tokens, nil
}
