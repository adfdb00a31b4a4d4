package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/memolite-backend/config"
	"github.com/ikkim/memolite-backend/internal/app/controller"
	"github.com/ikkim/memolite-backend/internal/app/repository"
	"github.com/ikkim/memolite-backend/internal/app/service"
	"github.com/ikkim/memolite-backend/internal/db"
	"github.com/ikkim/memolite-backend/internal/middleware"
	"github.com/ikkim/memolite-backend/internal/router"
	"github.com/ikkim/memolite-backend/internal/scheduler"
	"github.com/ikkim/memolite-backend/internal/storage"
	"github.com/ikkim/memolite-backend/internal/websocket"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"github.com/ikkim/memolite-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.LogFormat == "console",
	})

	logger.Info("Starting memolite Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
		"tag_match":   cfg.Memo.TagMatchMode,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis는 로그아웃 토큰 차단에만 사용 (없으면 로그아웃은 클라이언트 측만)
	var blacklist *redis.TokenBlacklist
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			blacklist = redis.NewTokenBlacklist(redis.GetClient())
			defer redis.Close()
		}
	}

	// S3 업로드 (버킷 미설정 시 비활성화)
	var objectStorage storage.ObjectStorage
	if cfg.S3.Bucket != "" {
		objectStorage = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
	} else {
		logger.Info("S3 bucket not configured, resource uploads disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	gormDB := db.GetDB()
	strictTags := cfg.Memo.TagMatchMode == "strict"

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	memoRepo := repository.NewMemoRepository(gormDB, strictTags)
	tagRepo := repository.NewTagRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)
	resourceRepo := repository.NewResourceRepository(gormDB)
	settingRepo := repository.NewSettingRepository(gormDB)

	// Initialize services
	settingService := service.NewSettingService(settingRepo)
	var revoker service.TokenRevoker
	var checker middleware.TokenChecker
	if blacklist != nil {
		revoker = blacklist
		checker = blacklist
	}
	authService := service.NewAuthService(
		userRepo,
		settingService,
		revoker,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	memoService := service.NewMemoService(
		memoRepo,
		service.NewTagSynchronizer(tagRepo),
		gormDB,
		service.WithEventPublisher(hub),
		service.WithMaxContentLength(cfg.Memo.MaxContentLength),
		service.WithStrictTagMatch(strictTags),
	)
	tagService := service.NewTagService(tagRepo)
	commentService := service.NewCommentService(commentRepo, memoService)
	userService := service.NewUserService(userRepo)
	resourceService := service.NewResourceService(resourceRepo, objectStorage)
	transferService := service.NewMemoTransferService(memoRepo, memoService)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	memoController := controller.NewMemoController(memoService, transferService, hub, cfg.CORS.AllowedOrigins)
	tagController := controller.NewTagController(tagService)
	commentController := controller.NewCommentController(commentService)
	userController := controller.NewUserController(userService)
	settingController := controller.NewSettingController(settingService)
	resourceController := controller.NewResourceController(resourceService)
	statusController := controller.NewStatusController(settingService, cfg.Server.Environment, objectStorage != nil)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, checker)

	// Setup router
	r := router.NewRouter(
		authController,
		memoController,
		tagController,
		commentController,
		userController,
		settingController,
		resourceController,
		statusController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// 사용하지 않는 태그 정리
	if cfg.Scheduler.TagGCEnabled {
		tagGC := scheduler.NewTagGCScheduler(tagService, cfg.Scheduler.TagGCSpec)
		if err := tagGC.Start(); err != nil {
			logger.Fatal("Failed to start tag GC scheduler", err)
		}
		defer tagGC.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
