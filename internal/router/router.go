package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/memolite-backend/config"
	"github.com/ikkim/memolite-backend/internal/app/controller"
	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	authController     *controller.AuthController
	memoController     *controller.MemoController
	tagController      *controller.TagController
	commentController  *controller.CommentController
	userController     *controller.UserController
	settingController  *controller.SettingController
	resourceController *controller.ResourceController
	statusController   *controller.StatusController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	memoController *controller.MemoController,
	tagController *controller.TagController,
	commentController *controller.CommentController,
	userController *controller.UserController,
	settingController *controller.SettingController,
	resourceController *controller.ResourceController,
	statusController *controller.StatusController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		memoController:     memoController,
		tagController:      tagController,
		commentController:  commentController,
		userController:     userController,
		settingController:  settingController,
		resourceController: resourceController,
		statusController:   statusController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)
	middleware.RegisterValidators()

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "memolite API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	optionalAuth := r.authMiddleware.OptionalAuthenticate()
	requireAuth := r.authMiddleware.Authenticate()
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", r.statusController.GetStatus)

		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.GET("/me", requireAuth, r.authController.GetMe)
			auth.POST("/logout", requireAuth, r.authController.Logout)
		}

		memos := v1.Group("/memos")
		{
			memos.GET("", optionalAuth, r.memoController.ListMemos)
			memos.POST("", requireAuth, r.memoController.CreateMemo)
			memos.GET("/stats", optionalAuth, r.memoController.GetMemoStats)
			memos.GET("/export", requireAuth, r.memoController.ExportMemos)
			memos.GET("/stream", optionalAuth, r.memoController.StreamMemos)
			memos.GET("/:id", optionalAuth, r.memoController.GetMemo)
			memos.PUT("/:id", requireAuth, r.memoController.UpdateMemo)
			memos.DELETE("/:id", requireAuth, r.memoController.DeleteMemo)
		}

		v1.GET("/tags", r.tagController.ListTags)

		comments := v1.Group("/comments")
		{
			comments.GET("/memo/:memoId", optionalAuth, r.commentController.ListComments)
			comments.POST("/memo/:memoId", requireAuth, r.commentController.CreateComment)
		}

		users := v1.Group("/users")
		{
			users.GET("", requireAuth, adminOnly, r.userController.ListUsers)
			users.GET("/me", requireAuth, r.userController.GetMe)
			users.GET("/:id/stats", r.userController.GetUserStats)
		}

		settings := v1.Group("/settings")
		{
			settings.GET("/public", r.settingController.GetPublicSettings)
			settings.GET("", requireAuth, adminOnly, r.settingController.GetSettings)
			settings.PUT("", requireAuth, adminOnly, r.settingController.UpdateSettings)
		}

		resources := v1.Group("/resources")
		resources.Use(requireAuth)
		{
			resources.POST("/presigned-url", r.resourceController.GeneratePresignedURL)
			resources.GET("", r.resourceController.ListResources)
			resources.DELETE("/:id", r.resourceController.DeleteResource)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
