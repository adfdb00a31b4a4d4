package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/repository"
	"github.com/ikkim/memolite-backend/internal/app/service"
	"github.com/ikkim/memolite-backend/internal/db"
	"github.com/ikkim/memolite-backend/internal/middleware"
	"github.com/ikkim/memolite-backend/internal/websocket"
	"github.com/ikkim/memolite-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

type controllerTestEnv struct {
	router      *gin.Engine
	db          *gorm.DB
	memoService service.MemoService
}

// setupControllerTest wires the full service stack over an in-memory database.
// hub may be nil.
func setupControllerTest(t *testing.T, hub *websocket.Hub) *controllerTestEnv {
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	memoRepo := repository.NewMemoRepository(testDB, false)
	tagRepo := repository.NewTagRepository(testDB)
	settingRepo := repository.NewSettingRepository(testDB)

	var opts []service.MemoServiceOption
	if hub != nil {
		opts = append(opts, service.WithEventPublisher(hub))
	}
	memoService := service.NewMemoService(memoRepo, service.NewTagSynchronizer(tagRepo), testDB, opts...)
	settingService := service.NewSettingService(settingRepo)
	authService := service.NewAuthService(userRepo, settingService, nil, testJWTSecret, 15*time.Minute, 7*24*time.Hour)

	memoController := NewMemoController(memoService, service.NewMemoTransferService(memoRepo, memoService), hub, []string{"http://localhost:3000"})
	authController := NewAuthController(authService)
	tagController := NewTagController(service.NewTagService(tagRepo))
	commentController := NewCommentController(service.NewCommentService(repository.NewCommentRepository(testDB), memoService))
	userController := NewUserController(service.NewUserService(userRepo))
	settingController := NewSettingController(settingService)
	resourceController := NewResourceController(service.NewResourceService(repository.NewResourceRepository(testDB), nil))
	statusController := NewStatusController(settingService, "test", false)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret, nil)
	optionalAuth := authMiddleware.OptionalAuthenticate()
	requireAuth := authMiddleware.Authenticate()
	adminOnly := authMiddleware.RequireRole(model.RoleAdmin)

	router := gin.New()
	router.GET("/status", statusController.GetStatus)

	auth := router.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
		auth.GET("/me", requireAuth, authController.GetMe)
		auth.POST("/logout", requireAuth, authController.Logout)
	}

	memos := router.Group("/memos")
	{
		memos.GET("", optionalAuth, memoController.ListMemos)
		memos.POST("", requireAuth, memoController.CreateMemo)
		memos.GET("/stats", optionalAuth, memoController.GetMemoStats)
		memos.GET("/export", requireAuth, memoController.ExportMemos)
		memos.GET("/stream", optionalAuth, memoController.StreamMemos)
		memos.GET("/:id", optionalAuth, memoController.GetMemo)
		memos.PUT("/:id", requireAuth, memoController.UpdateMemo)
		memos.DELETE("/:id", requireAuth, memoController.DeleteMemo)
	}

	router.GET("/tags", tagController.ListTags)
	router.GET("/comments/memo/:memoId", optionalAuth, commentController.ListComments)
	router.POST("/comments/memo/:memoId", requireAuth, commentController.CreateComment)

	users := router.Group("/users")
	{
		users.GET("", requireAuth, adminOnly, userController.ListUsers)
		users.GET("/me", requireAuth, userController.GetMe)
		users.GET("/:id/stats", userController.GetUserStats)
	}

	router.GET("/settings/public", settingController.GetPublicSettings)
	router.GET("/settings", requireAuth, adminOnly, settingController.GetSettings)
	router.PUT("/settings", requireAuth, adminOnly, settingController.UpdateSettings)

	resources := router.Group("/resources", requireAuth)
	{
		resources.POST("/presigned-url", resourceController.GeneratePresignedURL)
		resources.GET("", resourceController.ListResources)
		resources.DELETE("/:id", resourceController.DeleteResource)
	}

	return &controllerTestEnv{
		router:      router,
		db:          testDB,
		memoService: memoService,
	}
}

// createUserWithToken inserts a user and returns it with a valid access token.
func (env *controllerTestEnv) createUserWithToken(t *testing.T, username string, role model.UserRole) (*model.User, string) {
	hash, err := util.HashPassword("password123")
	require.NoError(t, err)

	user := &model.User{Username: username, Nickname: username, PasswordHash: hash, Role: role}
	require.NoError(t, env.db.Create(user).Error)

	tokens, err := util.GenerateTokenPair(user.ID, user.Username, string(user.Role), testJWTSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return user, tokens.AccessToken
}

func (env *controllerTestEnv) createMemo(t *testing.T, user *model.User, content string, visibility model.Visibility) *model.Memo {
	memo, err := env.memoService.CreateMemo(
		t.Context(),
		model.AuthenticatedViewer(user.ID, user.Username, user.Role),
		model.CreateMemoRequest{Content: content, Visibility: string(visibility)},
	)
	require.NoError(t, err)
	return memo
}

func (env *controllerTestEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
