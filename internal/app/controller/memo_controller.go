package controller

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/service"
	apperrors "github.com/ikkim/memolite-backend/internal/errors"
	"github.com/ikkim/memolite-backend/internal/middleware"
	"github.com/ikkim/memolite-backend/internal/websocket"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MemoController struct {
	memoService     service.MemoService
	transferService service.MemoTransferService
	hub             *websocket.Hub
	upgrader        gorillaws.Upgrader
}

// NewMemoController hub may be nil, in which case the stream endpoint answers 503.
func NewMemoController(
	memoService service.MemoService,
	transferService service.MemoTransferService,
	hub *websocket.Hub,
	allowedOrigins []string,
) *MemoController {
	return &MemoController{
		memoService:     memoService,
		transferService: transferService,
		hub:             hub,
		upgrader:        newUpgrader(allowedOrigins),
	}
}

func newUpgrader(allowedOrigins []string) gorillaws.Upgrader {
	origins := make(map[string]struct{}, len(allowedOrigins))
	wildcard := false
	for _, o := range allowedOrigins {
		if o == "*" {
			wildcard = true
		}
		origins[o] = struct{}{}
	}

	return gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// 브라우저가 아닌 클라이언트는 Origin 헤더가 없다
			if origin == "" || wildcard {
				return true
			}
			_, ok := origins[origin]
			return ok
		},
	}
}

// ListMemos 메모 목록 조회
// GET /api/v1/memos
func (ctrl *MemoController) ListMemos(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var query model.MemoQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		log.Warn("Invalid memo list query", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	viewer := middleware.ViewerFromContext(c)
	page, err := ctrl.memoService.ListMemos(c.Request.Context(), viewer, query)
	if err != nil {
		respondServiceError(c, log, err, "list memos")
		return
	}

	log.Debug("Memos listed", map[string]interface{}{
		"user_id": viewer.UserID,
		"total":   page.Total,
		"count":   len(page.Memos),
	})

	c.JSON(http.StatusOK, page)
}

// GetMemo 메모 상세 조회
// GET /api/v1/memos/:id
func (ctrl *MemoController) GetMemo(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	memo, err := ctrl.memoService.GetMemo(c.Request.Context(), middleware.ViewerFromContext(c), id)
	if err != nil {
		respondMemoReadError(c, log, err, id)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"memo": memo,
	})
}

// CreateMemo 메모 작성
// POST /api/v1/memos
func (ctrl *MemoController) CreateMemo(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req model.CreateMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid memo create request", map[string]interface{}{
			"error": err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	viewer := middleware.ViewerFromContext(c)
	memo, err := ctrl.memoService.CreateMemo(c.Request.Context(), viewer, req)
	if err != nil {
		respondServiceError(c, log, err, "create memo")
		return
	}

	log.Info("Memo created", map[string]interface{}{
		"memo_id": memo.ID,
		"user_id": viewer.UserID,
		"tags":    len(memo.Tags),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "메모가 작성되었습니다",
		"memo":    memo,
	})
}

// UpdateMemo 메모 수정 (작성자만)
// PUT /api/v1/memos/:id
func (ctrl *MemoController) UpdateMemo(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid memo update request", map[string]interface{}{
			"memo_id": id,
			"error":   err.Error(),
		})
		respondBindingError(c, err)
		return
	}

	memo, err := ctrl.memoService.UpdateMemo(c.Request.Context(), middleware.ViewerFromContext(c), id, req)
	if err != nil {
		respondMemoWriteError(c, log, err, id)
		return
	}

	log.Info("Memo updated", map[string]interface{}{
		"memo_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "메모가 수정되었습니다",
		"memo":    memo,
	})
}

// DeleteMemo 메모 삭제 (작성자만)
// DELETE /api/v1/memos/:id
func (ctrl *MemoController) DeleteMemo(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.memoService.DeleteMemo(c.Request.Context(), middleware.ViewerFromContext(c), id); err != nil {
		respondMemoWriteError(c, log, err, id)
		return
	}

	log.Info("Memo deleted", map[string]interface{}{
		"memo_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "메모가 삭제되었습니다",
	})
}

// GetMemoStats 작성자의 날짜별 메모 수
// GET /api/v1/memos/stats?creator_id=
func (ctrl *MemoController) GetMemoStats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	viewer := middleware.ViewerFromContext(c)

	// creator_id가 없으면 로그인 사용자 본인
	creatorID := viewer.UserID
	if raw := c.Query("creator_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 작성자 ID입니다")
			return
		}
		creatorID = uint(id)
	}
	if creatorID == 0 {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "creator_id가 필요합니다")
		return
	}

	stats, err := ctrl.memoService.GetMemoStats(c.Request.Context(), viewer, creatorID)
	if err != nil {
		respondServiceError(c, log, err, "memo stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"creator_id": creatorID,
		"stats":      stats,
	})
}

// ExportMemos 내 메모 엑셀 내보내기
// GET /api/v1/memos/export
func (ctrl *MemoController) ExportMemos(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	viewer := middleware.ViewerFromContext(c)

	var buf bytes.Buffer
	count, err := ctrl.transferService.Export(c.Request.Context(), viewer, &buf)
	if err != nil {
		respondMemoWriteError(c, log, err, 0)
		return
	}

	log.Info("Memos exported", map[string]interface{}{
		"user_id": viewer.UserID,
		"count":   count,
	})

	filename := "memos-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// StreamMemos 메모 변경 이벤트 WebSocket
// GET /api/v1/memos/stream
func (ctrl *MemoController) StreamMemos(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.hub == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalServerError, "실시간 스트림을 사용할 수 없습니다")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade가 이미 에러 응답을 썼다
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	viewer := middleware.ViewerFromContext(c)
	client := websocket.NewClient(ctrl.hub, &websocket.Conn{Conn: conn}, viewer)
	if !ctrl.hub.Register(client) {
		conn.Close()
		return
	}

	log.Info("Memo stream connected", map[string]interface{}{
		"user_id": viewer.UserID,
	})

	go client.WritePump()
	go client.ReadPump()
}
