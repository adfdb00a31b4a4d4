package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/service"
	"github.com/ikkim/memolite-backend/internal/middleware"
)

type CommentController struct {
	commentService service.CommentService
}

func NewCommentController(commentService service.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

// ListComments 메모 댓글 목록
// GET /api/v1/comments/memo/:memoId
func (ctrl *CommentController) ListComments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	memoID, ok := parseIDParam(c, "memoId")
	if !ok {
		return
	}

	comments, err := ctrl.commentService.ListComments(c.Request.Context(), middleware.ViewerFromContext(c), memoID)
	if err != nil {
		respondMemoReadError(c, log, err, memoID)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"count":    len(comments),
	})
}

// CreateComment 댓글 작성
// POST /api/v1/comments/memo/:memoId
func (ctrl *CommentController) CreateComment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	memoID, ok := parseIDParam(c, "memoId")
	if !ok {
		return
	}

	var req model.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	viewer := middleware.ViewerFromContext(c)
	comment, err := ctrl.commentService.CreateComment(c.Request.Context(), viewer, memoID, req.Content)
	if err != nil {
		respondMemoReadError(c, log, err, memoID)
		return
	}

	log.Info("Comment created", map[string]interface{}{
		"comment_id": comment.ID,
		"memo_id":    memoID,
		"user_id":    viewer.UserID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"comment": comment,
	})
}
