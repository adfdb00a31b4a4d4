package service

import (
	"context"
	"strings"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/repository"
	"github.com/ikkim/memolite-backend/pkg/logger"
)

type CommentService interface {
	ListComments(ctx context.Context, viewer model.Viewer, memoID uint) ([]model.Comment, error)
	CreateComment(ctx context.Context, author model.Viewer, memoID uint, content string) (*model.Comment, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	memoService MemoService
}

func NewCommentService(commentRepo repository.CommentRepository, memoService MemoService) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		memoService: memoService,
	}
}

// ListComments returns the memo's comments if the memo is visible to viewer.
func (s *commentService) ListComments(ctx context.Context, viewer model.Viewer, memoID uint) ([]model.Comment, error) {
	if _, err := s.memoService.GetMemo(ctx, viewer, memoID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.FindByMemoID(ctx, memoID)
	if err != nil {
		return nil, storeError(err)
	}
	return comments, nil
}

func (s *commentService) CreateComment(ctx context.Context, author model.Viewer, memoID uint, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, newValidationError("content", "must not be empty")
	}

	if _, err := s.memoService.GetMemo(ctx, author, memoID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		MemoID:  memoID,
		UserID:  author.UserID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, storeError(err)
	}

	logger.Info("Comment created", map[string]interface{}{
		"comment_id": comment.ID,
		"memo_id":    memoID,
		"user_id":    author.UserID,
	})
	return comment, nil
}
