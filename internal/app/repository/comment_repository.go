package repository

import (
	"context"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByMemoID(ctx context.Context, memoID uint) ([]model.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	logger.Debug("Creating comment in database", map[string]interface{}{
		"memo_id": comment.MemoID,
		"user_id": comment.UserID,
	})

	if err := r.db.WithContext(ctx).Omit("Memo", "User").Create(comment).Error; err != nil {
		logger.Error("Failed to create comment in database", err, map[string]interface{}{
			"memo_id": comment.MemoID,
		})
		return err
	}
	return r.db.WithContext(ctx).Preload("User").First(comment, comment.ID).Error
}

// FindByMemoID 메모의 댓글 목록 (오래된 순)
func (r *commentRepository) FindByMemoID(ctx context.Context, memoID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("memo_id = ?", memoID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	logger.Debug("Comments listed", map[string]interface{}{
		"memo_id": memoID,
		"count":   len(comments),
	})
	return comments, nil
}
