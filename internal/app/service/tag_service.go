package service

import (
	"context"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/repository"
	"github.com/ikkim/memolite-backend/internal/metrics"
	"github.com/ikkim/memolite-backend/pkg/logger"
)

type TagService interface {
	ListTags(ctx context.Context) ([]model.TagWithCount, error)
	PruneUnusedTags(ctx context.Context) (int64, error)
}

type tagService struct {
	tagRepo repository.TagRepository
}

func NewTagService(tagRepo repository.TagRepository) TagService {
	return &tagService{tagRepo: tagRepo}
}

// ListTags 모든 태그 목록 조회 (메모 수 많은 순, 이름순)
func (s *tagService) ListTags(ctx context.Context) ([]model.TagWithCount, error) {
	tags, err := s.tagRepo.FindAllWithCounts(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return tags, nil
}

// PruneUnusedTags 연결된 메모가 없는 태그 정리
func (s *tagService) PruneUnusedTags(ctx context.Context) (int64, error) {
	deleted, err := s.tagRepo.DeleteUnused(ctx)
	if err != nil {
		return 0, storeError(err)
	}
	metrics.TagsPrunedTotal.Add(float64(deleted))

	logger.Info("Unused tags pruned", map[string]interface{}{
		"deleted": deleted,
	})
	return deleted, nil
}
