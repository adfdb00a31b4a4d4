package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/memolite-backend/internal/app/service"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const DefaultTagGCSpec = "0 4 * * *"

const tagGCTimeout = 5 * time.Minute

// TagGCScheduler 사용되지 않는 태그 정리 스케줄러
type TagGCScheduler struct {
	cron       *cron.Cron
	spec       string
	tagService service.TagService
}

// NewTagGCScheduler 태그 정리 스케줄러 생성. spec이 비어 있으면 매일 새벽 4시.
func NewTagGCScheduler(tagService service.TagService, spec string) *TagGCScheduler {
	if spec == "" {
		spec = DefaultTagGCSpec
	}
	return &TagGCScheduler{
		cron:       cron.New(),
		spec:       spec,
		tagService: tagService,
	}
}

// Start 스케줄러 시작
func (s *TagGCScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runOnce); err != nil {
		logger.Error("Failed to add cron job for tag GC", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Tag GC scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

func (s *TagGCScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), tagGCTimeout)
	defer cancel()

	logger.Info("Starting scheduled tag GC")
	if _, err := s.tagService.PruneUnusedTags(ctx); err != nil {
		logger.Error("Failed to prune unused tags from scheduler", err)
	}
}

// Stop 스케줄러 중지. 실행 중인 작업이 끝날 때까지 기다린다.
func (s *TagGCScheduler) Stop() {
	logger.Info("Stopping tag GC scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Tag GC scheduler stopped")
}
