package service

import (
	"context"
	"regexp"
	"time"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/repository"
	"github.com/ikkim/memolite-backend/internal/metrics"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"gorm.io/gorm"
)

// #name where name is ASCII letters, digits, '_' , '-' or Han ideographs.
var tagPattern = regexp.MustCompile(`#([a-zA-Z0-9_\p{Han}-]+)`)

// ExtractTags returns the distinct tag names in content in order of first occurrence.
// Matching is case-sensitive: #Work and #work are different tags.
func ExtractTags(content string) []string {
	matches := tagPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// TagSynchronizer keeps memo_tags equal to the tag set extracted from a memo's content.
type TagSynchronizer struct {
	tagRepo repository.TagRepository
}

func NewTagSynchronizer(tagRepo repository.TagRepository) *TagSynchronizer {
	return &TagSynchronizer{tagRepo: tagRepo}
}

// Link upserts every tag in content and links it to the memo. Existing links are kept.
func (s *TagSynchronizer) Link(ctx context.Context, tx *gorm.DB, memoID uint, content string) ([]model.Tag, error) {
	start := time.Now()
	repo := s.tagRepo.WithTx(tx)

	names := ExtractTags(content)
	tags := make([]model.Tag, 0, len(names))
	for _, name := range names {
		tag, err := repo.Upsert(ctx, name)
		if err != nil {
			metrics.TagSyncTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		if err := repo.LinkMemo(ctx, memoID, tag.ID); err != nil {
			metrics.TagSyncTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		tags = append(tags, *tag)
	}

	metrics.TagSyncTotal.WithLabelValues("ok").Inc()
	metrics.TagSyncDuration.Observe(time.Since(start).Seconds())

	logger.Debug("Memo tags linked", map[string]interface{}{
		"memo_id": memoID,
		"tags":    names,
	})
	return tags, nil
}

// Resync drops every link of the memo and links the tags of the new content.
func (s *TagSynchronizer) Resync(ctx context.Context, tx *gorm.DB, memoID uint, content string) ([]model.Tag, error) {
	if err := s.tagRepo.WithTx(tx).UnlinkMemo(ctx, memoID); err != nil {
		metrics.TagSyncTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	return s.Link(ctx, tx, memoID, content)
}
