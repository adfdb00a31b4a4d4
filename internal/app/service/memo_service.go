package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/internal/app/repository"
	apperrors "github.com/ikkim/memolite-backend/internal/errors"
	"github.com/ikkim/memolite-backend/internal/metrics"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"gorm.io/gorm"
)

const DefaultMaxContentLength = 10000

var (
	scriptBlockPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	javascriptPattern  = regexp.MustCompile(`(?i)javascript:`)
)

// SanitizeContent strips script blocks and javascript: URLs and trims surrounding space.
func SanitizeContent(content string) string {
	content = scriptBlockPattern.ReplaceAllString(content, "")
	content = javascriptPattern.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

// MemoEventPublisher receives memo change notifications after commit.
type MemoEventPublisher interface {
	Publish(event model.MemoEvent)
}

type MemoService interface {
	ListMemos(ctx context.Context, viewer model.Viewer, query model.MemoQuery) (*model.MemoPage, error)
	GetMemo(ctx context.Context, viewer model.Viewer, id uint) (*model.Memo, error)
	CreateMemo(ctx context.Context, owner model.Viewer, req model.CreateMemoRequest) (*model.Memo, error)
	UpdateMemo(ctx context.Context, owner model.Viewer, id uint, req model.UpdateMemoRequest) (*model.Memo, error)
	DeleteMemo(ctx context.Context, owner model.Viewer, id uint) error
	GetMemoStats(ctx context.Context, viewer model.Viewer, creatorID uint) (map[string]int, error)
}

type memoService struct {
	memoRepo         repository.MemoRepository
	syncer           *TagSynchronizer
	db               *gorm.DB
	publisher        MemoEventPublisher
	maxContentLength int
	strictTags       bool
}

type MemoServiceOption func(*memoService)

// WithEventPublisher streams committed memo changes to publisher.
func WithEventPublisher(publisher MemoEventPublisher) MemoServiceOption {
	return func(s *memoService) {
		s.publisher = publisher
	}
}

func WithMaxContentLength(n int) MemoServiceOption {
	return func(s *memoService) {
		if n > 0 {
			s.maxContentLength = n
		}
	}
}

// WithStrictTagMatch makes every tag filter resolve in the store through memo_tags.
func WithStrictTagMatch(strict bool) MemoServiceOption {
	return func(s *memoService) {
		s.strictTags = strict
	}
}

func NewMemoService(
	memoRepo repository.MemoRepository,
	syncer *TagSynchronizer,
	db *gorm.DB,
	opts ...MemoServiceOption,
) MemoService {
	s := &memoService{
		memoRepo:         memoRepo,
		syncer:           syncer,
		db:               db,
		maxContentLength: DefaultMaxContentLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// normalizeQuery validates enum filters and clamps pagination.
func normalizeQuery(query model.MemoQuery) (model.MemoFilter, error) {
	visibility, ok := model.ParseVisibilityFilter(query.Visibility)
	if !ok {
		return model.MemoFilter{}, newValidationError("visibility", "must be PUBLIC, PRIVATE or ALL")
	}
	state, ok := model.ParseStateFilter(query.State)
	if !ok {
		return model.MemoFilter{}, newValidationError("state", "must be NORMAL, ARCHIVED or ALL")
	}
	limit, ok := model.ParseLimit(query.Limit)
	if !ok {
		return model.MemoFilter{}, newValidationError("limit", "must be an integer")
	}
	offset, ok := model.ParseOffset(query.Offset)
	if !ok {
		return model.MemoFilter{}, newValidationError("offset", "must be an integer")
	}

	return model.MemoFilter{
		Visibility: visibility,
		State:      state,
		Tags:       model.NormalizeTags(query.Tags),
		Search:     query.Search,
		CreatorID:  query.CreatorID,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

func (s *memoService) ListMemos(ctx context.Context, viewer model.Viewer, query model.MemoQuery) (*model.MemoPage, error) {
	filter, err := normalizeQuery(query)
	if err != nil {
		logger.Warn("Rejected memo list filter", map[string]interface{}{
			"viewer_id": viewer.UserID,
			"error":     err.Error(),
		})
		return nil, err
	}
	metrics.TrackMemoOperation("list")

	page := &model.MemoPage{Memos: []model.Memo{}, Limit: filter.Limit, Offset: filter.Offset}

	// anonymous viewers have no private memos to see
	if filter.Visibility == model.VisibilityPrivate && !viewer.Authenticated {
		return page, nil
	}

	if s.strictTags || len(filter.Tags) <= 1 {
		memos, total, err := s.memoRepo.List(ctx, viewer, filter)
		if err != nil {
			return nil, storeError(err)
		}
		page.Memos = memos
		page.Total = total
		return page, nil
	}

	// Only the first tag goes to the store; the rest are checked against content
	// here, and pagination runs over the intersected set.
	firstOnly := filter
	firstOnly.Tags = filter.Tags[:1]
	candidates, err := s.memoRepo.ListAll(ctx, viewer, firstOnly)
	if err != nil {
		return nil, storeError(err)
	}

	matched := make([]model.Memo, 0, len(candidates))
	for _, memo := range candidates {
		if containsAllTags(memo.Content, filter.Tags[1:]) {
			matched = append(matched, memo)
		}
	}
	page.Total = int64(len(matched))

	if filter.Offset < len(matched) {
		end := filter.Offset + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		page.Memos = matched[filter.Offset:end]
	}
	if err := s.memoRepo.LoadDetails(ctx, page.Memos); err != nil {
		return nil, storeError(err)
	}

	logger.Debug("Multi-tag memo list resolved", map[string]interface{}{
		"viewer_id":  viewer.UserID,
		"tags":       filter.Tags,
		"candidates": len(candidates),
		"matched":    len(matched),
	})
	return page, nil
}

func containsAllTags(content string, tags []string) bool {
	for _, tag := range tags {
		if !strings.Contains(content, "#"+tag) {
			return false
		}
	}
	return true
}

func (s *memoService) GetMemo(ctx context.Context, viewer model.Viewer, id uint) (*model.Memo, error) {
	memo, err := s.findMemo(ctx, id)
	if err != nil {
		return nil, err
	}

	if !viewer.CanView(memo) {
		logger.Warn("Memo access denied", map[string]interface{}{
			"memo_id":   id,
			"viewer_id": viewer.UserID,
		})
		return nil, ErrMemoAccessDenied
	}

	memos := []model.Memo{*memo}
	if err := s.memoRepo.LoadDetails(ctx, memos); err != nil {
		return nil, storeError(err)
	}
	metrics.TrackMemoOperation("get")
	return &memos[0], nil
}

func (s *memoService) findMemo(ctx context.Context, id uint) (*model.Memo, error) {
	memo, err := s.memoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemoNotFound
		}
		logger.Error("Failed to fetch memo", err, map[string]interface{}{
			"memo_id": id,
		})
		return nil, storeError(err)
	}
	return memo, nil
}

func (s *memoService) validateContent(raw string) (string, error) {
	content := SanitizeContent(raw)
	if content == "" {
		return "", newValidationError("content", "must not be empty")
	}
	if utf8.RuneCountInString(content) > s.maxContentLength {
		return "", newValidationError("content", "is too long")
	}
	return content, nil
}

func parseVisibility(raw string) (model.Visibility, error) {
	if raw == "" {
		return model.VisibilityPrivate, nil
	}
	v := model.Visibility(strings.ToUpper(raw))
	if !v.IsValid() {
		return "", newValidationError("visibility", "must be PUBLIC or PRIVATE")
	}
	return v, nil
}

func (s *memoService) CreateMemo(ctx context.Context, owner model.Viewer, req model.CreateMemoRequest) (*model.Memo, error) {
	if !owner.Authenticated {
		return nil, ErrMemoAccessDenied
	}

	content, err := s.validateContent(req.Content)
	if err != nil {
		return nil, err
	}
	visibility, err := parseVisibility(req.Visibility)
	if err != nil {
		return nil, err
	}

	logger.Info("Creating memo", map[string]interface{}{
		"user_id":    owner.UserID,
		"visibility": visibility,
		"pinned":     req.Pinned,
	})

	memo := &model.Memo{
		UserID:     owner.UserID,
		Content:    content,
		Visibility: visibility,
		Pinned:     req.Pinned,
		State:      model.MemoStateNormal,
	}

	err = s.writeTx(ctx, func(tx *gorm.DB) error {
		memo.ID = 0
		if err := s.memoRepo.WithTx(tx).Create(ctx, memo); err != nil {
			return err
		}
		_, err := s.syncer.Link(ctx, tx, memo.ID, memo.Content)
		return err
	})
	if err != nil {
		logger.Error("Failed to create memo", err, map[string]interface{}{
			"user_id": owner.UserID,
		})
		return nil, storeError(err)
	}

	created, err := s.reload(ctx, memo.ID)
	if err != nil {
		return nil, err
	}
	metrics.TrackMemoOperation("create")
	s.publish(model.MemoEventCreated, created)

	logger.Info("Memo created", map[string]interface{}{
		"memo_id": created.ID,
		"user_id": owner.UserID,
		"tags":    len(created.Tags),
	})
	return created, nil
}

// writeTx runs fn in one transaction. A foreign key failure means a tag was
// pruned between upsert and link, so the whole unit is retried once.
func (s *memoService) writeTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err == nil || !apperrors.IsForeignKeyViolation(err) {
		return err
	}

	logger.Warn("Memo write lost a tag to pruning, retrying", map[string]interface{}{
		"error": err.Error(),
	})
	return s.db.WithContext(ctx).Transaction(fn)
}

// authorizeWrite loads the memo and checks ownership. A non-owner gets
// ErrMemoNotFound when the memo is hidden from them and ErrMemoAccessDenied otherwise.
func (s *memoService) authorizeWrite(ctx context.Context, owner model.Viewer, id uint) (*model.Memo, error) {
	memo, err := s.findMemo(ctx, id)
	if err != nil {
		return nil, err
	}
	if owner.Owns(memo) {
		return memo, nil
	}

	logger.Warn("Memo write rejected: not owner", map[string]interface{}{
		"memo_id":   id,
		"viewer_id": owner.UserID,
	})
	if !owner.CanView(memo) {
		return nil, ErrMemoNotFound
	}
	return nil, ErrMemoAccessDenied
}

func (s *memoService) UpdateMemo(ctx context.Context, owner model.Viewer, id uint, req model.UpdateMemoRequest) (*model.Memo, error) {
	memo, err := s.authorizeWrite(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	var content *string
	if req.Content != nil {
		sanitized, err := s.validateContent(*req.Content)
		if err != nil {
			return nil, err
		}
		content = &sanitized
		updates["content"] = sanitized
	}
	if req.Visibility != nil {
		v := model.Visibility(strings.ToUpper(*req.Visibility))
		if !v.IsValid() {
			return nil, newValidationError("visibility", "must be PUBLIC or PRIVATE")
		}
		updates["visibility"] = v
	}
	if req.State != nil {
		st := model.MemoState(strings.ToUpper(*req.State))
		if !st.IsValid() {
			return nil, newValidationError("state", "must be NORMAL or ARCHIVED")
		}
		updates["state"] = st
	}
	if req.Pinned != nil {
		updates["pinned"] = *req.Pinned
	}

	logger.Info("Updating memo", map[string]interface{}{
		"memo_id":      id,
		"user_id":      owner.UserID,
		"fields":       len(updates),
		"content_sync": content != nil,
	})

	if len(updates) > 0 {
		err = s.writeTx(ctx, func(tx *gorm.DB) error {
			if err := s.memoRepo.WithTx(tx).Update(ctx, memo, updates); err != nil {
				return err
			}
			if content == nil {
				return nil
			}
			_, err := s.syncer.Resync(ctx, tx, memo.ID, *content)
			return err
		})
		if err != nil {
			logger.Error("Failed to update memo", err, map[string]interface{}{
				"memo_id": id,
			})
			return nil, storeError(err)
		}
	}

	updated, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.TrackMemoOperation("update")
	s.publish(model.MemoEventUpdated, updated)
	return updated, nil
}

func (s *memoService) DeleteMemo(ctx context.Context, owner model.Viewer, id uint) error {
	memo, err := s.authorizeWrite(ctx, owner, id)
	if err != nil {
		return err
	}

	if err := s.memoRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemoNotFound
		}
		logger.Error("Failed to delete memo", err, map[string]interface{}{
			"memo_id": id,
		})
		return storeError(err)
	}

	metrics.TrackMemoOperation("delete")
	s.publish(model.MemoEventDeleted, memo)

	logger.Info("Memo deleted", map[string]interface{}{
		"memo_id": id,
		"user_id": owner.UserID,
	})
	return nil
}

// GetMemoStats counts the creator's memos visible to viewer per UTC day (YYYY-MM-DD).
func (s *memoService) GetMemoStats(ctx context.Context, viewer model.Viewer, creatorID uint) (map[string]int, error) {
	times, err := s.memoRepo.CreatedTimes(ctx, viewer, creatorID)
	if err != nil {
		return nil, storeError(err)
	}

	stats := make(map[string]int)
	for _, t := range times {
		stats[t.UTC().Format("2006-01-02")]++
	}
	return stats, nil
}

func (s *memoService) reload(ctx context.Context, id uint) (*model.Memo, error) {
	memo, err := s.findMemo(ctx, id)
	if err != nil {
		return nil, err
	}
	memos := []model.Memo{*memo}
	if err := s.memoRepo.LoadDetails(ctx, memos); err != nil {
		return nil, storeError(err)
	}
	return &memos[0], nil
}

func (s *memoService) publish(eventType string, memo *model.Memo) {
	if s.publisher == nil || memo == nil {
		return
	}
	s.publisher.Publish(model.MemoEvent{Type: eventType, Memo: memo})
}
