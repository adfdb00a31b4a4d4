package repository

import (
	"context"
	"time"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"gorm.io/gorm"
)

type MemoRepository interface {
	// WithTx binds the repository to an open transaction.
	WithTx(tx *gorm.DB) MemoRepository
	Create(ctx context.Context, memo *model.Memo) error
	FindByID(ctx context.Context, id uint) (*model.Memo, error)
	Update(ctx context.Context, memo *model.Memo, updates map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	// List returns one ordered page of the admissible set and the set's total size.
	List(ctx context.Context, viewer model.Viewer, filter model.MemoFilter) ([]model.Memo, int64, error)
	// ListAll returns the whole ordered admissible set without pagination or details.
	ListAll(ctx context.Context, viewer model.Viewer, filter model.MemoFilter) ([]model.Memo, error)
	LoadDetails(ctx context.Context, memos []model.Memo) error
	CreatedTimes(ctx context.Context, viewer model.Viewer, creatorID uint) ([]time.Time, error)
}

type memoRepository struct {
	db         *gorm.DB
	strictTags bool
}

// NewMemoRepository builds a memo repository. With strictTags the tag filter
// joins through memo_tags; otherwise it matches "#name" inside raw content.
func NewMemoRepository(db *gorm.DB, strictTags bool) MemoRepository {
	return &memoRepository{db: db, strictTags: strictTags}
}

func (r *memoRepository) WithTx(tx *gorm.DB) MemoRepository {
	return &memoRepository{db: tx, strictTags: r.strictTags}
}

func (r *memoRepository) Create(ctx context.Context, memo *model.Memo) error {
	logger.Debug("Creating memo in database", map[string]interface{}{
		"user_id":    memo.UserID,
		"visibility": memo.Visibility,
	})

	if err := r.db.WithContext(ctx).Omit("User").Create(memo).Error; err != nil {
		logger.Error("Failed to create memo in database", err, map[string]interface{}{
			"user_id": memo.UserID,
		})
		return err
	}

	logger.Debug("Memo created in database", map[string]interface{}{
		"memo_id": memo.ID,
	})
	return nil
}

func (r *memoRepository) FindByID(ctx context.Context, id uint) (*model.Memo, error) {
	var memo model.Memo
	if err := r.db.WithContext(ctx).Preload("User").First(&memo, id).Error; err != nil {
		logger.Debug("Memo not found in database", map[string]interface{}{
			"memo_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &memo, nil
}

func (r *memoRepository) Update(ctx context.Context, memo *model.Memo, updates map[string]interface{}) error {
	logger.Debug("Updating memo in database", map[string]interface{}{
		"memo_id": memo.ID,
		"fields":  len(updates),
	})

	if err := r.db.WithContext(ctx).Model(memo).Omit("User").Updates(updates).Error; err != nil {
		logger.Error("Failed to update memo in database", err, map[string]interface{}{
			"memo_id": memo.ID,
		})
		return err
	}
	return nil
}

// Delete hard-deletes the memo together with its tag links and comments.
func (r *memoRepository) Delete(ctx context.Context, id uint) error {
	logger.Debug("Deleting memo from database", map[string]interface{}{
		"memo_id": id,
	})

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("memo_id = ?", id).Delete(&model.MemoTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("memo_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Memo{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *memoRepository) List(ctx context.Context, viewer model.Viewer, filter model.MemoFilter) ([]model.Memo, int64, error) {
	base := r.admissible(ctx, viewer, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count memos", err)
		return nil, 0, err
	}

	var memos []model.Memo
	if err := ordered(base.Session(&gorm.Session{})).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&memos).Error; err != nil {
		logger.Error("Failed to list memos", err)
		return nil, 0, err
	}

	if err := r.LoadDetails(ctx, memos); err != nil {
		return nil, 0, err
	}

	logger.Debug("Memos listed", map[string]interface{}{
		"viewer_id": viewer.UserID,
		"total":     total,
		"returned":  len(memos),
	})
	return memos, total, nil
}

func (r *memoRepository) ListAll(ctx context.Context, viewer model.Viewer, filter model.MemoFilter) ([]model.Memo, error) {
	var memos []model.Memo
	if err := ordered(r.admissible(ctx, viewer, filter)).Find(&memos).Error; err != nil {
		logger.Error("Failed to list memos", err)
		return nil, err
	}
	return memos, nil
}

// CreatedTimes returns creation times of the creator's memos the viewer may see, in any state.
func (r *memoRepository) CreatedTimes(ctx context.Context, viewer model.Viewer, creatorID uint) ([]time.Time, error) {
	filter := model.MemoFilter{CreatorID: &creatorID}

	var times []time.Time
	if err := r.admissible(ctx, viewer, filter).Pluck("memos.created_at", &times).Error; err != nil {
		return nil, err
	}
	return times, nil
}

// LoadDetails attaches owner, tag list and comment count to each memo in place.
func (r *memoRepository) LoadDetails(ctx context.Context, memos []model.Memo) error {
	if len(memos) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)

	ids := make([]uint, len(memos))
	ownerIDs := make([]uint, 0, len(memos))
	for i := range memos {
		ids[i] = memos[i].ID
		if memos[i].User == nil {
			ownerIDs = append(ownerIDs, memos[i].UserID)
		}
	}

	owners := make(map[uint]*model.User)
	if len(ownerIDs) > 0 {
		var users []model.User
		if err := db.Where("id IN ?", ownerIDs).Find(&users).Error; err != nil {
			return err
		}
		for i := range users {
			owners[users[i].ID] = &users[i]
		}
	}

	var links []struct {
		MemoID uint
		TagID  uint
		Name   string
	}
	if err := db.Table("memo_tags").
		Select("memo_tags.memo_id, tags.id AS tag_id, tags.name").
		Joins("JOIN tags ON tags.id = memo_tags.tag_id").
		Where("memo_tags.memo_id IN ?", ids).
		Order("tags.name ASC").
		Scan(&links).Error; err != nil {
		return err
	}
	tagsByMemo := make(map[uint][]model.Tag)
	for _, l := range links {
		tagsByMemo[l.MemoID] = append(tagsByMemo[l.MemoID], model.Tag{ID: l.TagID, Name: l.Name})
	}

	var counts []struct {
		MemoID uint
		Count  int64
	}
	if err := db.Model(&model.Comment{}).
		Select("memo_id, COUNT(*) AS count").
		Where("memo_id IN ?", ids).
		Group("memo_id").
		Scan(&counts).Error; err != nil {
		return err
	}
	commentsByMemo := make(map[uint]int64, len(counts))
	for _, c := range counts {
		commentsByMemo[c.MemoID] = c.Count
	}

	for i := range memos {
		if memos[i].User == nil {
			memos[i].User = owners[memos[i].UserID]
		}
		memos[i].Tags = tagsByMemo[memos[i].ID]
		if memos[i].Tags == nil {
			memos[i].Tags = []model.Tag{}
		}
		memos[i].CommentsCount = commentsByMemo[memos[i].ID]
	}
	return nil
}

// admissible builds the visibility predicate for viewer plus every filter except pagination.
func (r *memoRepository) admissible(ctx context.Context, viewer model.Viewer, filter model.MemoFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Memo{})

	switch filter.Visibility {
	case model.VisibilityPublic:
		q = q.Where("memos.visibility = ?", model.VisibilityPublic)
	case model.VisibilityPrivate:
		if !viewer.Authenticated {
			return q.Where("1 = 0")
		}
		q = q.Where("memos.visibility = ? AND memos.user_id = ?", model.VisibilityPrivate, viewer.UserID)
	default:
		if viewer.Authenticated {
			q = q.Where("(memos.user_id = ? OR memos.visibility = ?)", viewer.UserID, model.VisibilityPublic)
		} else {
			q = q.Where("memos.visibility = ?", model.VisibilityPublic)
		}
	}

	if filter.State != "" {
		q = q.Where("memos.state = ?", filter.State)
	}
	if filter.CreatorID != nil {
		q = q.Where("memos.user_id = ?", *filter.CreatorID)
	}
	if filter.Search != "" {
		q = q.Where(r.containsExpr(), filter.Search)
	}
	for _, tag := range filter.Tags {
		if r.strictTags {
			q = q.Where("EXISTS (SELECT 1 FROM memo_tags JOIN tags ON tags.id = memo_tags.tag_id WHERE memo_tags.memo_id = memos.id AND tags.name = ?)", tag)
		} else {
			q = q.Where(r.containsExpr(), "#"+tag)
		}
	}
	return q
}

// containsExpr is a case-sensitive substring test on content, free of LIKE wildcards.
func (r *memoRepository) containsExpr() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "instr(memos.content, ?) > 0"
	}
	return "strpos(memos.content, ?) > 0"
}

func ordered(q *gorm.DB) *gorm.DB {
	return q.Order("memos.pinned DESC").Order("memos.created_at DESC").Order("memos.id DESC")
}
