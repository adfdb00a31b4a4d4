package repository

import (
	"context"

	"github.com/ikkim/memolite-backend/internal/app/model"
	"github.com/ikkim/memolite-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository interface {
	// WithTx binds the repository to an open transaction.
	WithTx(tx *gorm.DB) TagRepository
	Upsert(ctx context.Context, name string) (*model.Tag, error)
	LinkMemo(ctx context.Context, memoID, tagID uint) error
	UnlinkMemo(ctx context.Context, memoID uint) error
	FindByMemoID(ctx context.Context, memoID uint) ([]model.Tag, error)
	FindAllWithCounts(ctx context.Context) ([]model.TagWithCount, error)
	DeleteUnused(ctx context.Context) (int64, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) WithTx(tx *gorm.DB) TagRepository {
	return &tagRepository{db: tx}
}

// Upsert inserts the tag if absent and returns the stored row.
// Concurrent first use of a name resolves to the same row. On PostgreSQL the row
// stays share-locked until the surrounding transaction ends, so DeleteUnused
// cannot remove it before the caller links it.
func (r *tagRepository) Upsert(ctx context.Context, name string) (*model.Tag, error) {
	db := r.db.WithContext(ctx)

	tag := model.Tag{Name: name}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tag).Error; err != nil {
		logger.Error("Failed to upsert tag", err, map[string]interface{}{
			"name": name,
		})
		return nil, err
	}

	// 링크가 커밋될 때까지 태그 GC가 이 행을 지우지 못하게 공유 잠금
	read := db
	if db.Dialector.Name() == "postgres" {
		read = db.Clauses(clause.Locking{Strength: "SHARE"})
	}

	var stored model.Tag
	if err := read.Where("name = ?", name).First(&stored).Error; err != nil {
		return nil, err
	}

	logger.Debug("Tag upserted", map[string]interface{}{
		"tag_id": stored.ID,
		"name":   stored.Name,
	})
	return &stored, nil
}

func (r *tagRepository) LinkMemo(ctx context.Context, memoID, tagID uint) error {
	link := model.MemoTag{MemoID: memoID, TagID: tagID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&link).Error
}

// UnlinkMemo removes every memo_tags row of the memo.
func (r *tagRepository) UnlinkMemo(ctx context.Context, memoID uint) error {
	result := r.db.WithContext(ctx).Where("memo_id = ?", memoID).Delete(&model.MemoTag{})
	if result.Error != nil {
		return result.Error
	}

	logger.Debug("Memo tag links removed", map[string]interface{}{
		"memo_id": memoID,
		"removed": result.RowsAffected,
	})
	return nil
}

func (r *tagRepository) FindByMemoID(ctx context.Context, memoID uint) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).
		Joins("JOIN memo_tags ON memo_tags.tag_id = tags.id").
		Where("memo_tags.memo_id = ?", memoID).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// FindAllWithCounts 전체 태그 + 연결 메모 수 (많은 순, 이름순)
func (r *tagRepository) FindAllWithCounts(ctx context.Context) ([]model.TagWithCount, error) {
	var tags []model.TagWithCount
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.id, tags.name, COUNT(memo_tags.memo_id) AS memo_count").
		Joins("LEFT JOIN memo_tags ON memo_tags.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("memo_count DESC").
		Order("tags.name ASC").
		Scan(&tags).Error
	if err != nil {
		logger.Error("Failed to list tags with counts", err)
		return nil, err
	}

	logger.Debug("Tags listed", map[string]interface{}{
		"count": len(tags),
	})
	return tags, nil
}

// DeleteUnused 어떤 메모에도 연결되지 않은 태그 삭제
func (r *tagRepository) DeleteUnused(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM memo_tags WHERE memo_tags.tag_id = tags.id)").
		Delete(&model.Tag{})
	if result.Error != nil {
		logger.Error("Failed to delete unused tags", result.Error)
		return 0, result.Error
	}

	logger.Debug("Unused tags deleted", map[string]interface{}{
		"deleted": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
