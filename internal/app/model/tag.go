package model

import (
	"time"
)

// Tag is a global, case-sensitive label derived from #name markup in memo content.
// 메모 본문에서 추출되는 전역 태그
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:text;uniqueIndex;not null" json:"name"` // 태그 이름 (대소문자 구분, 길이 제한 없음)
	CreatedAt time.Time `json:"created_at"`
}

func (Tag) TableName() string {
	return "tags"
}

// MemoTag represents the many-to-many relationship between memos and tags
// 메모와 태그의 다대다 관계
type MemoTag struct {
	MemoID    uint      `gorm:"primaryKey;index" json:"memo_id"`
	TagID     uint      `gorm:"primaryKey;index" json:"tag_id"`
	Memo      Memo      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Tag       Tag       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (MemoTag) TableName() string {
	return "memo_tags"
}

// TagWithCount 태그 목록 응답 (연결된 메모 수 포함)
type TagWithCount struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	MemoCount int64  `json:"memo_count"`
}
