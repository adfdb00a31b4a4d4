package model

import (
	"time"
)

type Visibility string // 메모 공개 범위

const (
	VisibilityPublic  Visibility = "PUBLIC"  // 누구나 조회 가능
	VisibilityPrivate Visibility = "PRIVATE" // 작성자만 조회 가능
)

// IsValid reports whether v is one of the stored visibility values.
func (v Visibility) IsValid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

type MemoState string // 메모 상태

const (
	MemoStateNormal   MemoState = "NORMAL"
	MemoStateArchived MemoState = "ARCHIVED"
)

func (s MemoState) IsValid() bool {
	return s == MemoStateNormal || s == MemoStateArchived
}

type Memo struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`                                     // 작성자 ID
	Content    string     `gorm:"type:text;not null" json:"content"`                                 // 마크다운 본문 (태그의 유일한 출처)
	Visibility Visibility `gorm:"type:varchar(10);default:'PRIVATE';not null;index" json:"visibility"` // 공개 범위
	Pinned     bool       `gorm:"default:false;not null" json:"pinned"`                              // 상단 고정
	State      MemoState  `gorm:"type:varchar(10);default:'NORMAL';not null;index" json:"state"`     // 보관 상태
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	User          *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"` // 작성자
	Tags          []Tag `gorm:"-" json:"tags"`                                                                         // memo_tags 기준 태그 목록
	CommentsCount int64 `gorm:"-" json:"comments_count"`
}

func (Memo) TableName() string {
	return "memos"
}

// CreateMemoRequest 메모 생성 요청
type CreateMemoRequest struct {
	Content    string `json:"content" binding:"required"`
	Visibility string `json:"visibility" binding:"omitempty,memo_visibility"`
	Pinned     bool   `json:"pinned"`
}

// UpdateMemoRequest 메모 수정 요청 (nil 필드는 변경하지 않음)
type UpdateMemoRequest struct {
	Content    *string `json:"content"`
	Visibility *string `json:"visibility" binding:"omitempty,memo_visibility"`
	Pinned     *bool   `json:"pinned"`
	State      *string `json:"state" binding:"omitempty,memo_state"`
}

// MemoPage is one page of the admissible memo set.
type MemoPage struct {
	Memos  []Memo `json:"memos"`
	Total  int64  `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// MemoEvent is pushed to stream subscribers when a memo changes.
type MemoEvent struct {
	Type string `json:"type"` // memo.created, memo.updated, memo.deleted
	Memo *Memo  `json:"memo"`
}

const (
	MemoEventCreated = "memo.created"
	MemoEventUpdated = "memo.updated"
	MemoEventDeleted = "memo.deleted"
)
