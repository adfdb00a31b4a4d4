package model

import (
	"time"
)

// Comment 메모 댓글 (단일 계층)
type Comment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	MemoID    uint      `gorm:"index;not null" json:"memo_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Memo *Memo `gorm:"foreignKey:MemoID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}
