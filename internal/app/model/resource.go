package model

import (
	"time"
)

// Resource 업로드된 첨부 파일 (S3 오브젝트)
type Resource struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	ObjectKey   string    `gorm:"type:varchar(512);uniqueIndex;not null" json:"object_key"` // S3 키
	Filename    string    `gorm:"type:varchar(255);not null" json:"filename"`               // 원본 파일명
	ContentType string    `gorm:"type:varchar(100);not null" json:"content_type"`
	Size        int64     `gorm:"not null" json:"size"`
	URL         string    `gorm:"type:varchar(1024)" json:"url"` // 공개 URL
	CreatedAt   time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Resource) TableName() string {
	return "resources"
}

// PresignedURLRequest 업로드용 Presigned URL 요청
type PresignedURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	FileSize    int64  `json:"file_size" binding:"required,min=1"`
}

// ResourceQuery 첨부 파일 목록 조회
type ResourceQuery struct {
	Limit  string `form:"limit"`
	Offset string `form:"offset"`
}

type ResourcePage struct {
	Resources []Resource `json:"resources"`
	Total     int64      `json:"total"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}
