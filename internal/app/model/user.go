package model

import (
	"time"
)

type UserRole string // 사용자 권한 타입

const (
	RoleUser  UserRole = "USER"  // 일반 사용자 권한
	RoleAdmin UserRole = "ADMIN" // 관리자 권한
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                      // 사용자 ID
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`     // 로그인 아이디
	Nickname     string    `gorm:"type:varchar(100)" json:"nickname"`                         // 표시 이름
	PasswordHash string    `gorm:"not null" json:"-"`                                         // 비밀번호 해시
	Role         UserRole  `gorm:"type:varchar(20);default:'USER';not null" json:"role"`      // 권한
	CreatedAt    time.Time `json:"created_at"`                                                // 생성 시각
	UpdatedAt    time.Time `json:"updated_at"`                                                // 수정 시각
}

func (User) TableName() string {
	return "users"
}

// UserStats 사용자 활동 통계
type UserStats struct {
	TotalMemos    int64 `json:"total_memos"`
	TotalTags     int64 `json:"total_tags"`
	TotalComments int64 `json:"total_comments"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	Nickname string `json:"nickname" binding:"omitempty,max=100"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
