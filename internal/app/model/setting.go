package model

import (
	"time"
)

// Setting 사이트 설정 (key-value)
type Setting struct {
	Key       string    `gorm:"type:varchar(100);primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

const (
	SettingSiteTitle         = "site_title"
	SettingSiteDescription   = "site_description"
	SettingAllowRegistration = "allow_registration"
)

// PublicSettingKeys are readable without authentication.
var PublicSettingKeys = []string{
	SettingSiteTitle,
	SettingSiteDescription,
	SettingAllowRegistration,
}

// DefaultSettings are inserted on migrate when missing.
var DefaultSettings = map[string]string{
	SettingSiteTitle:         "memolite",
	SettingSiteDescription:   "A lightweight memo service",
	SettingAllowRegistration: "true",
}

// UpdateSettingsRequest 관리자 설정 변경 요청
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}
