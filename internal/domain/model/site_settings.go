package model

import "time"

// SiteSettingsはサイト全体のフラグを持つ1行だけのテーブル（id=1固定）
type SiteSettings struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	PurchasingPaused bool      `gorm:"not null;default:false" json:"purchasing_paused"`
	UpdatedAt        time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

const SiteSettingsID int64 = 1
