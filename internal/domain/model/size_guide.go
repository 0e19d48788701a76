package model

import "time"

// SizeGuideは商品詳細のモーダルに出す採寸表。
// Rowsは行の配列（例：[{"label":"着丈","s":"60","m":"64"}]）をそのまま持つ
type SizeGuide struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Rows      string    `gorm:"type:jsonb;not null;default:'[]'" json:"rows"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
