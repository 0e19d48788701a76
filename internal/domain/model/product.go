package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `gorm:"not null" json:"price"`
	IsActive    bool   `gorm:"not null;default:false" json:"is_active"`

	//型紙商品（ダウンロード販売）かどうか
	IsPattern  bool   `gorm:"not null;default:false" json:"is_pattern"`
	PatternURL string `gorm:"type:text" json:"pattern_url,omitempty"`

	//サイズ展開（S/M/Lなど）。無い商品は空
	Sizes       []string `gorm:"serializer:json;type:jsonb" json:"sizes,omitempty"`
	SizeGuideID *int64   `gorm:"index" json:"size_guide_id,omitempty"`

	Images []ProductImage `gorm:"foreignKey:ProductID" json:"images"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PrimaryImageURLは決済画面に渡す先頭画像を返す。無ければ空
func (p Product) PrimaryImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}
