package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type SiteSettingsGormRepository struct {
	db *gorm.DB
}

func NewSiteSettingsGormRepository(db *gorm.DB) *SiteSettingsGormRepository {
	return &SiteSettingsGormRepository{db: db}
}

func (r *SiteSettingsGormRepository) Get(ctx context.Context) (model.SiteSettings, error) {
	var s model.SiteSettings
	err := r.db.WithContext(ctx).Where("id = ?", model.SiteSettingsID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		//初回アクセス時に行を作る（停止フラグはfalse）
		s = model.SiteSettings{ID: model.SiteSettingsID, PurchasingPaused: false}
		if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
			return model.SiteSettings{}, err
		}
		return s, nil
	}
	if err != nil {
		return model.SiteSettings{}, err
	}
	return s, nil
}

func (r *SiteSettingsGormRepository) SetPurchasingPaused(ctx context.Context, paused bool) error {
	//行が無ければ作ってから更新
	if _, err := r.Get(ctx); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.SiteSettings{}).
		Where("id = ?", model.SiteSettingsID).
		Update("purchasing_paused", paused).Error
}
