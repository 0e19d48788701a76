package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type SizeGuideGormRepository struct {
	db *gorm.DB
}

func NewSizeGuideGormRepository(db *gorm.DB) *SizeGuideGormRepository {
	return &SizeGuideGormRepository{db: db}
}

func (r *SizeGuideGormRepository) List(ctx context.Context) ([]model.SizeGuide, error) {
	var items []model.SizeGuide
	if err := r.db.WithContext(ctx).Order("id asc").Find(&items).Error; err != nil {
		return []model.SizeGuide{}, err
	}
	return items, nil
}

func (r *SizeGuideGormRepository) FindByID(ctx context.Context, id int64) (model.SizeGuide, error) {
	var g model.SizeGuide
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SizeGuide{}, repo.ErrNotFound
	}
	if err != nil {
		return model.SizeGuide{}, err
	}
	return g, nil
}

func (r *SizeGuideGormRepository) Create(ctx context.Context, g model.SizeGuide) (model.SizeGuide, error) {
	if err := r.db.WithContext(ctx).Create(&g).Error; err != nil {
		return model.SizeGuide{}, err
	}
	return g, nil
}

func (r *SizeGuideGormRepository) Update(ctx context.Context, g model.SizeGuide) error {
	res := r.db.WithContext(ctx).Model(&model.SizeGuide{}).
		Where("id = ?", g.ID).
		Updates(map[string]interface{}{
			"name": g.Name,
			"rows": g.Rows,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *SizeGuideGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.SizeGuide{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
