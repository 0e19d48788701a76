package repository

import (
	"context"

	"app/internal/domain/model"
)

// 採寸表の永続化の約束。
type SizeGuideRepository interface {
	List(ctx context.Context) ([]model.SizeGuide, error)
	FindByID(ctx context.Context, id int64) (model.SizeGuide, error)
	Create(ctx context.Context, g model.SizeGuide) (model.SizeGuide, error)
	Update(ctx context.Context, g model.SizeGuide) error
	Delete(ctx context.Context, id int64) error
}
