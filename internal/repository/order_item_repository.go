package repository

import (
	"context"

	"app/internal/domain/model"
)

// 注文明細の永続化の約束。明細は作成後に変更しない
type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
