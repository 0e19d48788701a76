package model

import "time"

type OrderStatus string

const (
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusInTransit  OrderStatus = "in_transit"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsTerminalはそこから先に遷移できないステータスかどうか
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ValidOrderStatusは管理者が指定できる値かどうか
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPaid, OrderStatusInProgress, OrderStatusInTransit,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

type Order struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerEmail string `gorm:"type:varchar(255);not null;index" json:"customer_email"`
	CustomerName  string `gorm:"type:varchar(255);not null" json:"customer_name"`

	//ゲスト購入はnull
	UserID *int64 `gorm:"index" json:"user_id,omitempty"`

	Status     OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	IsPaid     bool        `gorm:"not null;default:false" json:"is_paid"`
	TotalPrice int64       `gorm:"not null" json:"total_price"`

	//決済セッションID。同じイベントが再配送されても注文は1件（冪等キー）
	StripeSessionID string `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
