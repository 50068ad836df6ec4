package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCanceled   OrderStatus = "canceled"
)

// 代金引換のみ
const PaymentMethodCOD = "COD"

// 前進順（canceledは順序に含めない）
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

func (s OrderStatus) IsValid() bool {
	if s == OrderStatusCanceled {
		return true
	}
	_, ok := orderStatusRank[s]
	return ok
}

// delivered / canceled は終端
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

func (s OrderStatus) IsCancellable() bool {
	return s.IsValid() && !s.IsTerminal()
}

// CanAdvanceTo は管理者によるステータス更新で許される遷移か判定する。
// 前進のみ。canceledへはキャンセル操作でしか遷移しない。
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	if s.IsTerminal() || next == OrderStatusCanceled {
		return false
	}
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return to > from
}

func CancellableStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped}
}

type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64           `gorm:"not null;index;uniqueIndex:idx_orders_user_idem,priority:1" json:"user_id"`
	CartID          int64           `gorm:"not null;index" json:"cart_id"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	ShippingAddress string          `gorm:"type:text" json:"shipping_address"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	IdempotencyKey  string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_orders_user_idem,priority:2" json:"-"`
	CancelReason    *string         `gorm:"type:varchar(500)" json:"cancel_reason"`
	CancelledAt     *time.Time      `json:"cancelled_at"`
	CancelledBy     *int64          `json:"cancelled_by"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
