package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderEventType string

const (
	OrderEventCreated  OrderEventType = "order.created"
	OrderEventCanceled OrderEventType = "order.canceled"
)

// 注文の確定/キャンセル後に外へ流すイベント
type OrderEvent struct {
	Type       OrderEventType   `json:"type"`
	OrderID    int64            `json:"order_id"`
	UserID     int64            `json:"user_id"`
	Status     OrderStatus      `json:"status"`
	TotalPrice decimal.Decimal  `json:"total_price"`
	Items      []OrderEventItem `json:"items"`
	OccurredAt time.Time        `json:"occurred_at"`
}

type OrderEventItem struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int64 `json:"quantity"`
}

func NewOrderEvent(t OrderEventType, o Order, items []OrderItem, at time.Time) OrderEvent {
	evItems := make([]OrderEventItem, 0, len(items))
	for _, it := range items {
		evItems = append(evItems, OrderEventItem{VariantID: it.VariantID, Quantity: it.Quantity})
	}
	return OrderEvent{
		Type:       t,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		TotalPrice: o.TotalPrice,
		Items:      evItems,
		OccurredAt: at,
	}
}
