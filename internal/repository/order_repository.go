package repository

import (
	"context"
	"time"

	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"
)

// キャンセル時に書き込む内容
type OrderCancellation struct {
	Reason      string
	CancelledBy int64
	CancelledAt time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (model.Order, error)

	// 現在のステータスが from のときだけ to に更新（false なら他で更新済み）
	UpdateStatusIf(ctx context.Context, orderID int64, from model.OrderStatus, to model.OrderStatus) (bool, error)

	// ステータスが cancellable のいずれかのときだけ canceled にする
	CancelIf(ctx context.Context, orderID int64, cancellable []model.OrderStatus, c OrderCancellation) (bool, error)

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
}
