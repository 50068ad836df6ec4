package repository

import (
	"context"
	"time"

	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"
)

// 在庫と在庫履歴の永続化
type StockRepository interface {
	Create(ctx context.Context, stock model.Stock) (model.Stock, error)
	FindByVariantID(ctx context.Context, variantID int64) (model.Stock, error)

	// 反映後の数量が0以上になるときだけ加算する（deltaは負も可）
	// 条件に合わなければ false。
	AddQuantityIfNonNegative(ctx context.Context, variantID int64, delta int64, now time.Time) (bool, error)

	CreateHistory(ctx context.Context, history model.StockHistory) (model.StockHistory, error)
	ListHistory(ctx context.Context, stockID int64) ([]model.StockHistory, error)
	// 全在庫の履歴を新しい順に
	ListAllHistory(ctx context.Context, limit int, offset int) ([]model.StockHistory, error)
	FindHistoryByID(ctx context.Context, historyID int64) (model.StockHistory, error)
	SumHistory(ctx context.Context, stockID int64) (int64, error)
}
