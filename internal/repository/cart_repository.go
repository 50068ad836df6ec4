package repository

import (
	"context"

	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"
)

type CartRepository interface {
	// 無ければ作る（同時作成でも1件になる）
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByID(ctx context.Context, cartID int64) (model.Cart, error)
	// 明細を全削除
	Clear(ctx context.Context, cartID int64) error
}
