package repository

import (
	"context"

	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"
)

type ProductRepository interface {
	Create(ctx context.Context, p model.Product) (model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
}

type VariantRepository interface {
	Create(ctx context.Context, v model.Variant) (model.Variant, error)
	FindByID(ctx context.Context, id int64) (model.Variant, error)
}

// 認証基盤のユーザーを読むだけ
type UserRepository interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
}
