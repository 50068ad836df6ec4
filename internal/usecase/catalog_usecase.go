package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"
	repo "github.com/NghiaPh49487/Back-End-DATN/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	tx repo.TransactionManager
}

func NewProductUsecase(tx repo.TransactionManager) *ProductUsecase {
	return &ProductUsecase{tx: tx}
}

type CreateProductInput struct {
	Name        string
	Description string
	Brand       string
}

func (u *ProductUsecase) Create(ctx context.Context, in CreateProductInput) (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 255 {
		return model.Product{}, validationf("invalid name")
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().Create(ctx, model.Product{
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			Brand:       strings.TrimSpace(in.Brand),
			IsActive:    true,
		})
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, translate(err)
	}
	return out, nil
}

func (u *ProductUsecase) Get(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, validationf("invalid id")
	}

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("product %d", id)
		}
		if err != nil {
			return internal(err)
		}
		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, translate(err)
	}
	return out, nil
}

type VariantUsecase struct {
	tx    repo.TransactionManager
	clock Clock
}

func NewVariantUsecase(tx repo.TransactionManager) *VariantUsecase {
	return &VariantUsecase{tx: tx, clock: systemClock{}}
}

type CreateVariantInput struct {
	ProductID    int64
	SKU          string
	Color        string
	Size         string
	ImageURL     string
	Price        decimal.Decimal
	ImportPrice  decimal.Decimal
	InitialStock int64
}

type VariantOutput struct {
	model.Variant
	CurrentStock int64 `json:"current_stock"`
}

// Create はバリアントと在庫レコードを同時に作る。
// 初期数量はInitialQuantityに残し、履歴は書かない。
func (u *VariantUsecase) Create(ctx context.Context, in CreateVariantInput) (VariantOutput, error) {
	if in.ProductID <= 0 {
		return VariantOutput{}, validationf("invalid product_id")
	}
	sku := strings.TrimSpace(in.SKU)
	if sku == "" || len(sku) > 100 {
		return VariantOutput{}, validationf("invalid sku")
	}
	if in.Price.IsNegative() || in.ImportPrice.IsNegative() {
		return VariantOutput{}, validationf("price must be >= 0")
	}
	if in.InitialStock < 0 || in.InitialStock > MaxStockMagnitude {
		return VariantOutput{}, validationf("initial stock must be between 0 and %d", MaxStockMagnitude)
	}

	var out VariantOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Products().FindByID(ctx, in.ProductID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFoundf("product %d", in.ProductID)
			}
			return internal(err)
		}

		v, err := r.Variants().Create(ctx, model.Variant{
			ProductID:   in.ProductID,
			SKU:         sku,
			Color:       strings.TrimSpace(in.Color),
			Size:        strings.TrimSpace(in.Size),
			ImageURL:    strings.TrimSpace(in.ImageURL),
			Price:       in.Price,
			ImportPrice: in.ImportPrice,
		})
		if errors.Is(err, repo.ErrDuplicate) {
			return errors.Join(ErrConflict, err)
		}
		if err != nil {
			return internal(err)
		}

		s, err := r.Stocks().Create(ctx, model.Stock{
			VariantID:       v.ID,
			Quantity:        in.InitialStock,
			InitialQuantity: in.InitialStock,
			LastUpdated:     u.clock.Now(),
		})
		if err != nil {
			return internal(err)
		}

		out = VariantOutput{Variant: v, CurrentStock: s.Quantity}
		return nil
	})
	if err != nil {
		return VariantOutput{}, translate(err)
	}
	return out, nil
}

func (u *VariantUsecase) Get(ctx context.Context, id int64) (VariantOutput, error) {
	if id <= 0 {
		return VariantOutput{}, validationf("invalid id")
	}

	var out VariantOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		v, err := r.Variants().FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("variant %d", id)
		}
		if err != nil {
			return internal(err)
		}
		out = VariantOutput{Variant: v}

		// 在庫レコードが無ければ0
		s, err := r.Stocks().FindByVariantID(ctx, id)
		switch {
		case err == nil:
			out.CurrentStock = s.Quantity
		case !errors.Is(err, repo.ErrNotFound):
			return internal(err)
		}
		return nil
	})
	if err != nil {
		return VariantOutput{}, translate(err)
	}
	return out, nil
}
