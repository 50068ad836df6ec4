package usecase

import (
	"context"
	"errors"

	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"
	repo "github.com/NghiaPh49487/Back-End-DATN/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /carts の業務ロジックです。
// カートはユーザーにつき1つで、初回追加時に作る。
type CartUsecase struct {
	tx repo.TransactionManager
}

func NewCartUsecase(tx repo.TransactionManager) *CartUsecase {
	return &CartUsecase{tx: tx}
}

// Quantity未指定は1
type AddCartItemInput struct {
	ProductID int64
	VariantID int64
	Quantity  *int64
}

type CartItemView struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	VariantID   int64           `json:"variant_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Items       []CartItemView  `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// AddItems はカートに追加（同一(product, variant)は数量加算）。
// 反映後の明細を返す。
func (u *CartUsecase) AddItems(ctx context.Context, userID int64, items []AddCartItemInput) ([]model.CartItem, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}
	if len(items) == 0 {
		return nil, validationf("no items")
	}

	type line struct {
		productID, variantID, qty int64
	}
	lines := make([]line, 0, len(items))
	for i, it := range items {
		if it.ProductID <= 0 {
			return nil, validationf("items[%d]: invalid product_id", i)
		}
		if it.VariantID <= 0 {
			return nil, validationf("items[%d]: invalid variant_id", i)
		}
		qty := int64(1)
		if it.Quantity != nil {
			qty = *it.Quantity
		}
		if qty < 1 || qty > MaxStockMagnitude {
			return nil, validationf("items[%d]: quantity must be between 1 and %d", i, MaxStockMagnitude)
		}
		lines = append(lines, line{productID: it.ProductID, variantID: it.VariantID, qty: qty})
	}

	var out []model.CartItem
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return internal(err)
		}

		out = make([]model.CartItem, 0, len(lines))
		for i, ln := range lines {
			v, err := r.Variants().FindByID(ctx, ln.variantID)
			if errors.Is(err, repo.ErrNotFound) {
				return validationf("items[%d]: variant %d does not exist", i, ln.variantID)
			}
			if err != nil {
				return internal(err)
			}
			if v.ProductID != ln.productID {
				return validationf("items[%d]: variant %d does not belong to product %d", i, ln.variantID, ln.productID)
			}

			saved, err := r.CartItems().UpsertLine(ctx, cart.ID, ln.productID, ln.variantID, ln.qty)
			if err != nil {
				return internal(err)
			}
			//積み増しで上限を越えたら全体を取り消す
			if saved.Quantity > MaxStockMagnitude {
				return validationf("items[%d]: quantity in cart would exceed %d", i, MaxStockMagnitude)
			}
			out = append(out, saved)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// GetCart は明細と合計を返す（価格が取れない明細は0円扱い）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartView, error) {
	if userID <= 0 {
		return CartView{}, ErrUnauthorized
	}

	var out CartView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundf("cart")
		}
		if err != nil {
			return internal(err)
		}

		items, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return internal(err)
		}

		out = CartView{ID: cart.ID, UserID: cart.UserID, Items: make([]CartItemView, 0, len(items)), TotalAmount: decimal.Zero}
		for _, it := range items {
			view := CartItemView{
				ID:        it.ID,
				ProductID: it.ProductID,
				VariantID: it.VariantID,
				Price:     decimal.Zero,
				Quantity:  it.Quantity,
			}
			v, err := r.Variants().FindByID(ctx, it.VariantID)
			switch {
			case err == nil:
				view.Price = v.Price
				view.SKU = v.SKU
			case !errors.Is(err, repo.ErrNotFound):
				return internal(err)
			}
			p, err := r.Products().FindByID(ctx, it.ProductID)
			switch {
			case err == nil:
				view.ProductName = p.Name
			case !errors.Is(err, repo.ErrNotFound):
				return internal(err)
			}

			view.Subtotal = view.Price.Mul(decimal.NewFromInt(it.Quantity))
			out.TotalAmount = out.TotalAmount.Add(view.Subtotal)
			out.Items = append(out.Items, view)
		}
		return nil
	})
	if err != nil {
		return CartView{}, translate(err)
	}
	return out, nil
}

// 数量変更（他人の明細は存在しない扱い）
func (u *CartUsecase) UpdateItemQuantity(ctx context.Context, userID int64, cartItemID int64, quantity int64) (model.CartItem, error) {
	if userID <= 0 {
		return model.CartItem{}, ErrUnauthorized
	}
	if cartItemID <= 0 {
		return model.CartItem{}, validationf("invalid id")
	}
	if quantity < 1 || quantity > MaxStockMagnitude {
		return model.CartItem{}, validationf("quantity must be between 1 and %d", MaxStockMagnitude)
	}

	var out model.CartItem
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := ensureItemOwned(ctx, r, cartItemID, userID); err != nil {
			return err
		}
		if err := r.CartItems().UpdateQuantity(ctx, cartItemID, quantity); err != nil {
			return err
		}
		item, err := r.CartItems().FindByID(ctx, cartItemID)
		if err != nil {
			return err
		}
		out = item
		return nil
	})
	if err != nil {
		return model.CartItem{}, translate(err)
	}
	return out, nil
}

// 明細削除
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, cartItemID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if cartItemID <= 0 {
		return validationf("invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := ensureItemOwned(ctx, r, cartItemID, userID); err != nil {
			return err
		}
		return r.CartItems().DeleteByID(ctx, cartItemID)
	})
	return translate(err)
}

func ensureItemOwned(ctx context.Context, r repo.TxRepos, cartItemID int64, userID int64) error {
	owned, err := r.CartItems().IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return internal(err)
	}
	if !owned {
		return notFoundf("cart item %d", cartItemID)
	}
	return nil
}
