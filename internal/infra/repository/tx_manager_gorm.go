package repository

import (
	"context"
	"fmt"
	"time"

	repo "github.com/NghiaPh49487/Back-End-DATN/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	carts      repo.CartRepository
	cartItems  repo.CartItemRepository
	stocks     repo.StockRepository
	variants   repo.VariantRepository
	products   repo.ProductRepository
	auditLogs  repo.AuditLogRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txReposGorm) Carts() repo.CartRepository           { return r.carts }
func (r *txReposGorm) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *txReposGorm) Stocks() repo.StockRepository         { return r.stocks }
func (r *txReposGorm) Variants() repo.VariantRepository     { return r.variants }
func (r *txReposGorm) Products() repo.ProductRepository     { return r.products }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

// repoはtxを持ったDBで作り直す
func newTxRepos(tx *gorm.DB) *txReposGorm {
	return &txReposGorm{
		orders:     NewOrderGormRepository(tx),
		orderItems: NewOrderItemGormRepository(tx),
		carts:      NewCartGormRepository(tx),
		cartItems:  NewCartItemGormRepository(tx),
		stocks:     NewStockGormRepository(tx),
		variants:   NewVariantGormRepository(tx),
		products:   NewProductGormRepository(tx),
		auditLogs:  NewAuditLogGormRepository(tx),
	}
}

type TxManagerGorm struct {
	db         *gorm.DB
	timeout    time.Duration
	maxRetries int
}

func NewTxManagerGorm(db *gorm.DB, timeout time.Duration, maxRetries int) *TxManagerGorm {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &TxManagerGorm{db: db, timeout: timeout, maxRetries: maxRetries}
}

// fnを1トランザクションで実行する。
// 直列化失敗・デッドロックはmaxRetries回までやり直し、超えたら ErrConflict。
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if tm.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tm.timeout)
		defer cancel()
	}

	var err error
	for attempt := 0; attempt <= tm.maxRetries; attempt++ {
		err = tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(newTxRepos(tx))
		})
		if err == nil || !isRetryableTxError(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w: %v", repo.ErrConflict, err)
}
