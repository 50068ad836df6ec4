package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"
	"github.com/NghiaPh49487/Back-End-DATN/internal/infra/db"
	infraRepo "github.com/NghiaPh49487/Back-End-DATN/internal/infra/repository"
	repo "github.com/NghiaPh49487/Back-End-DATN/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, ev model.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []model.OrderEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.OrderEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	tx       repo.TransactionManager
	stocks   *StockUsecase
	carts    *CartUsecase
	orders   *OrderUsecase
	products *ProductUsecase
	variants *VariantUsecase
	events   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))

	tx := infraRepo.NewTxManagerGorm(gdb, 5*time.Second, 3)
	events := &recordingPublisher{}
	return &fixture{
		db:       gdb,
		tx:       tx,
		stocks:   NewStockUsecase(tx, 5),
		carts:    NewCartUsecase(tx),
		orders:   NewOrderUsecase(tx, events),
		products: NewProductUsecase(tx),
		variants: NewVariantUsecase(tx),
		events:   events,
	}
}

// 商品+バリアント+在庫を作る
func (f *fixture) seedVariant(t *testing.T, name string, sku string, price string, stock int64) VariantOutput {
	t.Helper()
	ctx := context.Background()

	p, err := f.products.Create(ctx, CreateProductInput{Name: name})
	require.NoError(t, err)

	v, err := f.variants.Create(ctx, CreateVariantInput{
		ProductID:    p.ID,
		SKU:          sku,
		Price:        decimal.RequireFromString(price),
		InitialStock: stock,
	})
	require.NoError(t, err)
	return v
}

func (f *fixture) addToCart(t *testing.T, userID int64, v VariantOutput, qty int64) model.Cart {
	t.Helper()
	ctx := context.Background()

	_, err := f.carts.AddItems(ctx, userID, []AddCartItemInput{{ProductID: v.ProductID, VariantID: v.ID, Quantity: &qty}})
	require.NoError(t, err)

	view, err := f.carts.GetCart(ctx, userID)
	require.NoError(t, err)
	return model.Cart{ID: view.ID, UserID: view.UserID}
}

func (f *fixture) quantity(t *testing.T, variantID int64) int64 {
	t.Helper()
	res, err := f.stocks.GetQuantity(context.Background(), variantID)
	require.NoError(t, err)
	return res.Stock.Quantity
}

func (f *fixture) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func customer(id int64) Actor { return Actor{UserID: id, Username: "user", Address: "Tokyo"} }

func admin() Actor { return Actor{UserID: 999, Username: "admin", IsAdmin: true} }
