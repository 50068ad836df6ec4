package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDelta_WritesHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVariant(t, "Tee", "TEE-M", "10", 3)

	res, err := f.stocks.ApplyDelta(ctx, v.ID, 4, "", "restock")
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Stock.Quantity)
	require.NotNil(t, res.History)
	assert.Equal(t, int64(4), res.History.QuantityChange)
	assert.Equal(t, "manual adjustment", res.History.Reason)
	assert.Equal(t, "restock", res.History.Note)
	assert.Equal(t, "7 in stock", res.Message)

	entry, err := f.stocks.HistoryEntry(ctx, res.History.ID)
	require.NoError(t, err)
	assert.Equal(t, res.History.ID, entry.ID)
}

func TestApplyDelta_NeverBelowZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVariant(t, "Tee", "TEE-M", "10", 3)

	_, err := f.stocks.ApplyDelta(ctx, v.ID, -4, "damaged", "")
	var ise *InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(3), ise.Available)
	assert.Equal(t, int64(4), ise.Requested)
	assert.Equal(t, int64(3), f.quantity(t, v.ID))
	assert.Zero(t, f.count(t, &model.StockHistory{}))

	res, err := f.stocks.ApplyDelta(ctx, v.ID, -3, "damaged", "")
	require.NoError(t, err)
	assert.Equal(t, "out of stock", res.Message)
}

func TestApplyDelta_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.stocks.ApplyDelta(ctx, 0, 1, "", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.stocks.ApplyDelta(ctx, 1, 1, strings.Repeat("x", 256), "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.stocks.ApplyDelta(ctx, 42, 1, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

// 桁あふれする数量は保存前に弾く
func TestApplyDelta_RejectsHugeMagnitudes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVariant(t, "Tee", "TEE-M", "10", 5)

	for _, delta := range []int64{math.MaxInt64, math.MinInt64, MaxStockMagnitude + 1, -MaxStockMagnitude - 1} {
		_, err := f.stocks.ApplyDelta(ctx, v.ID, delta, "", "")
		assert.ErrorIs(t, err, ErrValidation, "delta=%d", delta)
	}
	assert.Equal(t, int64(5), f.quantity(t, v.ID))
	assert.Zero(t, f.count(t, &model.StockHistory{}))

	res, err := f.stocks.ApplyDelta(ctx, v.ID, MaxStockMagnitude, "", "")
	require.NoError(t, err)
	assert.Equal(t, MaxStockMagnitude+5, res.Stock.Quantity)
}

func TestSetAbsolute_RejectsHugeQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVariant(t, "Tee", "TEE-M", "10", 5)

	_, err := f.stocks.SetAbsolute(ctx, 999, v.ID, math.MaxInt64, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.stocks.SetAbsolute(ctx, 999, v.ID, MaxStockMagnitude+1, "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, int64(5), f.quantity(t, v.ID))
	assert.Zero(t, f.count(t, &model.AuditLog{}))

	res, err := f.stocks.SetAbsolute(ctx, 999, v.ID, MaxStockMagnitude, "")
	require.NoError(t, err)
	assert.Equal(t, MaxStockMagnitude, res.Stock.Quantity)
}

func TestSetAbsolute_RecordsDifferenceAndAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVariant(t, "Tee", "TEE-M", "10", 10)

	res, err := f.stocks.SetAbsolute(ctx, 999, v.ID, 3, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Stock.Quantity)
	assert.Equal(t, int64(-7), res.History.QuantityChange)
	assert.Equal(t, "manual update", res.History.Reason)
	assert.Equal(t, "low stock", res.Message)

	var logs []model.AuditLog
	require.NoError(t, f.db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionUpdateStock, logs[0].Action)
	assert.Equal(t, int64(999), logs[0].ActorUserID)
	assert.JSONEq(t, `{"quantity":10}`, logs[0].BeforeJSON)
	assert.JSONEq(t, `{"quantity":3,"reason":"manual update"}`, logs[0].AfterJSON)

	_, err = f.stocks.SetAbsolute(ctx, 999, v.ID, -1, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.stocks.SetAbsolute(ctx, 0, v.ID, 1, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerify_LedgerMatchesAfterMixedOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVariant(t, "Tee", "TEE-M", "10", 10)

	_, err := f.stocks.ApplyDelta(ctx, v.ID, 5, "", "")
	require.NoError(t, err)
	_, err = f.stocks.SetAbsolute(ctx, 999, v.ID, 8, "count")
	require.NoError(t, err)

	cart := f.addToCart(t, 1, v, 2)
	order, err := f.orders.CreateOrder(ctx, customer(1), CreateOrderInput{CartID: cart.ID})
	require.NoError(t, err)
	_, err = f.orders.CancelOrder(ctx, customer(1), order.ID, "")
	require.NoError(t, err)

	check, err := f.stocks.Verify(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.Equal(t, int64(10), check.InitialQuantity)
	assert.Equal(t, int64(-2), check.HistorySum)
	assert.Equal(t, int64(8), check.Quantity)

	history, err := f.stocks.History(ctx, v.ID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestAllHistory_NewestFirstAcrossVariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tee := f.seedVariant(t, "Tee", "TEE-M", "10", 5)
	hat := f.seedVariant(t, "Cap", "CAP-1", "10", 5)

	_, err := f.stocks.ApplyDelta(ctx, tee.ID, 1, "", "")
	require.NoError(t, err)
	_, err = f.stocks.ApplyDelta(ctx, hat.ID, -2, "", "")
	require.NoError(t, err)
	_, err = f.stocks.ApplyDelta(ctx, tee.ID, 3, "", "")
	require.NoError(t, err)

	all, err := f.stocks.AllHistory(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].QuantityChange)
	assert.Equal(t, int64(-2), all[1].QuantityChange)
	assert.Equal(t, int64(1), all[2].QuantityChange)

	page, err := f.stocks.AllHistory(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(-2), page[0].QuantityChange)

	_, err = f.stocks.AllHistory(ctx, 501, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.stocks.AllHistory(ctx, 10, -1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestHistoryEntry_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.stocks.HistoryEntry(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}
