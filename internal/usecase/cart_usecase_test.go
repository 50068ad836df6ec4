package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qty(n int64) *int64 { return &n }

func TestAddItems_AccumulatesSameLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVariant(t, "Tee", "TEE-M", "2.50", 10)

	_, err := f.carts.AddItems(ctx, 1, []AddCartItemInput{{ProductID: v.ProductID, VariantID: v.ID, Quantity: qty(2)}})
	require.NoError(t, err)
	items, err := f.carts.AddItems(ctx, 1, []AddCartItemInput{{ProductID: v.ProductID, VariantID: v.ID, Quantity: qty(3)}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].Quantity)

	view, err := f.carts.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Tee", view.Items[0].ProductName)
	assert.Equal(t, "TEE-M", view.Items[0].SKU)
	assert.True(t, decimal.RequireFromString("12.50").Equal(view.TotalAmount))
}

func TestAddItems_DefaultsQuantityToOne(t *testing.T) {
	f := newFixture(t)
	v := f.seedVariant(t, "Tee", "TEE-M", "1", 10)

	items, err := f.carts.AddItems(context.Background(), 1, []AddCartItemInput{{ProductID: v.ProductID, VariantID: v.ID}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), items[0].Quantity)
}

func TestAddItems_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVariant(t, "Tee", "TEE-M", "1", 10)
	other := f.seedVariant(t, "Cap", "CAP-1", "1", 10)

	cases := []struct {
		name  string
		items []AddCartItemInput
	}{
		{"empty", nil},
		{"zero quantity", []AddCartItemInput{{ProductID: v.ProductID, VariantID: v.ID, Quantity: qty(0)}}},
		{"huge quantity", []AddCartItemInput{{ProductID: v.ProductID, VariantID: v.ID, Quantity: qty(MaxStockMagnitude + 1)}}},
		{"missing variant", []AddCartItemInput{{ProductID: v.ProductID, VariantID: 404}}},
		{"variant of other product", []AddCartItemInput{{ProductID: other.ProductID, VariantID: v.ID}}},
		{"invalid product", []AddCartItemInput{{ProductID: 0, VariantID: v.ID}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.carts.AddItems(ctx, 1, tc.items)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	//途中で失敗したら何も入らない
	_, err := f.carts.AddItems(ctx, 1, []AddCartItemInput{
		{ProductID: v.ProductID, VariantID: v.ID},
		{ProductID: v.ProductID, VariantID: 404},
	})
	require.ErrorIs(t, err, ErrValidation)
	_, err = f.carts.GetCart(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

// 積み増しで上限を越える追加は取り消される
func TestAddItems_AccumulationCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVariant(t, "Tee", "TEE-M", "1", 10)

	_, err := f.carts.AddItems(ctx, 1, []AddCartItemInput{{ProductID: v.ProductID, VariantID: v.ID, Quantity: qty(MaxStockMagnitude)}})
	require.NoError(t, err)

	_, err = f.carts.AddItems(ctx, 1, []AddCartItemInput{{ProductID: v.ProductID, VariantID: v.ID, Quantity: qty(1)}})
	require.ErrorIs(t, err, ErrValidation)

	view, err := f.carts.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, MaxStockMagnitude, view.Items[0].Quantity)
}

func TestUpdateAndRemoveItem_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.seedVariant(t, "Tee", "TEE-M", "1", 10)

	items, err := f.carts.AddItems(ctx, 1, []AddCartItemInput{{ProductID: v.ProductID, VariantID: v.ID}})
	require.NoError(t, err)
	itemID := items[0].ID

	_, err = f.carts.UpdateItemQuantity(ctx, 2, itemID, 4)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.carts.RemoveItem(ctx, 2, itemID), ErrNotFound)

	_, err = f.carts.UpdateItemQuantity(ctx, 1, itemID, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.carts.UpdateItemQuantity(ctx, 1, itemID, MaxStockMagnitude+1)
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := f.carts.UpdateItemQuantity(ctx, 1, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated.Quantity)

	require.NoError(t, f.carts.RemoveItem(ctx, 1, itemID))
	view, err := f.carts.GetCart(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.TotalAmount.IsZero())
}
