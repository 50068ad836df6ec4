package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NghiaPh49487/Back-End-DATN/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad", usecase.ErrValidation), http.StatusBadRequest},
		{usecase.ErrEmptyCart, http.StatusBadRequest},
		{&usecase.InsufficientStockError{VariantID: 1}, http.StatusBadRequest},
		{usecase.ErrUnauthorized, http.StatusUnauthorized},
		{usecase.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("%w: order 1", usecase.ErrNotFound), http.StatusNotFound},
		{usecase.ErrInvalidState, http.StatusConflict},
		{usecase.ErrConflict, http.StatusConflict},
		{usecase.ErrTimeout, http.StatusServiceUnavailable},
		{usecase.ErrInternal, http.StatusInternalServerError},
		{errors.New("unknown"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusOf(tc.err), tc.err.Error())
	}
}

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWriteError_InsufficientStockBody(t *testing.T) {
	c, rec := newContext()

	err := fmt.Errorf("create order: %w", &usecase.InsufficientStockError{
		VariantID:   3,
		ProductName: "Tee",
		Available:   2,
		Requested:   5,
	})
	require.NoError(t, writeError(c, err))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body StockErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Tee", body.ProductName)
	assert.Equal(t, int64(3), body.VariantID)
	assert.Equal(t, int64(2), body.Available)
	assert.Equal(t, int64(5), body.Requested)
}

// 500は中身を出さない
func TestWriteError_InternalHidesDetail(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, writeError(c, fmt.Errorf("%w: dial tcp 10.0.0.1: refused", usecase.ErrInternal)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal error", body.Error)
}

func TestWriteError_TimeoutKeepsMessage(t *testing.T) {
	c, rec := newContext()

	require.NoError(t, writeError(c, fmt.Errorf("%w: %v", usecase.ErrTimeout, context.DeadlineExceeded)))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "timeout")
}

func TestDecodeAddCartBody(t *testing.T) {
	one, err := decodeAddCartBody(strings.NewReader(`{"product_id":1,"variant_id":2,"quantity":3}`))
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, int64(2), one[0].VariantID)
	require.NotNil(t, one[0].Quantity)
	assert.Equal(t, int64(3), *one[0].Quantity)

	many, err := decodeAddCartBody(strings.NewReader(` [{"product_id":1,"variant_id":2},{"product_id":1,"variant_id":4,"quantity":1}]`))
	require.NoError(t, err)
	require.Len(t, many, 2)
	assert.Nil(t, many[0].Quantity)

	_, err = decodeAddCartBody(strings.NewReader("   "))
	assert.Error(t, err)

	_, err = decodeAddCartBody(strings.NewReader(`{"product_id":"x"}`))
	assert.Error(t, err)
}

func TestParseIDParam(t *testing.T) {
	c, _ := newContext()
	c.SetParamNames("id")

	for _, raw := range []string{"0", "-1", "abc", ""} {
		c.SetParamValues(raw)
		_, ok := parseIDParam(c, "id")
		assert.False(t, ok, raw)
	}

	c.SetParamValues("42")
	id, ok := parseIDParam(c, "id")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}
