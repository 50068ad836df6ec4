package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/NghiaPh49487/Back-End-DATN/internal/logging"
	"github.com/NghiaPh49487/Back-End-DATN/internal/middleware"
	"github.com/NghiaPh49487/Back-End-DATN/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// 在庫不足のときだけ数量を付ける
type StockErrorResponse struct {
	Error       string `json:"error"`
	ProductName string `json:"product_name,omitempty"`
	VariantID   int64  `json:"variant_id"`
	Available   int64  `json:"available"`
	Requested   int64  `json:"requested"`
}

// usecaseのエラーをHTTPステータスに変換して返す
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	var ise *usecase.InsufficientStockError
	if errors.As(err, &ise) {
		return c.JSON(http.StatusBadRequest, StockErrorResponse{
			Error:       ise.Error(),
			ProductName: ise.ProductName,
			VariantID:   ise.VariantID,
			Available:   ise.Available,
			Requested:   ise.Requested,
		})
	}

	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request failed", "status", status, "error", err)
		if status == http.StatusInternalServerError {
			return c.JSON(status, ErrorResponse{Error: "internal error"})
		}
	}
	return c.JSON(status, ErrorResponse{Error: err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, usecase.ErrEmptyCart),
		errors.Is(err, usecase.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidState),
		errors.Is(err, usecase.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func actorFromContext(c echo.Context) (usecase.Actor, bool) {
	return middleware.ActorFrom(c)
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
