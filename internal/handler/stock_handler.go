package handler

import (
	"net/http"
	"strconv"

	"github.com/NghiaPh49487/Back-End-DATN/internal/middleware"
	"github.com/NghiaPh49487/Back-End-DATN/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/stocksのHTTP
type StockHandler struct {
	uc *usecase.StockUsecase
}

func NewStockHandler(uc *usecase.StockUsecase) *StockHandler {
	return &StockHandler{uc: uc}
}

// 上書き。quantityは必須
type StockSetRequest struct {
	Quantity *int64 `json:"quantity"`
	Reason   string `json:"reason"`
}

// 増減
type StockAdjustRequest struct {
	QuantityChange *int64 `json:"quantity_change"`
	Reason         string `json:"reason"`
	Note           string `json:"note"`
}

func (h *StockHandler) RegisterRoutes(g *echo.Group) {
	s := g.Group("/stocks")
	s.GET("/variant/:variantId", h.get)
	s.PUT("/variant/:variantId", h.set, middleware.AdminRoleGuard())
	s.PATCH("/variant/:variantId", h.adjust, middleware.AdminRoleGuard())
	s.GET("/variant/:variantId/history", h.history)
	s.GET("/variant/:variantId/verify", h.verify)
	s.GET("/history", h.allHistory)
	s.GET("/history/:id", h.historyEntry)
}

func (h *StockHandler) get(c echo.Context) error {
	variantID, ok := parseIDParam(c, "variantId")
	if !ok {
		return badRequest(c, "invalid variant id")
	}

	out, err := h.uc.GetQuantity(c.Request().Context(), variantID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StockHandler) set(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	variantID, ok := parseIDParam(c, "variantId")
	if !ok {
		return badRequest(c, "invalid variant id")
	}

	var req StockSetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Quantity == nil {
		return badRequest(c, "quantity is required")
	}

	out, err := h.uc.SetAbsolute(c.Request().Context(), actor.UserID, variantID, *req.Quantity, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StockHandler) adjust(c echo.Context) error {
	variantID, ok := parseIDParam(c, "variantId")
	if !ok {
		return badRequest(c, "invalid variant id")
	}

	var req StockAdjustRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.QuantityChange == nil {
		return badRequest(c, "quantity_change is required")
	}

	out, err := h.uc.ApplyDelta(c.Request().Context(), variantID, *req.QuantityChange, req.Reason, req.Note)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StockHandler) history(c echo.Context) error {
	variantID, ok := parseIDParam(c, "variantId")
	if !ok {
		return badRequest(c, "invalid variant id")
	}

	out, err := h.uc.History(c.Request().Context(), variantID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StockHandler) verify(c echo.Context) error {
	variantID, ok := parseIDParam(c, "variantId")
	if !ok {
		return badRequest(c, "invalid variant id")
	}

	out, err := h.uc.Verify(c.Request().Context(), variantID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ?limit=&offset=
func (h *StockHandler) allHistory(c echo.Context) error {
	limit, offset := 0, 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid offset")
		}
		offset = n
	}

	out, err := h.uc.AllHistory(c.Request().Context(), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StockHandler) historyEntry(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.HistoryEntry(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
