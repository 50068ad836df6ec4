package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/NghiaPh49487/Back-End-DATN/internal/usecase"

	"github.com/labstack/echo/v4"
)

const maxCartBodyBytes = 1 << 20

// /api/cartsのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID int64  `json:"product_id"`
	VariantID int64  `json:"variant_id"`
	Quantity  *int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type AddCartResponse struct {
	Items []cartItemJSON `json:"items"`
}

type cartItemJSON struct {
	ID        int64 `json:"id"`
	CartID    int64 `json:"cart_id"`
	ProductID int64 `json:"product_id"`
	VariantID int64 `json:"variant_id"`
	Quantity  int64 `json:"quantity"`
}

// /api/carts, /api/carts/:itemId を登録
func (h *CartHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/carts", h.addItems)
	g.GET("/carts", h.getCart)
	g.PUT("/carts/:itemId", h.updateItem)
	g.DELETE("/carts/:itemId", h.deleteItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetCart(c.Request().Context(), actor.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// bodyは1件のオブジェクトでも配列でもよい
func (h *CartHandler) addItems(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	reqs, err := decodeAddCartBody(c.Request().Body)
	if err != nil {
		return badRequest(c, "invalid body")
	}

	in := make([]usecase.AddCartItemInput, 0, len(reqs))
	for _, r := range reqs {
		in = append(in, usecase.AddCartItemInput{ProductID: r.ProductID, VariantID: r.VariantID, Quantity: r.Quantity})
	}

	items, err := h.uc.AddItems(c.Request().Context(), actor.UserID, in)
	if err != nil {
		return writeError(c, err)
	}

	out := AddCartResponse{Items: make([]cartItemJSON, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, cartItemJSON{
			ID:        it.ID,
			CartID:    it.CartID,
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
		})
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	item, err := h.uc.UpdateItemQuantity(c.Request().Context(), actor.UserID, itemID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cartItemJSON{
		ID:        item.ID,
		CartID:    item.CartID,
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
	})
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.RemoveItem(c.Request().Context(), actor.UserID, itemID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func decodeAddCartBody(r io.Reader) ([]AddCartRequest, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxCartBodyBytes))
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, io.ErrUnexpectedEOF
	}

	if trimmed[0] == '[' {
		var reqs []AddCartRequest
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			return nil, err
		}
		return reqs, nil
	}

	var one AddCartRequest
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, err
	}
	return []AddCartRequest{one}, nil
}
