package handler

import (
	"net/http"

	"github.com/NghiaPh49487/Back-End-DATN/internal/middleware"
	"github.com/NghiaPh49487/Back-End-DATN/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /api/products, /api/variants
type ProductHandler struct {
	products *usecase.ProductUsecase
	variants *usecase.VariantUsecase
}

// DI
func NewProductHandler(products *usecase.ProductUsecase, variants *usecase.VariantUsecase) *ProductHandler {
	return &ProductHandler{products: products, variants: variants}
}

type ProductCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Brand       string `json:"brand"`
}

// priceは数値でも文字列でもよい
type VariantCreateRequest struct {
	ProductID    int64           `json:"product_id"`
	SKU          string          `json:"sku"`
	Color        string          `json:"color"`
	Size         string          `json:"size"`
	ImageURL     string          `json:"image_url"`
	Price        decimal.Decimal `json:"price"`
	ImportPrice  decimal.Decimal `json:"import_price"`
	InitialStock int64           `json:"initial_stock"`
}

func (h *ProductHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/products", h.createProduct, middleware.AdminRoleGuard())
	g.GET("/products/:id", h.getProduct)
	g.POST("/variants", h.createVariant, middleware.AdminRoleGuard())
	g.GET("/variants/:id", h.getVariant)
}

func (h *ProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.products.Create(c.Request().Context(), usecase.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ProductHandler) getProduct(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.products.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) createVariant(c echo.Context) error {
	var req VariantCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.variants.Create(c.Request().Context(), usecase.CreateVariantInput{
		ProductID:    req.ProductID,
		SKU:          req.SKU,
		Color:        req.Color,
		Size:         req.Size,
		ImageURL:     req.ImageURL,
		Price:        req.Price,
		ImportPrice:  req.ImportPrice,
		InitialStock: req.InitialStock,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ProductHandler) getVariant(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.variants.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
