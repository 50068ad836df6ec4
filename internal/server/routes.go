package server

import (
	"net/http"

	"github.com/NghiaPh49487/Back-End-DATN/internal/config"
	"github.com/NghiaPh49487/Back-End-DATN/internal/handler"
	"github.com/NghiaPh49487/Back-End-DATN/internal/middleware"
	"github.com/NghiaPh49487/Back-End-DATN/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Cart     *handler.CartHandler
	Order    *handler.OrderHandler
	Stock    *handler.StockHandler
	Product  *handler.ProductHandler
	AuditLog *handler.AuditLogHandler
}

// /api 配下は全てJWT + ユーザー読み込みが必要
func RegisterRoutes(e *echo.Echo, cfg config.Config, users repository.UserRepository, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	api.Use(middleware.AuthJWT(cfg.JWTSecret))
	api.Use(middleware.LoadIdentity(users, cfg.DBTimeout))

	h.Cart.RegisterRoutes(api)
	h.Order.RegisterRoutes(api)
	h.Stock.RegisterRoutes(api)
	h.Product.RegisterRoutes(api)
	h.AuditLog.RegisterRoutes(api)
}
