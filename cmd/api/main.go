package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/NghiaPh49487/Back-End-DATN/internal/config"
	"github.com/NghiaPh49487/Back-End-DATN/internal/handler"
	"github.com/NghiaPh49487/Back-End-DATN/internal/infra/db"
	"github.com/NghiaPh49487/Back-End-DATN/internal/infra/event"
	infraRepo "github.com/NghiaPh49487/Back-End-DATN/internal/infra/repository"
	"github.com/NghiaPh49487/Back-End-DATN/internal/logging"
	"github.com/NghiaPh49487/Back-End-DATN/internal/server"
	"github.com/NghiaPh49487/Back-End-DATN/internal/usecase"

	"github.com/joho/godotenv"
)

type orderPublisher interface {
	usecase.OrderEventPublisher
	Close() error
}

func main() {
	//.envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Error("connect db", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB, cfg.DBTimeout, cfg.TxMaxRetries)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//ブローカー未設定ならイベントは送らない
	var publisher orderPublisher = event.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close publisher", "error", err)
		}
	}()

	//Usecase生成
	stockUC := usecase.NewStockUsecase(txm, cfg.LowStockThreshold)
	cartUC := usecase.NewCartUsecase(txm)
	orderUC := usecase.NewOrderUsecase(txm, publisher)
	productUC := usecase.NewProductUsecase(txm)
	variantUC := usecase.NewVariantUsecase(txm)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//Handler生成
	e := server.New(logger, cfg, userRepo, server.Handlers{
		Cart:     handler.NewCartHandler(cartUC),
		Order:    handler.NewOrderHandler(orderUC),
		Stock:    handler.NewStockHandler(stockUC),
		Product:  handler.NewProductHandler(productUC, variantUC),
		AuditLog: handler.NewAuditLogHandler(auditUC),
	})

	//Server起動
	logger.Info("server starting", "addr", cfg.Port, "db_driver", cfg.DBDriver)
	if err := server.Start(ctx, e, cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
