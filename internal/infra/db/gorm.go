package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/NghiaPh49487/Back-End-DATN/internal/config"
	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.GoEnv)),
	}

	var (
		gdb *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case config.DriverSQLite:
		gdb, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
	default:
		gdb, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), gcfg)
	}
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	configurePool(sqlDB, cfg.DBDriver)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return gdb, nil
}

// Migrate はテーブルを作成/更新する。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Variant{},
		&model.Stock{},
		&model.StockHistory{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	)
}

func configurePool(sqlDB *sql.DB, driver string) {
	//sqliteは書き込みが1本なので接続も1本にする
	if driver == config.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
}

func gormLogLevel(env string) logger.LogLevel {
	if env == "dev" {
		return logger.Info
	}
	return logger.Warn
}
