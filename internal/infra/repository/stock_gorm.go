package repository

import (
	"context"
	"time"

	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"
	repo "github.com/NghiaPh49487/Back-End-DATN/internal/repository"

	"gorm.io/gorm"
)

type StockGormRepository struct {
	db *gorm.DB
}

func NewStockGormRepository(db *gorm.DB) *StockGormRepository {
	return &StockGormRepository{db: db}
}

func (r *StockGormRepository) Create(ctx context.Context, stock model.Stock) (model.Stock, error) {
	if err := r.db.WithContext(ctx).Create(&stock).Error; err != nil {
		return model.Stock{}, translateError(err)
	}
	return stock, nil
}

func (r *StockGormRepository) FindByVariantID(ctx context.Context, variantID int64) (model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).Where("variant_id = ?", variantID).First(&s).Error
	if err != nil {
		return model.Stock{}, translateError(err)
	}
	return s, nil
}

// 反映後が0以上のときだけ更新する。判定と更新は1文なので同時実行でもマイナスにならない
func (r *StockGormRepository) AddQuantityIfNonNegative(ctx context.Context, variantID int64, delta int64, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Stock{}).
		Where("variant_id = ? AND quantity + ? >= 0", variantID, delta).
		Updates(map[string]interface{}{
			"quantity":     gorm.Expr("quantity + ?", delta),
			"last_updated": now,
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

func (r *StockGormRepository) CreateHistory(ctx context.Context, h model.StockHistory) (model.StockHistory, error) {
	if err := r.db.WithContext(ctx).Create(&h).Error; err != nil {
		return model.StockHistory{}, err
	}
	return h, nil
}

// 新しい順
func (r *StockGormRepository) ListHistory(ctx context.Context, stockID int64) ([]model.StockHistory, error) {
	var items []model.StockHistory
	err := r.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return []model.StockHistory{}, err
	}
	return items, nil
}

func (r *StockGormRepository) ListAllHistory(ctx context.Context, limit int, offset int) ([]model.StockHistory, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var items []model.StockHistory
	err := r.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.StockHistory{}, err
	}
	return items, nil
}

func (r *StockGormRepository) FindHistoryByID(ctx context.Context, historyID int64) (model.StockHistory, error) {
	var h model.StockHistory
	if err := r.db.WithContext(ctx).Where("id = ?", historyID).First(&h).Error; err != nil {
		return model.StockHistory{}, translateError(err)
	}
	return h, nil
}

func (r *StockGormRepository) SumHistory(ctx context.Context, stockID int64) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.StockHistory{}).
		Where("stock_id = ?", stockID).
		Select("COALESCE(SUM(quantity_change), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}

var _ repo.StockRepository = (*StockGormRepository)(nil)
