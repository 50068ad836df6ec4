package repository

import (
	"context"

	"github.com/NghiaPh49487/Back-End-DATN/internal/domain/model"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, translateError(err)
	}
	return p, nil
}

// 論理削除済みは見つからない扱い
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return model.Product{}, translateError(err)
	}
	return p, nil
}

type VariantGormRepository struct {
	db *gorm.DB
}

func NewVariantGormRepository(db *gorm.DB) *VariantGormRepository {
	return &VariantGormRepository{db: db}
}

// SKU重複は repository.ErrDuplicate
func (r *VariantGormRepository) Create(ctx context.Context, v model.Variant) (model.Variant, error) {
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		return model.Variant{}, translateError(err)
	}
	return v, nil
}

func (r *VariantGormRepository) FindByID(ctx context.Context, id int64) (model.Variant, error) {
	var v model.Variant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return model.Variant{}, translateError(err)
	}
	return v, nil
}

type UserGormRepository struct {
	db *gorm.DB
}

// DI
func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

// IDでユーザーを1件取得
func (r *UserGormRepository) FindByID(ctx context.Context, userID int64) (model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error; err != nil {
		return model.User{}, translateError(err)
	}
	return u, nil
}
