package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 購入単位（色・サイズごとのSKU）
type Variant struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   int64           `gorm:"not null;index" json:"product_id"`
	SKU         string          `gorm:"type:varchar(100);not null;uniqueIndex" json:"sku"`
	Color       string          `gorm:"type:varchar(50)" json:"color"`
	Size        string          `gorm:"type:varchar(50)" json:"size"`
	ImageURL    string          `gorm:"type:varchar(500)" json:"image_url"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	ImportPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"import_price"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
