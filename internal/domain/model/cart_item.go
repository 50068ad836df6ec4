package model

import "time"

// カートの明細
// 同じ(cart, product, variant)は1行にまとめて数量を加算する。
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"not null;uniqueIndex:idx_cart_items_line,priority:1" json:"cart_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_cart_items_line,priority:2" json:"product_id"`
	VariantID int64     `gorm:"not null;uniqueIndex:idx_cart_items_line,priority:3;index" json:"variant_id"`
	Quantity  int64     `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
