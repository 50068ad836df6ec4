package model

import (
	"fmt"
	"time"
)

// バリアントごとの在庫（1バリアントにつき1件）
type Stock struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	VariantID int64 `gorm:"not null;uniqueIndex" json:"variant_id"`
	Quantity  int64 `gorm:"not null;default:0" json:"quantity"`

	//作成時の数量。InitialQuantity + 履歴の合計 = Quantity
	InitialQuantity int64     `gorm:"not null;default:0" json:"initial_quantity"`
	LastUpdated     time.Time `gorm:"not null" json:"last_updated"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 在庫の増減履歴（追記のみ）
type StockHistory struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StockID        int64     `gorm:"not null;index" json:"stock_id"`
	QuantityChange int64     `gorm:"not null" json:"quantity_change"`
	Reason         string    `gorm:"type:varchar(255);not null" json:"reason"`
	Note           string    `gorm:"type:text" json:"note"`
	CreatedAt      time.Time `gorm:"not null;index" json:"created_at"`
}

// StockAdvisory は在庫数から案内メッセージを作る。
func StockAdvisory(quantity int64, lowThreshold int64) string {
	switch {
	case quantity <= 0:
		return "out of stock"
	case quantity < lowThreshold:
		return "low stock"
	default:
		return fmt.Sprintf("%d in stock", quantity)
	}
}
