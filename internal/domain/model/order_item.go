package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文時点のスナップショット（後のバリアント価格変更の影響を受けない）
type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64           `gorm:"not null;index" json:"order_id"`
	ProductID           int64           `gorm:"not null;index" json:"product_id"`
	VariantID           int64           `gorm:"not null;index" json:"variant_id"`
	ProductNameSnapshot string          `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	Price               decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
