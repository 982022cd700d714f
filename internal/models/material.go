package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material: üretimde kullanılan hammadde. Stok miktarı yalnızca stok hareketi
// üreten operasyonlar üzerinden değişir (internal/stock), doğrudan güncellenmez.
type Material struct {
	ID            uint            `gorm:"primaryKey"`
	Name          string          `gorm:"size:255;not null"`
	Unit          string          `gorm:"size:50;not null"` // kg, adet, metre vs.
	PurchasePrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StockQuantity decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	MinStockAlert decimal.Decimal `gorm:"type:decimal(10,3);default:0"`
	SupplierID    *uint           `gorm:"index"`
	Supplier      *Supplier
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
