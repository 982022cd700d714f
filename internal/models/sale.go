package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale: satış kaydı. TotalAmount satırların toplamıdır. Satırlar satışa aittir;
// satış silinince aynı transaction içinde satırları da silinir.
type Sale struct {
	ID            uint  `gorm:"primaryKey"`
	CustomerID    *uint `gorm:"index"`
	Customer      *Customer
	SaleDate      time.Time       `gorm:"index;not null"`
	PaymentMethod string          `gorm:"size:50;not null"` // nakit, kart, havale vs.
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Notes         string          `gorm:"type:text"`
	Items         []SaleItem
	CreatedAt     time.Time
}

// SaleItem: satış satırı. UnitPrice satış anında sabitlenir, sonradan
// ürün fiyatı değişse de yeniden hesaplanmaz.
type SaleItem struct {
	ID         uint `gorm:"primaryKey"`
	SaleID     uint `gorm:"index;not null"`
	ProductID  uint `gorm:"index;not null"`
	Product    Product
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt  time.Time
}
