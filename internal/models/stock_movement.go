package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

type ReferenceType string

const (
	ReferencePurchase   ReferenceType = "purchase"
	ReferenceProduction ReferenceType = "production"
	ReferenceSale       ReferenceType = "sale"
	ReferenceAdjustment ReferenceType = "adjustment" // manuel düzeltme hareketi
)

// StockMovement: hammadde stok defteri. Append-only; yalnızca üretim/satış
// silme işlemleri kendi hareketlerini geri alırken siler.
// Defter kuralı: bir malzemenin güncel stoğu = başlangıç + Σ(IN) − Σ(OUT).
type StockMovement struct {
	ID            uint `gorm:"primaryKey"`
	MaterialID    uint `gorm:"index;not null"`
	Material      Material
	MovementType  MovementType     `gorm:"size:20;not null"`
	Quantity      decimal.Decimal  `gorm:"type:decimal(10,3);not null"`
	UnitPrice     *decimal.Decimal `gorm:"type:decimal(10,2)"`
	TotalCost     *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Description   string           `gorm:"type:text"`
	ReferenceID   *uint            `gorm:"index"` // production/sale id (reference_type'a göre)
	ReferenceType ReferenceType    `gorm:"size:50;index"`
	CreatedAt     time.Time
}
