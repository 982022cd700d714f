package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Production: üretim kaydı. TotalCost, üretim anındaki reçete maliyetinin
// anlık görüntüsüdür; malzeme fiyatları sonradan değişse de sabit kalır.
type Production struct {
	ID               uint `gorm:"primaryKey"`
	ProductID        uint `gorm:"index;not null"`
	Product          Product
	QuantityProduced int             `gorm:"not null"`
	TotalCost        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ProductionDate   time.Time       `gorm:"index;not null"`
	Notes            string          `gorm:"type:text"`
	CreatedAt        time.Time
}
