package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product: satılan ürün. Birim maliyeti reçetesinden (ProductMaterial) türetilir,
// satış fiyatı maliyet + kâr marjından hesaplanır; FinalPrice doluysa o geçerlidir.
type Product struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:255;not null"`
	Description   string `gorm:"type:text"`
	CategoryID    *uint  `gorm:"index"`
	Category      *Category
	ProfitMargin  decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0"` // yüzde
	FinalPrice    *decimal.Decimal `gorm:"type:decimal(10,2)"`                   // manuel fiyat, boşsa hesaplanan kullanılır
	StockQuantity int              `gorm:"not null;default:0"`
	Materials     []ProductMaterial
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductMaterial: ürün reçetesi satırı — bir birim ürün için gereken malzeme miktarı.
// Ürüne aittir; ürün silinince satırları da aynı transaction içinde silinir.
type ProductMaterial struct {
	ID             uint `gorm:"primaryKey"`
	ProductID      uint `gorm:"index;not null"`
	MaterialID     uint `gorm:"index;not null"`
	Material       Material
	QuantityNeeded decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	CreatedAt      time.Time
}
