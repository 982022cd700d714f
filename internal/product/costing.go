package product

import (
	"errors"
	"fmt"

	"atolye-backend/internal/models"
	"atolye-backend/internal/stock"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CalculateCost: reçetedeki her satır için gereken miktar × malzemenin güncel
// alış fiyatı. Cache'lenmez; malzeme fiyatı değişince maliyet de değişir.
// Ürün, reçetesi ve malzemeleriyle yüklenmiş olmalı (LoadWithRecipe).
func CalculateCost(p *models.Product) decimal.Decimal {
	cost := decimal.Zero
	for _, pm := range p.Materials {
		cost = cost.Add(pm.QuantityNeeded.Mul(pm.Material.PurchasePrice))
	}
	return cost
}

// CalculateFinalPrice: maliyet × (1 + kâr marjı / 100).
func CalculateFinalPrice(p *models.Product) decimal.Decimal {
	margin := p.ProfitMargin.Div(decimal.NewFromInt(100))
	return CalculateCost(p).Mul(decimal.NewFromInt(1).Add(margin))
}

// EffectivePrice: satışta geçerli birim fiyat — manuel fiyat doluysa o,
// değilse maliyet + marjdan hesaplanan. Üretim maliyeti bunu DEĞİL,
// CalculateCost'u kullanır; üretim malzeme maliyetini izler, satış fiyatını değil.
func EffectivePrice(p *models.Product) decimal.Decimal {
	if p.FinalPrice != nil {
		return *p.FinalPrice
	}
	return CalculateFinalPrice(p)
}

// LoadWithRecipe: ürünü reçetesi ve reçetedeki malzemelerle birlikte yükler.
func LoadWithRecipe(db *gorm.DB, id uint) (*models.Product, error) {
	var p models.Product
	if err := db.Preload("Materials.Material").Preload("Category").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ürün: %w", stock.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}
