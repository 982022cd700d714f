package product

import (
	"testing"

	"atolye-backend/internal/models"

	"github.com/shopspring/decimal"
)

func testProduct() *models.Product {
	// Birim maliyet: 2 × 10.00 + 3 × 5.00 = 35.00
	return &models.Product{
		Name:         "Ahşap Kutu",
		ProfitMargin: decimal.NewFromInt(20),
		Materials: []models.ProductMaterial{
			{
				QuantityNeeded: decimal.NewFromInt(2),
				Material:       models.Material{Name: "Ahşap", PurchasePrice: decimal.RequireFromString("10.00")},
			},
			{
				QuantityNeeded: decimal.NewFromInt(3),
				Material:       models.Material{Name: "Menteşe", PurchasePrice: decimal.RequireFromString("5.00")},
			},
		},
	}
}

func TestCalculateCost(t *testing.T) {
	p := testProduct()

	cost := CalculateCost(p)
	if !cost.Equal(decimal.RequireFromString("35.00")) {
		t.Errorf("maliyet 35.00 olmalı, %s bulundu", cost)
	}
}

func TestCalculateCostEmptyRecipe(t *testing.T) {
	p := &models.Product{Name: "Reçetesiz"}

	cost := CalculateCost(p)
	if !cost.Equal(decimal.Zero) {
		t.Errorf("reçetesiz ürünün maliyeti 0 olmalı, %s bulundu", cost)
	}
}

func TestCalculateFinalPrice(t *testing.T) {
	p := testProduct()

	// 35.00 × 1.20 = 42.00
	price := CalculateFinalPrice(p)
	if !price.Equal(decimal.RequireFromString("42.00")) {
		t.Errorf("fiyat 42.00 olmalı, %s bulundu", price)
	}
}

func TestCalculateFinalPriceFractionalMargin(t *testing.T) {
	p := testProduct()
	p.ProfitMargin = decimal.RequireFromString("12.5")

	// 35.00 × 1.125 = 39.375; yuvarlama çağırana bırakılır.
	price := CalculateFinalPrice(p)
	if !price.Round(2).Equal(decimal.RequireFromString("39.38")) {
		t.Errorf("fiyat 39.38 olmalı, %s bulundu", price.Round(2))
	}
}

func TestEffectivePrice(t *testing.T) {
	p := testProduct()

	// Manuel fiyat yokken hesaplanan fiyat geçerli.
	if got := EffectivePrice(p); !got.Equal(decimal.RequireFromString("42.00")) {
		t.Errorf("geçerli fiyat 42.00 olmalı, %s bulundu", got)
	}

	// Manuel fiyat hesaplananı ezer.
	manual := decimal.RequireFromString("39.99")
	p.FinalPrice = &manual
	if got := EffectivePrice(p); !got.Equal(manual) {
		t.Errorf("geçerli fiyat 39.99 olmalı, %s bulundu", got)
	}
}
