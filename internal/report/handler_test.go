package report

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migration hatası: %v", err)
	}
	return db
}

func TestInventoryReport(t *testing.T) {
	database.DB = newTestDB(t)

	// Malzemeler: 5 × 10.00 = 50.00 ve 2 × 0.10 = 0.20 (düşük stokta).
	wood := models.Material{
		Name:          "Ahşap",
		Unit:          "adet",
		PurchasePrice: decimal.RequireFromString("10.00"),
		StockQuantity: decimal.NewFromInt(5),
	}
	beads := models.Material{
		Name:          "Boncuk",
		Unit:          "adet",
		PurchasePrice: decimal.RequireFromString("0.10"),
		StockQuantity: decimal.NewFromInt(2),
		MinStockAlert: decimal.NewFromInt(10),
	}
	for _, m := range []*models.Material{&wood, &beads} {
		if err := database.DB.Create(m).Error; err != nil {
			t.Fatalf("malzeme oluşturulamadı: %v", err)
		}
	}

	// Manuel fiyatlı ürün: 3 × 8.00 = 24.00.
	manualPrice := decimal.RequireFromString("8.00")
	box := models.Product{
		Name:          "Kutu",
		FinalPrice:    &manualPrice,
		StockQuantity: 3,
	}
	if err := database.DB.Create(&box).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}

	// Reçeteden fiyatlanan ürün: maliyet 2 × 10.00 = 20.00, %20 marj → 24.00; 1 × 24.00.
	frame := models.Product{
		Name:          "Çerçeve",
		ProfitMargin:  decimal.NewFromInt(20),
		StockQuantity: 1,
	}
	if err := database.DB.Create(&frame).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}
	recipe := models.ProductMaterial{
		ProductID:      frame.ID,
		MaterialID:     wood.ID,
		QuantityNeeded: decimal.NewFromInt(2),
	}
	if err := database.DB.Create(&recipe).Error; err != nil {
		t.Fatalf("reçete oluşturulamadı: %v", err)
	}

	app := fiber.New()
	app.Get("/api/reports/inventory", InventoryReportHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/reports/inventory", nil))
	if err != nil {
		t.Fatalf("istek başarısız: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("200 beklenirdi, %d bulundu", resp.StatusCode)
	}

	var body struct {
		Materials []struct {
			Name       string          `json:"name"`
			StockValue decimal.Decimal `json:"stock_value"`
		} `json:"materials"`
		Products []struct {
			Name           string          `json:"name"`
			EffectivePrice decimal.Decimal `json:"effective_price"`
			StockValue     decimal.Decimal `json:"stock_value"`
		} `json:"products"`
		LowStockMaterials []struct {
			Name string `json:"name"`
		} `json:"low_stock_materials"`
		Summary struct {
			TotalMaterials      int             `json:"total_materials"`
			TotalProducts       int             `json:"total_products"`
			LowStockCount       int             `json:"low_stock_count"`
			MaterialsValue      decimal.Decimal `json:"materials_value"`
			ProductsValue       decimal.Decimal `json:"products_value"`
			TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
		} `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("yanıt çözümlenemedi: %v", err)
	}

	if body.Summary.TotalMaterials != 2 || body.Summary.TotalProducts != 2 {
		t.Errorf("2 malzeme / 2 ürün beklenirdi, %d / %d bulundu",
			body.Summary.TotalMaterials, body.Summary.TotalProducts)
	}
	if body.Summary.LowStockCount != 1 || len(body.LowStockMaterials) != 1 ||
		body.LowStockMaterials[0].Name != "Boncuk" {
		t.Errorf("düşük stokta yalnızca Boncuk beklenirdi: %+v", body.LowStockMaterials)
	}
	if !body.Summary.MaterialsValue.Equal(decimal.RequireFromString("50.20")) {
		t.Errorf("malzeme değeri 50.20 olmalı, %s bulundu", body.Summary.MaterialsValue)
	}
	if !body.Summary.ProductsValue.Equal(decimal.RequireFromString("48.00")) {
		t.Errorf("ürün değeri 48.00 olmalı, %s bulundu", body.Summary.ProductsValue)
	}
	if !body.Summary.TotalInventoryValue.Equal(decimal.RequireFromString("98.20")) {
		t.Errorf("toplam değer 98.20 olmalı, %s bulundu", body.Summary.TotalInventoryValue)
	}

	// Reçeteli ürünün fiyatı manuel fiyat yokken maliyet + marjdan türetilir.
	for _, p := range body.Products {
		if p.Name == "Çerçeve" && !p.EffectivePrice.Equal(decimal.RequireFromString("24.00")) {
			t.Errorf("Çerçeve fiyatı 24.00 olmalı, %s bulundu", p.EffectivePrice)
		}
	}
}
