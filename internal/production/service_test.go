package production

import (
	"errors"
	"strings"
	"testing"
	"time"

	"atolye-backend/internal/database"
	"atolye-backend/internal/models"
	"atolye-backend/internal/stock"

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

// Kartpostal: 1 birim için 2 kağıt gerekir. Kağıt birim fiyatı 0.50.
func seedCardProduct(t *testing.T, db *gorm.DB, paperStock string) (*models.Product, *models.Material) {
	t.Helper()

	paper := models.Material{
		Name:          "Kağıt",
		Unit:          "adet",
		PurchasePrice: decimal.RequireFromString("0.50"),
		StockQuantity: decimal.RequireFromString(paperStock),
	}
	if err := db.Create(&paper).Error; err != nil {
		t.Fatalf("malzeme oluşturulamadı: %v", err)
	}

	card := models.Product{
		Name:         "Kartpostal",
		ProfitMargin: decimal.NewFromInt(50),
	}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}

	recipe := models.ProductMaterial{
		ProductID:      card.ID,
		MaterialID:     paper.ID,
		QuantityNeeded: decimal.NewFromInt(2),
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("reçete oluşturulamadı: %v", err)
	}

	return &card, &paper
}

func TestCreateProduction(t *testing.T) {
	db := newTestDB(t)
	card, paper := seedCardProduct(t, db, "10")

	prod, err := CreateProduction(db, CreateInput{
		ProductID:        card.ID,
		QuantityProduced: 3,
		ProductionDate:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateProduction hata döndü: %v", err)
	}

	// Maliyet anlık görüntüsü: 3 × (2 × 0.50) = 3.00
	if !prod.TotalCost.Equal(decimal.RequireFromString("3.00")) {
		t.Errorf("toplam maliyet 3.00 olmalı, %s bulundu", prod.TotalCost)
	}

	// Malzeme stoğu 10 − 6 = 4, ürün stoğu 0 + 3 = 3.
	var freshPaper models.Material
	db.First(&freshPaper, paper.ID)
	if !freshPaper.StockQuantity.Equal(decimal.NewFromInt(4)) {
		t.Errorf("kağıt stoğu 4 olmalı, %s bulundu", freshPaper.StockQuantity)
	}
	var freshCard models.Product
	db.First(&freshCard, card.ID)
	if freshCard.StockQuantity != 3 {
		t.Errorf("ürün stoğu 3 olmalı, %d bulundu", freshCard.StockQuantity)
	}

	// Üretime bağlı OUT hareketi yazılmış olmalı.
	var movements []models.StockMovement
	db.Where("reference_type = ? AND reference_id = ?", models.ReferenceProduction, prod.ID).
		Find(&movements)
	if len(movements) != 1 {
		t.Fatalf("1 hareket beklenirdi, %d bulundu", len(movements))
	}
	if movements[0].MovementType != models.MovementOut || !movements[0].Quantity.Equal(decimal.NewFromInt(6)) {
		t.Errorf("beklenmeyen hareket: %+v", movements[0])
	}
}

func TestCreateProductionInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	card, paper := seedCardProduct(t, db, "3")

	// 2 birim için 4 kağıt gerekir, 3 var.
	_, err := CreateProduction(db, CreateInput{
		ProductID:        card.ID,
		QuantityProduced: 2,
		ProductionDate:   time.Now(),
	})

	var insufficient *stock.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("InsufficientStockError beklenirdi, %v bulundu", err)
	}
	if !insufficient.Needed.Equal(decimal.NewFromInt(4)) || !insufficient.Available.Equal(decimal.NewFromInt(3)) {
		t.Errorf("hata detayı yanlış: %+v", insufficient)
	}

	// Reddedilen üretim hiçbir iz bırakmaz: stok, ürün, hareket, kayıt.
	var freshPaper models.Material
	db.First(&freshPaper, paper.ID)
	if !freshPaper.StockQuantity.Equal(decimal.NewFromInt(3)) {
		t.Errorf("kağıt stoğu 3 kalmalıydı, %s bulundu", freshPaper.StockQuantity)
	}
	var freshCard models.Product
	db.First(&freshCard, card.ID)
	if freshCard.StockQuantity != 0 {
		t.Errorf("ürün stoğu 0 kalmalıydı, %d bulundu", freshCard.StockQuantity)
	}
	var movementCount, productionCount int64
	db.Model(&models.StockMovement{}).Count(&movementCount)
	db.Model(&models.Production{}).Count(&productionCount)
	if movementCount != 0 || productionCount != 0 {
		t.Errorf("iz bırakılmamalıydı: %d hareket, %d üretim", movementCount, productionCount)
	}
}

func TestCreateProductionEmptyRecipe(t *testing.T) {
	db := newTestDB(t)

	empty := models.Product{Name: "Reçetesiz"}
	if err := db.Create(&empty).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}

	// Reçetesiz ürün hiçbir malzeme tüketmeden, sıfır maliyetle üretilir.
	prod, err := CreateProduction(db, CreateInput{
		ProductID:        empty.ID,
		QuantityProduced: 5,
		ProductionDate:   time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateProduction hata döndü: %v", err)
	}
	if !prod.TotalCost.Equal(decimal.Zero) {
		t.Errorf("maliyet 0 olmalı, %s bulundu", prod.TotalCost)
	}

	var fresh models.Product
	db.First(&fresh, empty.ID)
	if fresh.StockQuantity != 5 {
		t.Errorf("ürün stoğu 5 olmalı, %d bulundu", fresh.StockQuantity)
	}
	var movementCount int64
	db.Model(&models.StockMovement{}).Count(&movementCount)
	if movementCount != 0 {
		t.Errorf("hareket yazılmamalıydı, %d bulundu", movementCount)
	}
}

func TestDeleteProductionRoundTrip(t *testing.T) {
	db := newTestDB(t)
	card, paper := seedCardProduct(t, db, "10")

	prod, err := CreateProduction(db, CreateInput{
		ProductID:        card.ID,
		QuantityProduced: 3,
		ProductionDate:   time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateProduction hata döndü: %v", err)
	}

	if err := DeleteProduction(db, prod.ID); err != nil {
		t.Fatalf("DeleteProduction hata döndü: %v", err)
	}

	// Üret + sil, hiç üretilmemiş durumla birebir aynı duruma döner.
	var freshPaper models.Material
	db.First(&freshPaper, paper.ID)
	if !freshPaper.StockQuantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("kağıt stoğu 10 olmalı, %s bulundu", freshPaper.StockQuantity)
	}
	var freshCard models.Product
	db.First(&freshCard, card.ID)
	if freshCard.StockQuantity != 0 {
		t.Errorf("ürün stoğu 0 olmalı, %d bulundu", freshCard.StockQuantity)
	}
	var movementCount, productionCount int64
	db.Model(&models.StockMovement{}).Count(&movementCount)
	db.Model(&models.Production{}).Count(&productionCount)
	if movementCount != 0 || productionCount != 0 {
		t.Errorf("kayıtlar silinmeliydi: %d hareket, %d üretim", movementCount, productionCount)
	}
}

func TestDeleteProductionNotFound(t *testing.T) {
	db := newTestDB(t)

	err := DeleteProduction(db, 999)
	if !errors.Is(err, stock.ErrNotFound) {
		t.Fatalf("ErrNotFound beklenirdi, %v bulundu", err)
	}
}
