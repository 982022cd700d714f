package stock

import (
	"errors"
	"strings"
	"testing"

	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

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

func seedMaterial(t *testing.T, db *gorm.DB, name string, stock string) *models.Material {
	t.Helper()
	m := models.Material{
		Name:          name,
		Unit:          "adet",
		PurchasePrice: decimal.RequireFromString("0.50"),
		StockQuantity: decimal.RequireFromString(stock),
	}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("malzeme oluşturulamadı: %v", err)
	}
	return &m
}

func TestAddStock(t *testing.T) {
	db := newTestDB(t)
	paper := seedMaterial(t, db, "Kağıt", "100")

	price := decimal.RequireFromString("0.55")
	material, movement, err := AddStock(db, paper.ID, decimal.NewFromInt(20), &price, "parti 42")
	if err != nil {
		t.Fatalf("AddStock hata döndü: %v", err)
	}

	if !material.StockQuantity.Equal(decimal.NewFromInt(120)) {
		t.Errorf("stok 120 olmalı, %s bulundu", material.StockQuantity)
	}
	if movement.MovementType != models.MovementIn {
		t.Errorf("hareket tipi IN olmalı, %s bulundu", movement.MovementType)
	}
	if movement.ReferenceType != models.ReferencePurchase {
		t.Errorf("referans tipi purchase olmalı, %s bulundu", movement.ReferenceType)
	}
	if movement.TotalCost == nil || !movement.TotalCost.Equal(decimal.RequireFromString("11.00")) {
		t.Errorf("toplam maliyet 11.00 olmalı, %v bulundu", movement.TotalCost)
	}

	// Veritabanındaki satır da güncellenmiş olmalı, sadece dönen kopya değil.
	var fresh models.Material
	if err := db.First(&fresh, paper.ID).Error; err != nil {
		t.Fatalf("malzeme okunamadı: %v", err)
	}
	if !fresh.StockQuantity.Equal(decimal.NewFromInt(120)) {
		t.Errorf("kalıcı stok 120 olmalı, %s bulundu", fresh.StockQuantity)
	}

	// 120 > 50 alarm eşiği; düşük stok listesine girmez.
	db.Model(&models.Material{}).Where("id = ?", paper.ID).
		Update("min_stock_alert", decimal.NewFromInt(50))
	low, err := LowStock(db)
	if err != nil {
		t.Fatalf("LowStock hata döndü: %v", err)
	}
	if len(low) != 0 {
		t.Errorf("düşük stok listesi boş olmalı, %d malzeme bulundu", len(low))
	}
}

func TestAddStockRejectsNonPositiveQuantity(t *testing.T) {
	db := newTestDB(t)
	paper := seedMaterial(t, db, "Kağıt", "100")

	_, _, err := AddStock(db, paper.ID, decimal.Zero, nil, "")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("ErrInvalidArgument beklenirdi, %v bulundu", err)
	}

	var count int64
	db.Model(&models.StockMovement{}).Count(&count)
	if count != 0 {
		t.Errorf("hareket yazılmamalıydı, %d satır bulundu", count)
	}
}

func TestAddStockUnknownMaterial(t *testing.T) {
	db := newTestDB(t)

	_, _, err := AddStock(db, 999, decimal.NewFromInt(5), nil, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ErrNotFound beklenirdi, %v bulundu", err)
	}
}

func TestApplyMovementLedger(t *testing.T) {
	db := newTestDB(t)
	wool := seedMaterial(t, db, "Yün", "10")

	// IN düzeltmesi stoğu artırır.
	if _, err := ApplyMovement(db, MovementInput{
		MaterialID:   wool.ID,
		MovementType: models.MovementIn,
		Quantity:     decimal.RequireFromString("2.500"),
		Description:  "sayım fazlası",
	}); err != nil {
		t.Fatalf("IN hareketi hata döndü: %v", err)
	}

	// OUT düzeltmesi stoğu azaltır.
	if _, err := ApplyMovement(db, MovementInput{
		MaterialID:   wool.ID,
		MovementType: models.MovementOut,
		Quantity:     decimal.RequireFromString("0.500"),
		Description:  "fire",
	}); err != nil {
		t.Fatalf("OUT hareketi hata döndü: %v", err)
	}

	var fresh models.Material
	db.First(&fresh, wool.ID)
	if !fresh.StockQuantity.Equal(decimal.NewFromInt(12)) {
		t.Errorf("stok 12 olmalı, %s bulundu", fresh.StockQuantity)
	}

	// Defter kuralı: güncel stok = başlangıç + Σ(IN) − Σ(OUT).
	var movements []models.StockMovement
	db.Where("material_id = ?", wool.ID).Find(&movements)
	ledger := decimal.NewFromInt(10)
	for _, mv := range movements {
		if mv.MovementType == models.MovementIn {
			ledger = ledger.Add(mv.Quantity)
		} else {
			ledger = ledger.Sub(mv.Quantity)
		}
	}
	if !ledger.Equal(fresh.StockQuantity) {
		t.Errorf("defter %s ile stok %s tutmuyor", ledger, fresh.StockQuantity)
	}
}

func TestApplyMovementRejectsOverdraw(t *testing.T) {
	db := newTestDB(t)
	wool := seedMaterial(t, db, "Yün", "3")

	_, err := ApplyMovement(db, MovementInput{
		MaterialID:   wool.ID,
		MovementType: models.MovementOut,
		Quantity:     decimal.NewFromInt(5),
	})

	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("InsufficientStockError beklenirdi, %v bulundu", err)
	}
	if !insufficient.Needed.Equal(decimal.NewFromInt(5)) || !insufficient.Available.Equal(decimal.NewFromInt(3)) {
		t.Errorf("hata detayı yanlış: %+v", insufficient)
	}

	// Reddedilen hareket ne stok ne defter değiştirmez.
	var fresh models.Material
	db.First(&fresh, wool.ID)
	if !fresh.StockQuantity.Equal(decimal.NewFromInt(3)) {
		t.Errorf("stok 3 kalmalıydı, %s bulundu", fresh.StockQuantity)
	}
	var count int64
	db.Model(&models.StockMovement{}).Count(&count)
	if count != 0 {
		t.Errorf("hareket yazılmamalıydı, %d satır bulundu", count)
	}
}

func TestLowStock(t *testing.T) {
	db := newTestDB(t)

	low := models.Material{
		Name:          "Boncuk",
		Unit:          "adet",
		PurchasePrice: decimal.RequireFromString("0.10"),
		StockQuantity: decimal.NewFromInt(5),
		MinStockAlert: decimal.NewFromInt(10),
	}
	ok := models.Material{
		Name:          "İp",
		Unit:          "metre",
		PurchasePrice: decimal.RequireFromString("1.00"),
		StockQuantity: decimal.NewFromInt(50),
		MinStockAlert: decimal.NewFromInt(10),
	}
	atThreshold := models.Material{
		Name:          "Ahşap",
		Unit:          "adet",
		PurchasePrice: decimal.RequireFromString("2.00"),
		StockQuantity: decimal.NewFromInt(10),
		MinStockAlert: decimal.NewFromInt(10),
	}
	for _, m := range []*models.Material{&low, &ok, &atThreshold} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("malzeme oluşturulamadı: %v", err)
		}
	}

	materials, err := LowStock(db)
	if err != nil {
		t.Fatalf("LowStock hata döndü: %v", err)
	}
	if len(materials) != 2 {
		t.Fatalf("2 malzeme beklenirdi, %d bulundu", len(materials))
	}
	// İsme göre sıralı: Ahşap, Boncuk.
	if materials[0].Name != "Ahşap" || materials[1].Name != "Boncuk" {
		t.Errorf("beklenmeyen sıralama: %s, %s", materials[0].Name, materials[1].Name)
	}
}
