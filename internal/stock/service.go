package stock

import (
	"errors"
	"fmt"

	"atolye-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockForUpdate: doğrulama ile mutasyon arasında satırın başka transaction
// tarafından değiştirilmemesi için satır kilidi. sqlite (test) FOR UPDATE
// desteklemez, orada transaction izolasyonu yeterli.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// AddStock: malzeme stoğunu artırır ve purchase referanslı IN hareketi yazar.
// İki yazma aynı tx içindedir; biri olmadan diğeri commit edilmez.
func AddStock(tx *gorm.DB, materialID uint, quantity decimal.Decimal, unitPrice *decimal.Decimal, description string) (*models.Material, *models.StockMovement, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, nil, fmt.Errorf("miktar sıfırdan büyük olmalı: %w", ErrInvalidArgument)
	}

	var material models.Material
	if err := LockForUpdate(tx).First(&material, materialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("malzeme: %w", ErrNotFound)
		}
		return nil, nil, err
	}

	material.StockQuantity = material.StockQuantity.Add(quantity)
	if err := tx.Model(&models.Material{}).Where("id = ?", material.ID).
		Update("stock_quantity", material.StockQuantity).Error; err != nil {
		return nil, nil, err
	}

	if description == "" {
		description = "Stok girişi"
	}

	var totalCost *decimal.Decimal
	if unitPrice != nil {
		tc := quantity.Mul(*unitPrice).Round(2)
		totalCost = &tc
	}

	movement := models.StockMovement{
		MaterialID:    material.ID,
		MovementType:  models.MovementIn,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		TotalCost:     totalCost,
		Description:   description,
		ReferenceType: models.ReferencePurchase,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, nil, err
	}

	return &material, &movement, nil
}

type MovementInput struct {
	MaterialID   uint
	MovementType models.MovementType
	Quantity     decimal.Decimal
	UnitPrice    *decimal.Decimal
	TotalCost    *decimal.Decimal
	Description  string
}

// ApplyMovement: manuel stok düzeltmesi (sayım farkı, fire vs.). Hareket kaydı
// ile malzeme stoğu birlikte güncellenir; defter kuralı (stok = Σ hareket)
// manuel düzeltmelerde de bozulmaz. OUT hareketi stoğu eksiye düşüremez.
func ApplyMovement(tx *gorm.DB, in MovementInput) (*models.StockMovement, error) {
	if in.MovementType != models.MovementIn && in.MovementType != models.MovementOut {
		return nil, fmt.Errorf("hareket tipi IN veya OUT olmalı: %w", ErrInvalidArgument)
	}
	if in.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("miktar sıfırdan büyük olmalı: %w", ErrInvalidArgument)
	}

	var material models.Material
	if err := LockForUpdate(tx).First(&material, in.MaterialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("malzeme: %w", ErrNotFound)
		}
		return nil, err
	}

	if in.MovementType == models.MovementOut {
		if material.StockQuantity.LessThan(in.Quantity) {
			return nil, &InsufficientStockError{
				Name:      material.Name,
				Unit:      material.Unit,
				Needed:    in.Quantity,
				Available: material.StockQuantity,
			}
		}
		material.StockQuantity = material.StockQuantity.Sub(in.Quantity)
	} else {
		material.StockQuantity = material.StockQuantity.Add(in.Quantity)
	}

	if err := tx.Model(&models.Material{}).Where("id = ?", material.ID).
		Update("stock_quantity", material.StockQuantity).Error; err != nil {
		return nil, err
	}

	totalCost := in.TotalCost
	if totalCost == nil && in.UnitPrice != nil {
		tc := in.Quantity.Mul(*in.UnitPrice).Round(2)
		totalCost = &tc
	}

	movement := models.StockMovement{
		MaterialID:    in.MaterialID,
		MovementType:  in.MovementType,
		Quantity:      in.Quantity,
		UnitPrice:     in.UnitPrice,
		TotalCost:     totalCost,
		Description:   in.Description,
		ReferenceType: models.ReferenceAdjustment,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, err
	}

	return &movement, nil
}

// LowStock: stoğu alarm eşiğine düşmüş veya altına inmiş malzemeler.
// Deterministik çıktı için isme göre sıralı.
func LowStock(db *gorm.DB) ([]models.Material, error) {
	var materials []models.Material
	if err := db.Preload("Supplier").
		Where("stock_quantity <= min_stock_alert").
		Order("name asc").
		Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}
