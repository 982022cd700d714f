package production

import (
	"errors"
	"fmt"
	"time"

	"atolye-backend/internal/models"
	"atolye-backend/internal/product"
	"atolye-backend/internal/stock"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateInput struct {
	ProductID        uint
	QuantityProduced int
	ProductionDate   time.Time
	Notes            string
}

// CreateProduction iki fazlıdır: önce salt-okunur fizibilite kontrolü (tüm
// reçete denetlenir, hiçbir yazma yapılmaz), sonra koşulsuz mutasyon. Reçetenin
// 3. satırında stok yetmiyorsa 1-2. satırlar da dokunulmamış kalır. Okunan
// malzeme ve ürün satırları commit'e kadar kilitli tutulur; iki eşzamanlı
// üretim aynı stoğu birlikte eksiye çekemez.
func CreateProduction(tx *gorm.DB, in CreateInput) (*models.Production, error) {
	if in.ProductID == 0 {
		return nil, fmt.Errorf("product_id zorunlu: %w", stock.ErrInvalidArgument)
	}
	if in.QuantityProduced <= 0 {
		return nil, fmt.Errorf("quantity_produced sıfırdan büyük olmalı: %w", stock.ErrInvalidArgument)
	}

	var prod models.Product
	if err := stock.LockForUpdate(tx).First(&prod, in.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ürün: %w", stock.ErrNotFound)
		}
		return nil, err
	}

	var recipe []models.ProductMaterial
	if err := tx.Where("product_id = ?", prod.ID).Order("id asc").Find(&recipe).Error; err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(int64(in.QuantityProduced))

	// Faz 1: fizibilite
	materials := make([]models.Material, len(recipe))
	needed := make([]decimal.Decimal, len(recipe))
	for i, pm := range recipe {
		var m models.Material
		if err := stock.LockForUpdate(tx).First(&m, pm.MaterialID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("reçetedeki malzeme: %w", stock.ErrNotFound)
			}
			return nil, err
		}
		need := pm.QuantityNeeded.Mul(qty)
		if m.StockQuantity.LessThan(need) {
			return nil, &stock.InsufficientStockError{
				Name:      m.Name,
				Unit:      m.Unit,
				Needed:    need,
				Available: m.StockQuantity,
			}
		}
		materials[i] = m
		needed[i] = need
	}

	// Maliyet anlık görüntüsü: kilitli okunan fiyatlardan, maliyet motoruyla.
	// Üretim maliyeti satış fiyatını değil, reçete maliyetini izler.
	costed := prod
	costed.Materials = make([]models.ProductMaterial, len(recipe))
	for i, pm := range recipe {
		pm.Material = materials[i]
		costed.Materials[i] = pm
	}
	totalCost := product.CalculateCost(&costed).Mul(qty).Round(2)

	production := models.Production{
		ProductID:        prod.ID,
		QuantityProduced: in.QuantityProduced,
		TotalCost:        totalCost,
		ProductionDate:   in.ProductionDate,
		Notes:            in.Notes,
	}
	if err := tx.Create(&production).Error; err != nil {
		return nil, err
	}

	// Faz 2: mutasyon — fizibilite geçti, artık koşulsuz uygulanır
	for i := range recipe {
		newQty := materials[i].StockQuantity.Sub(needed[i])
		if err := tx.Model(&models.Material{}).Where("id = ?", materials[i].ID).
			Update("stock_quantity", newQty).Error; err != nil {
			return nil, err
		}

		refID := production.ID
		movement := models.StockMovement{
			MaterialID:    materials[i].ID,
			MovementType:  models.MovementOut,
			Quantity:      needed[i],
			Description:   fmt.Sprintf("%d adet %s üretimi", in.QuantityProduced, prod.Name),
			ReferenceID:   &refID,
			ReferenceType: models.ReferenceProduction,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return nil, err
		}
	}

	if err := tx.Model(&models.Product{}).Where("id = ?", prod.ID).
		Update("stock_quantity", prod.StockQuantity+in.QuantityProduced).Error; err != nil {
		return nil, err
	}

	return &production, nil
}

// DeleteProduction: üretimin stok hareketlerini tersine oynatır — her OUT
// hareketinin miktarı malzemeye geri eklenir ve hareket silinir — sonra ürün
// stoğu düşülüp üretim kaydı silinir. CreateProduction'ın tam tersi;
// create + delete sonrası tüm stoklar başlangıç değerlerine döner.
func DeleteProduction(tx *gorm.DB, productionID uint) error {
	var production models.Production
	if err := tx.First(&production, productionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("üretim: %w", stock.ErrNotFound)
		}
		return err
	}

	var movements []models.StockMovement
	if err := tx.Where("reference_type = ? AND reference_id = ?",
		models.ReferenceProduction, productionID).Find(&movements).Error; err != nil {
		return err
	}

	for _, mv := range movements {
		var m models.Material
		if err := stock.LockForUpdate(tx).First(&m, mv.MaterialID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Material{}).Where("id = ?", m.ID).
			Update("stock_quantity", m.StockQuantity.Add(mv.Quantity)).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.StockMovement{}, mv.ID).Error; err != nil {
			return err
		}
	}

	var prod models.Product
	if err := stock.LockForUpdate(tx).First(&prod, production.ProductID).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Product{}).Where("id = ?", prod.ID).
		Update("stock_quantity", prod.StockQuantity-production.QuantityProduced).Error; err != nil {
		return err
	}

	return tx.Delete(&production).Error
}
