package sale

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

type ItemInput struct {
	ProductID uint
	Quantity  int
	UnitPrice *decimal.Decimal // boşsa satış anındaki geçerli fiyat kullanılır
}

type CreateInput struct {
	CustomerID    *uint
	SaleDate      time.Time
	PaymentMethod string
	Notes         string
	Items         []ItemInput
}

// CreateSale: üretimle aynı iki fazlı desen, ama ürün stoğuna karşı. Tüm
// satırlar doğrulanmadan hiçbir yazma yapılmaz. Birim fiyat satış anında
// çözülür ve satıra sabitlenir; sonradan ürün fiyatı değişse de satır değişmez.
func CreateSale(tx *gorm.DB, in CreateInput) (*models.Sale, error) {
	if in.PaymentMethod == "" {
		return nil, fmt.Errorf("payment_method zorunlu: %w", stock.ErrInvalidArgument)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("satışta en az bir satır olmalı: %w", stock.ErrInvalidArgument)
	}

	if in.CustomerID != nil {
		var count int64
		if err := tx.Model(&models.Customer{}).Where("id = ?", *in.CustomerID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fmt.Errorf("müşteri: %w", stock.ErrNotFound)
		}
	}

	// Faz 1: doğrulama. Aynı ürün birden çok satırda geçebilir; stok,
	// satırların toplam talebine karşı denetlenir.
	products := make([]models.Product, len(in.Items))
	requested := make(map[uint]int)
	for i, item := range in.Items {
		if item.ProductID == 0 {
			return nil, fmt.Errorf("product_id zorunlu: %w", stock.ErrInvalidArgument)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("quantity sıfırdan büyük olmalı: %w", stock.ErrInvalidArgument)
		}

		var p models.Product
		if err := stock.LockForUpdate(tx).Preload("Materials.Material").
			First(&p, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("ürün %d: %w", item.ProductID, stock.ErrNotFound)
			}
			return nil, err
		}

		requested[p.ID] += item.Quantity
		if p.StockQuantity < requested[p.ID] {
			return nil, &stock.InsufficientStockError{
				Name:      p.Name,
				Unit:      "adet",
				Needed:    decimal.NewFromInt(int64(requested[p.ID])),
				Available: decimal.NewFromInt(int64(p.StockQuantity)),
			}
		}
		products[i] = p
	}

	// Fiyat çözümleme + toplam
	resolved := make([]decimal.Decimal, len(in.Items))
	total := decimal.Zero
	for i, item := range in.Items {
		var price decimal.Decimal
		if item.UnitPrice != nil {
			price = *item.UnitPrice
		} else {
			price = product.EffectivePrice(&products[i]).Round(2)
		}
		resolved[i] = price
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	total = total.Round(2)

	saleRec := models.Sale{
		CustomerID:    in.CustomerID,
		SaleDate:      in.SaleDate,
		PaymentMethod: in.PaymentMethod,
		TotalAmount:   total,
		Notes:         in.Notes,
	}
	if err := tx.Create(&saleRec).Error; err != nil {
		return nil, err
	}

	// Faz 2: satırlar yazılır, ürün stokları düşülür
	for i, item := range in.Items {
		lineTotal := resolved[i].Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		saleItem := models.SaleItem{
			SaleID:     saleRec.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  resolved[i],
			TotalPrice: lineTotal,
		}
		if err := tx.Create(&saleItem).Error; err != nil {
			return nil, err
		}

		if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity)).Error; err != nil {
			return nil, err
		}
	}

	return &saleRec, nil
}

// DeleteSale: her satırın miktarı ürün stoğuna geri eklenir, sonra satırlar ve
// satış kaydı aynı transaction içinde silinir (framework cascade'ine bırakılmaz).
func DeleteSale(tx *gorm.DB, saleID uint) error {
	var saleRec models.Sale
	if err := tx.First(&saleRec, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("satış: %w", stock.ErrNotFound)
		}
		return err
	}

	var items []models.SaleItem
	if err := tx.Where("sale_id = ?", saleID).Find(&items).Error; err != nil {
		return err
	}

	for _, item := range items {
		if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("sale_id = ?", saleID).Delete(&models.SaleItem{}).Error; err != nil {
		return err
	}

	return tx.Delete(&saleRec).Error
}
