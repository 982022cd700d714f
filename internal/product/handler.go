package product

import (
	"fmt"

	"atolye-backend/internal/database"
	"atolye-backend/internal/models"
	"atolye-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// -------------------------
// Request/Response Types
// -------------------------

type MaterialInput struct {
	MaterialID     uint            `json:"material_id"`
	QuantityNeeded decimal.Decimal `json:"quantity_needed"`
}

type CreateProductRequest struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	CategoryID    *uint            `json:"category_id"`
	ProfitMargin  decimal.Decimal  `json:"profit_margin"`
	FinalPrice    *decimal.Decimal `json:"final_price"`
	StockQuantity int              `json:"stock_quantity"` // başlangıç stoğu
	Materials     []MaterialInput  `json:"materials"`
}

type UpdateProductRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	CategoryID   *uint            `json:"category_id"`
	ProfitMargin *decimal.Decimal `json:"profit_margin"`
	FinalPrice   *decimal.Decimal `json:"final_price"`
	Materials    *[]MaterialInput `json:"materials"`
	// Stok alanı bilinçli olarak yok: ürün stoğu yalnızca üretim/satış ile değişir.
}

type ProductMaterialResponse struct {
	ID             uint            `json:"id"`
	MaterialID     uint            `json:"material_id"`
	MaterialName   string          `json:"material_name"`
	MaterialUnit   string          `json:"material_unit"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	QuantityNeeded decimal.Decimal `json:"quantity_needed"`
}

type ProductResponse struct {
	ID              uint                      `json:"id"`
	Name            string                    `json:"name"`
	Description     string                    `json:"description"`
	CategoryID      *uint                     `json:"category_id"`
	CategoryName    string                    `json:"category_name,omitempty"`
	ProfitMargin    decimal.Decimal           `json:"profit_margin"`
	FinalPrice      *decimal.Decimal          `json:"final_price"`
	CalculatedCost  decimal.Decimal           `json:"calculated_cost"`
	CalculatedPrice decimal.Decimal           `json:"calculated_price"`
	EffectivePrice  decimal.Decimal           `json:"effective_price"`
	StockQuantity   int                       `json:"stock_quantity"`
	Materials       []ProductMaterialResponse `json:"materials"`
}

func ToProductResponse(p *models.Product) ProductResponse {
	resp := ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		CategoryID:      p.CategoryID,
		ProfitMargin:    p.ProfitMargin,
		FinalPrice:      p.FinalPrice,
		CalculatedCost:  CalculateCost(p).Round(2),
		CalculatedPrice: CalculateFinalPrice(p).Round(2),
		EffectivePrice:  EffectivePrice(p).Round(2),
		StockQuantity:   p.StockQuantity,
		Materials:       make([]ProductMaterialResponse, 0, len(p.Materials)),
	}
	if p.Category != nil {
		resp.CategoryName = p.Category.Name
	}
	for _, pm := range p.Materials {
		resp.Materials = append(resp.Materials, ProductMaterialResponse{
			ID:             pm.ID,
			MaterialID:     pm.MaterialID,
			MaterialName:   pm.Material.Name,
			MaterialUnit:   pm.Material.Unit,
			PurchasePrice:  pm.Material.PurchasePrice,
			QuantityNeeded: pm.QuantityNeeded,
		})
	}
	return resp
}

// Reçete girdilerini doğrula: malzemeler var mı, miktarlar > 0 mı?
func validateMaterials(inputs []MaterialInput) error {
	for _, in := range inputs {
		if in.MaterialID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "material_id zorunlu")
		}
		if in.QuantityNeeded.LessThanOrEqual(decimal.Zero) {
			return fiber.NewError(fiber.StatusBadRequest, "quantity_needed sıfırdan büyük olmalı")
		}
		var count int64
		database.DB.Model(&models.Material{}).Where("id = ?", in.MaterialID).Count(&count)
		if count == 0 {
			return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Malzeme bulunamadı: %d", in.MaterialID))
		}
	}
	return nil
}

// -------------------------
// Handlers
// -------------------------

// GET /api/products
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := database.DB.Preload("Materials.Material").Preload("Category").
			Order("name asc").
			Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		resp := make([]ProductResponse, 0, len(products))
		for i := range products {
			resp = append(resp, ToProductResponse(&products[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		p, err := LoadWithRecipe(database.DB, uint(id))
		if err != nil {
			return stock.MapError(err)
		}
		return c.JSON(ToProductResponse(p))
	}
}

// POST /api/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün adı zorunlu")
		}
		if body.StockQuantity < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Stok negatif olamaz")
		}
		if err := validateMaterials(body.Materials); err != nil {
			return err
		}

		product := models.Product{
			Name:          body.Name,
			Description:   body.Description,
			CategoryID:    body.CategoryID,
			ProfitMargin:  body.ProfitMargin,
			FinalPrice:    body.FinalPrice,
			StockQuantity: body.StockQuantity,
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}

		if err := tx.Create(&product).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		for _, in := range body.Materials {
			pm := models.ProductMaterial{
				ProductID:      product.ID,
				MaterialID:     in.MaterialID,
				QuantityNeeded: in.QuantityNeeded,
			}
			if err := tx.Create(&pm).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Reçete kaydedilemedi")
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		p, err := LoadWithRecipe(database.DB, product.ID)
		if err != nil {
			return stock.MapError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Ürün oluşturuldu",
			"product": ToProductResponse(p),
		})
	}
}

// PUT /api/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var product models.Product
		if err := database.DB.First(&product, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			if *body.Name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
			}
			product.Name = *body.Name
		}
		if body.Description != nil {
			product.Description = *body.Description
		}
		if body.CategoryID != nil {
			product.CategoryID = body.CategoryID
		}
		if body.ProfitMargin != nil {
			product.ProfitMargin = *body.ProfitMargin
		}
		if body.FinalPrice != nil {
			product.FinalPrice = body.FinalPrice
		}
		if body.Materials != nil {
			if err := validateMaterials(*body.Materials); err != nil {
				return err
			}
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}

		if err := tx.Save(&product).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		// Reçete verildiyse eskisini sil, yenisini yaz (aynı transaction içinde)
		if body.Materials != nil {
			if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductMaterial{}).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Reçete güncellenemedi")
			}
			for _, in := range *body.Materials {
				pm := models.ProductMaterial{
					ProductID:      product.ID,
					MaterialID:     in.MaterialID,
					QuantityNeeded: in.QuantityNeeded,
				}
				if err := tx.Create(&pm).Error; err != nil {
					tx.Rollback()
					return fiber.NewError(fiber.StatusInternalServerError, "Reçete kaydedilemedi")
				}
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		p, err := LoadWithRecipe(database.DB, product.ID)
		if err != nil {
			return stock.MapError(err)
		}

		return c.JSON(fiber.Map{
			"message": "Ürün güncellendi",
			"product": ToProductResponse(p),
		})
	}
}

// DELETE /api/products/:id
// Ürünle birlikte sahip olduğu reçete satırları da aynı transaction içinde silinir.
// Üretim veya satış kaydı olan ürün silinemez.
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var product models.Product
		if err := database.DB.First(&product, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var productionCount, saleItemCount int64
		database.DB.Model(&models.Production{}).Where("product_id = ?", product.ID).Count(&productionCount)
		database.DB.Model(&models.SaleItem{}).Where("product_id = ?", product.ID).Count(&saleItemCount)
		if productionCount > 0 || saleItemCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Ürüne bağlı kayıtlar var (%d üretim, %d satış satırı), önce onları silin", productionCount, saleItemCount))
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductMaterial{}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete silinemedi")
		}
		if err := tx.Delete(&product).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		return c.JSON(fiber.Map{"message": "Ürün silindi"})
	}
}

// GET /api/products/:id/calculate-price
func CalculatePriceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		p, err := LoadWithRecipe(database.DB, uint(id))
		if err != nil {
			return stock.MapError(err)
		}

		return c.JSON(fiber.Map{
			"cost":          CalculateCost(p).Round(2),
			"price":         CalculateFinalPrice(p).Round(2),
			"profit_margin": p.ProfitMargin,
		})
	}
}
