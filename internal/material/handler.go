package material

import (
	"fmt"

	"atolye-backend/internal/audit"
	"atolye-backend/internal/database"
	"atolye-backend/internal/models"
	"atolye-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateMaterialRequest struct {
	Name          string           `json:"name"`
	Unit          string           `json:"unit"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	StockQuantity *decimal.Decimal `json:"stock_quantity"` // başlangıç stoğu
	MinStockAlert *decimal.Decimal `json:"min_stock_alert"`
	SupplierID    *uint            `json:"supplier_id"`
}

type UpdateMaterialRequest struct {
	Name          *string          `json:"name"`
	Unit          *string          `json:"unit"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	MinStockAlert *decimal.Decimal `json:"min_stock_alert"`
	SupplierID    *uint            `json:"supplier_id"`
	// Stok alanı bilinçli olarak yok: stok yalnızca hareket üreten
	// operasyonlarla değişir (add-stock, üretim, manuel hareket).
}

type AddStockRequest struct {
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Description string           `json:"description"`
}

type MaterialResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	MinStockAlert decimal.Decimal `json:"min_stock_alert"`
	SupplierID    *uint           `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name,omitempty"`
}

func toResponse(m *models.Material) MaterialResponse {
	resp := MaterialResponse{
		ID:            m.ID,
		Name:          m.Name,
		Unit:          m.Unit,
		PurchasePrice: m.PurchasePrice,
		StockQuantity: m.StockQuantity,
		MinStockAlert: m.MinStockAlert,
		SupplierID:    m.SupplierID,
	}
	if m.Supplier != nil {
		resp.SupplierName = m.Supplier.Name
	}
	return resp
}

// -------------------------
// Handlers
// -------------------------

// GET /api/materials
func ListMaterialsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var materials []models.Material
		if err := database.DB.Preload("Supplier").
			Order("name asc").
			Find(&materials).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzemeler listelenemedi")
		}

		resp := make([]MaterialResponse, 0, len(materials))
		for i := range materials {
			resp = append(resp, toResponse(&materials[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/materials/low-stock
func LowStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		materials, err := stock.LowStock(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Düşük stoklar listelenemedi")
		}

		resp := make([]MaterialResponse, 0, len(materials))
		for i := range materials {
			resp = append(resp, toResponse(&materials[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/materials
func CreateMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name ve unit zorunlu")
		}
		if body.PurchasePrice.LessThanOrEqual(decimal.Zero) {
			return fiber.NewError(fiber.StatusBadRequest, "purchase_price sıfırdan büyük olmalı")
		}

		material := models.Material{
			Name:          body.Name,
			Unit:          body.Unit,
			PurchasePrice: body.PurchasePrice,
			SupplierID:    body.SupplierID,
		}
		if body.StockQuantity != nil {
			if body.StockQuantity.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "stock_quantity negatif olamaz")
			}
			material.StockQuantity = *body.StockQuantity
		}
		if body.MinStockAlert != nil {
			material.MinStockAlert = *body.MinStockAlert
		}

		if body.SupplierID != nil {
			var count int64
			database.DB.Model(&models.Supplier{}).Where("id = ?", *body.SupplierID).Count(&count)
			if count == 0 {
				return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
			}
		}

		if err := database.DB.Create(&material).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "Malzeme oluşturuldu",
			"material": toResponse(&material),
		})
	}
}

// PUT /api/materials/:id
// Stok miktarı burada güncellenemez; defter dışı stok değişikliği yoktur.
func UpdateMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var material models.Material
		if err := database.DB.First(&material, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Malzeme bulunamadı")
		}

		var body UpdateMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			if *body.Name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
			}
			material.Name = *body.Name
		}
		if body.Unit != nil {
			material.Unit = *body.Unit
		}
		if body.PurchasePrice != nil {
			if body.PurchasePrice.LessThanOrEqual(decimal.Zero) {
				return fiber.NewError(fiber.StatusBadRequest, "purchase_price sıfırdan büyük olmalı")
			}
			material.PurchasePrice = *body.PurchasePrice
		}
		if body.MinStockAlert != nil {
			material.MinStockAlert = *body.MinStockAlert
		}
		if body.SupplierID != nil {
			var count int64
			database.DB.Model(&models.Supplier{}).Where("id = ?", *body.SupplierID).Count(&count)
			if count == 0 {
				return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
			}
			material.SupplierID = body.SupplierID
		}

		if err := database.DB.Save(&material).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme güncellenemedi")
		}

		return c.JSON(fiber.Map{
			"message":  "Malzeme güncellendi",
			"material": toResponse(&material),
		})
	}
}

// DELETE /api/materials/:id
// Hareketi veya reçete bağlantısı olan malzeme silinemez; defter tutarlılığı bozulur.
func DeleteMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var material models.Material
		if err := database.DB.First(&material, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Malzeme bulunamadı")
		}

		var movementCount, recipeCount int64
		database.DB.Model(&models.StockMovement{}).Where("material_id = ?", material.ID).Count(&movementCount)
		database.DB.Model(&models.ProductMaterial{}).Where("material_id = ?", material.ID).Count(&recipeCount)
		if movementCount > 0 || recipeCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Malzemeye bağlı kayıtlar var (%d hareket, %d reçete satırı), silinemez", movementCount, recipeCount))
		}

		if err := database.DB.Delete(&material).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzeme silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Malzeme silindi"})
	}
}

// POST /api/materials/:id/add-stock
func AddStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var body AddStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}

		material, movement, err := stock.AddStock(tx, uint(id), body.Quantity, body.UnitPrice, body.Description)
		if err != nil {
			tx.Rollback()
			return stock.MapError(err)
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		audit.WriteFromCtx(c, audit.LogOptions{
			EntityType:  "stock_movement",
			EntityID:    movement.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Stok girişi: %s %s %s", movement.Quantity, material.Unit, material.Name),
			After:       movement,
		})

		movement.Material = *material

		return c.JSON(fiber.Map{
			"message":  "Stok eklendi",
			"material": toResponse(material),
			"movement": stock.ToMovementResponse(movement),
		})
	}
}
