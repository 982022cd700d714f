package production

import (
	"fmt"
	"time"

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

type CreateProductionRequest struct {
	ProductID        uint   `json:"product_id"`
	QuantityProduced int    `json:"quantity_produced"`
	ProductionDate   string `json:"production_date"` // "2025-12-09"
	Notes            string `json:"notes"`
}

type ProductionResponse struct {
	ID               uint            `json:"id"`
	ProductID        uint            `json:"product_id"`
	ProductName      string          `json:"product_name"`
	QuantityProduced int             `json:"quantity_produced"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	ProductionDate   string          `json:"production_date"`
	Notes            string          `json:"notes"`
	CreatedAt        string          `json:"created_at"`
}

func toResponse(p *models.Production) ProductionResponse {
	return ProductionResponse{
		ID:               p.ID,
		ProductID:        p.ProductID,
		ProductName:      p.Product.Name,
		QuantityProduced: p.QuantityProduced,
		TotalCost:        p.TotalCost,
		ProductionDate:   p.ProductionDate.Format("2006-01-02"),
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt.Format("2006-01-02T15:04:05"),
	}
}

// -------------------------
// Handlers
// -------------------------

// GET /api/productions
func ListProductionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.Production
		if err := database.DB.Preload("Product").
			Order("created_at desc, id desc").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretimler listelenemedi")
		}

		resp := make([]ProductionResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/productions/:id
func GetProductionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var production models.Production
		if err := database.DB.Preload("Product").First(&production, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Üretim bulunamadı")
		}
		return c.JSON(toResponse(&production))
	}
}

// POST /api/productions
func CreateProductionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ProductID == 0 || body.QuantityProduced == 0 || body.ProductionDate == "" {
			return fiber.NewError(fiber.StatusBadRequest, "product_id, quantity_produced ve production_date zorunlu")
		}

		d, err := time.Parse("2006-01-02", body.ProductionDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}

		production, err := CreateProduction(tx, CreateInput{
			ProductID:        body.ProductID,
			QuantityProduced: body.QuantityProduced,
			ProductionDate:   d,
			Notes:            body.Notes,
		})
		if err != nil {
			tx.Rollback()
			return stock.MapError(err)
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		database.DB.Preload("Product").First(production, production.ID)

		audit.WriteFromCtx(c, audit.LogOptions{
			EntityType:  "production",
			EntityID:    production.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Üretim eklendi: %d adet %s - %s TL", production.QuantityProduced, production.Product.Name, production.TotalCost),
			After:       production,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":    "Üretim kaydedildi",
			"production": toResponse(production),
		})
	}
}

// DELETE /api/productions/:id
func DeleteProductionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var before models.Production
		if err := database.DB.Preload("Product").First(&before, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Üretim bulunamadı")
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}

		if err := DeleteProduction(tx, uint(id)); err != nil {
			tx.Rollback()
			return stock.MapError(err)
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		audit.WriteFromCtx(c, audit.LogOptions{
			EntityType:  "production",
			EntityID:    before.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Üretim silindi: %d adet %s", before.QuantityProduced, before.Product.Name),
			Before:      before,
		})

		return c.JSON(fiber.Map{"message": "Üretim silindi"})
	}
}
