package stock

import (
	"errors"
	"fmt"
	"math"

	"atolye-backend/internal/audit"
	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateMovementRequest struct {
	MaterialID   uint             `json:"material_id"`
	MovementType string           `json:"movement_type"` // "IN" | "OUT"
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	TotalCost    *decimal.Decimal `json:"total_cost"`
	Description  string           `json:"description"`
}

type MovementResponse struct {
	ID            uint             `json:"id"`
	MaterialID    uint             `json:"material_id"`
	MaterialName  string           `json:"material_name,omitempty"`
	MaterialUnit  string           `json:"material_unit,omitempty"`
	MovementType  string           `json:"movement_type"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	TotalCost     *decimal.Decimal `json:"total_cost"`
	Description   string           `json:"description"`
	ReferenceID   *uint            `json:"reference_id"`
	ReferenceType string           `json:"reference_type"`
	CreatedAt     string           `json:"created_at"`
}

func ToMovementResponse(m *models.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		MaterialID:    m.MaterialID,
		MaterialName:  m.Material.Name,
		MaterialUnit:  m.Material.Unit,
		MovementType:  string(m.MovementType),
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		TotalCost:     m.TotalCost,
		Description:   m.Description,
		ReferenceID:   m.ReferenceID,
		ReferenceType: string(m.ReferenceType),
		CreatedAt:     m.CreatedAt.Format("2006-01-02T15:04:05"),
	}
}

// MapError: engine hatasını HTTP hatasına çevirir. NotFound → 404,
// InvalidArgument / InsufficientStock → 400, kalanı 500.
func MapError(err error) error {
	var insufficient *InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return fiber.NewError(fiber.StatusBadRequest, insufficient.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidArgument):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
	}
}

// -------------------------
// Handlers
// -------------------------

// GET /api/stock-movements?page=1&per_page=50&material_id=...
func ListMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		perPage := c.QueryInt("per_page", 50)
		if page < 1 {
			page = 1
		}
		if perPage < 1 || perPage > 200 {
			perPage = 50
		}

		dbq := database.DB.Model(&models.StockMovement{})

		materialIDStr := c.Query("material_id")
		if materialIDStr != "" {
			var mid uint
			if _, err := fmt.Sscan(materialIDStr, &mid); err != nil || mid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "material_id geçersiz")
			}
			dbq = dbq.Where("material_id = ?", mid)
		}

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler sayılamadı")
		}

		var rows []models.StockMovement
		if err := dbq.Preload("Material").
			Order("created_at desc, id desc").
			Offset((page - 1) * perPage).
			Limit(perPage).
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}

		resp := make([]MovementResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, ToMovementResponse(&rows[i]))
		}

		return c.JSON(fiber.Map{
			"movements":    resp,
			"total":        total,
			"pages":        int(math.Ceil(float64(total) / float64(perPage))),
			"current_page": page,
		})
	}
}

// POST /api/stock-movements — manuel düzeltme hareketi.
// Malzeme stoğu da aynı transaction içinde güncellenir; defter dışı stok
// değişikliği yoktur (malzeme güncelleme endpoint'i stok alanı kabul etmez).
func CreateMovementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMovementRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.MaterialID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "material_id zorunlu")
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}

		movement, err := ApplyMovement(tx, MovementInput{
			MaterialID:   body.MaterialID,
			MovementType: models.MovementType(body.MovementType),
			Quantity:     body.Quantity,
			UnitPrice:    body.UnitPrice,
			TotalCost:    body.TotalCost,
			Description:  body.Description,
		})
		if err != nil {
			tx.Rollback()
			return MapError(err)
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		audit.WriteFromCtx(c, audit.LogOptions{
			EntityType:  "stock_movement",
			EntityID:    movement.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Manuel stok hareketi: %s %s (malzeme #%d)", movement.MovementType, movement.Quantity, movement.MaterialID),
			After:       movement,
		})

		// Malzeme bilgisiyle birlikte dön
		database.DB.Preload("Material").First(movement, movement.ID)

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "Hareket kaydedildi",
			"movement": ToMovementResponse(movement),
		})
	}
}
