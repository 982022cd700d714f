package audit

import (
	"math"

	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/audit-logs?page=1&per_page=50&entity_type=production
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		perPage := c.QueryInt("per_page", 50)
		if page < 1 {
			page = 1
		}
		if perPage < 1 || perPage > 200 {
			perPage = 50
		}

		dbq := database.DB.Model(&models.AuditLog{})

		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar sayılamadı")
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at desc, id desc").
			Offset((page - 1) * perPage).
			Limit(perPage).
			Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar listelenemedi")
		}

		return c.JSON(fiber.Map{
			"logs":         logs,
			"total":        total,
			"pages":        int(math.Ceil(float64(total) / float64(perPage))),
			"current_page": page,
		})
	}
}
