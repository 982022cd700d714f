package expense

import (
	"time"

	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ExpenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate string          `json:"expense_date"` // YYYY-MM-DD, boşsa bugün
	Category    string          `json:"category"`
}

type ExpenseResponse struct {
	ID          uint            `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate string          `json:"expense_date"`
	Category    string          `json:"category"`
}

func toResponse(e *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		ExpenseDate: e.ExpenseDate.Format("2006-01-02"),
		Category:    e.Category,
	}
}

func parseExpenseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", raw)
}

// -------------------------
// Handlers
// -------------------------

// GET /api/expenses?page=1&category=kira
func ListExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		if page < 1 {
			page = 1
		}
		perPage := 20

		q := database.DB.Model(&models.Expense{})
		if cat := c.Query("category"); cat != "" {
			q = q.Where("category = ?", cat)
		}

		var total int64
		q.Count(&total)

		var expenses []models.Expense
		if err := q.Order("expense_date desc, id desc").
			Limit(perPage).
			Offset((page - 1) * perPage).
			Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Giderler listelenemedi")
		}

		resp := make([]ExpenseResponse, 0, len(expenses))
		for i := range expenses {
			resp = append(resp, toResponse(&expenses[i]))
		}

		pages := int((total + int64(perPage) - 1) / int64(perPage))
		return c.JSON(fiber.Map{
			"expenses":     resp,
			"total":        total,
			"pages":        pages,
			"current_page": page,
		})
	}
}

// GET /api/expenses/categories
// Kayıtlı giderlerde geçen kategori adları (tekrarsız, boşlar hariç).
func ListExpenseCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categories []string
		if err := database.DB.Model(&models.Expense{}).
			Distinct("category").
			Where("category <> ''").
			Order("category asc").
			Pluck("category", &categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategoriler listelenemedi")
		}
		return c.JSON(categories)
	}
}

// POST /api/expenses
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Description == "" {
			return fiber.NewError(fiber.StatusBadRequest, "description zorunlu")
		}
		if body.Amount.LessThanOrEqual(decimal.Zero) {
			return fiber.NewError(fiber.StatusBadRequest, "amount sıfırdan büyük olmalı")
		}

		date, err := parseExpenseDate(body.ExpenseDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "expense_date formatı YYYY-MM-DD olmalı")
		}

		expense := models.Expense{
			Description: body.Description,
			Amount:      body.Amount.Round(2),
			ExpenseDate: date,
			Category:    body.Category,
		}
		if err := database.DB.Create(&expense).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Gider kaydedildi",
			"expense": toResponse(&expense),
		})
	}
}

// PUT /api/expenses/:id
func UpdateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var expense models.Expense
		if err := database.DB.First(&expense, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
		}

		var body ExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Description == "" {
			return fiber.NewError(fiber.StatusBadRequest, "description zorunlu")
		}
		if body.Amount.LessThanOrEqual(decimal.Zero) {
			return fiber.NewError(fiber.StatusBadRequest, "amount sıfırdan büyük olmalı")
		}

		expense.Description = body.Description
		expense.Amount = body.Amount.Round(2)
		expense.Category = body.Category
		if body.ExpenseDate != "" {
			date, err := time.Parse("2006-01-02", body.ExpenseDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "expense_date formatı YYYY-MM-DD olmalı")
			}
			expense.ExpenseDate = date
		}

		if err := database.DB.Save(&expense).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider güncellenemedi")
		}

		return c.JSON(fiber.Map{
			"message": "Gider güncellendi",
			"expense": toResponse(&expense),
		})
	}
}

// DELETE /api/expenses/:id
func DeleteExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var expense models.Expense
		if err := database.DB.First(&expense, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
		}

		if err := database.DB.Delete(&expense).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Gider silindi"})
	}
}
