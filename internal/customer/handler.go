package customer

import (
	"fmt"

	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type CustomerResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func toResponse(cu *models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:      cu.ID,
		Name:    cu.Name,
		Email:   cu.Email,
		Phone:   cu.Phone,
		Address: cu.Address,
	}
}

// GET /api/customers
func ListCustomersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var customers []models.Customer
		if err := database.DB.Order("name asc").Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteriler listelenemedi")
		}

		resp := make([]CustomerResponse, 0, len(customers))
		for i := range customers {
			resp = append(resp, toResponse(&customers[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/customers/:id
// Müşteri detayı, satış geçmişi ve toplam ciro ile birlikte döner.
func GetCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}

		var sales []models.Sale
		database.DB.Where("customer_id = ?", customer.ID).
			Order("sale_date desc").
			Find(&sales)

		totalSpent := decimal.Zero
		type saleRow struct {
			ID          uint            `json:"id"`
			SaleDate    string          `json:"sale_date"`
			TotalAmount decimal.Decimal `json:"total_amount"`
		}
		rows := make([]saleRow, 0, len(sales))
		for _, s := range sales {
			totalSpent = totalSpent.Add(s.TotalAmount)
			rows = append(rows, saleRow{
				ID:          s.ID,
				SaleDate:    s.SaleDate.Format("2006-01-02"),
				TotalAmount: s.TotalAmount,
			})
		}

		return c.JSON(fiber.Map{
			"customer":    toResponse(&customer),
			"sales":       rows,
			"total_spent": totalSpent.Round(2),
		})
	}
}

// POST /api/customers
func CreateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}

		customer := models.Customer{
			Name:    body.Name,
			Email:   body.Email,
			Phone:   body.Phone,
			Address: body.Address,
		}
		if err := database.DB.Create(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "Müşteri oluşturuldu",
			"customer": toResponse(&customer),
		})
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}

		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}

		customer.Name = body.Name
		customer.Email = body.Email
		customer.Phone = body.Phone
		customer.Address = body.Address

		if err := database.DB.Save(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri güncellenemedi")
		}

		return c.JSON(fiber.Map{
			"message":  "Müşteri güncellendi",
			"customer": toResponse(&customer),
		})
	}
}

// DELETE /api/customers/:id
// Satışı olan müşteri silinmez; satış kayıtları müşteri referansı taşır.
func DeleteCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}

		var saleCount int64
		database.DB.Model(&models.Sale{}).Where("customer_id = ?", customer.ID).Count(&saleCount)
		if saleCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Müşteriye bağlı %d satış var, silinemez", saleCount))
		}

		if err := database.DB.Delete(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Müşteri silindi"})
	}
}
