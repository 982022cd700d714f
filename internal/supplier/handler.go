package supplier

import (
	"fmt"

	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SupplierRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type SupplierResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

func toResponse(s *models.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:      s.ID,
		Name:    s.Name,
		Contact: s.Contact,
		Phone:   s.Phone,
		Email:   s.Email,
	}
}

// GET /api/suppliers
func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var suppliers []models.Supplier
		if err := database.DB.Order("name asc").Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçiler listelenemedi")
		}

		resp := make([]SupplierResponse, 0, len(suppliers))
		for i := range suppliers {
			resp = append(resp, toResponse(&suppliers[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/suppliers/:id
func GetSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var supplier models.Supplier
		if err := database.DB.First(&supplier, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}

		// Tedarikçinin sağladığı malzemeler detayda döner.
		var materials []models.Material
		database.DB.Where("supplier_id = ?", supplier.ID).Order("name asc").Find(&materials)

		type materialRow struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
			Unit string `json:"unit"`
		}
		rows := make([]materialRow, 0, len(materials))
		for _, m := range materials {
			rows = append(rows, materialRow{ID: m.ID, Name: m.Name, Unit: m.Unit})
		}

		return c.JSON(fiber.Map{
			"supplier":  toResponse(&supplier),
			"materials": rows,
		})
	}
}

// POST /api/suppliers
func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}

		supplier := models.Supplier{
			Name:    body.Name,
			Contact: body.Contact,
			Phone:   body.Phone,
			Email:   body.Email,
		}
		if err := database.DB.Create(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "Tedarikçi oluşturuldu",
			"supplier": toResponse(&supplier),
		})
	}
}

// PUT /api/suppliers/:id
func UpdateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var supplier models.Supplier
		if err := database.DB.First(&supplier, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}

		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}

		supplier.Name = body.Name
		supplier.Contact = body.Contact
		supplier.Phone = body.Phone
		supplier.Email = body.Email

		if err := database.DB.Save(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi güncellenemedi")
		}

		return c.JSON(fiber.Map{
			"message":  "Tedarikçi güncellendi",
			"supplier": toResponse(&supplier),
		})
	}
}

// DELETE /api/suppliers/:id
func DeleteSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var supplier models.Supplier
		if err := database.DB.First(&supplier, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}

		var materialCount int64
		database.DB.Model(&models.Material{}).Where("supplier_id = ?", supplier.ID).Count(&materialCount)
		if materialCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Tedarikçiye bağlı %d malzeme var, silinemez", materialCount))
		}

		if err := database.DB.Delete(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Tedarikçi silindi"})
	}
}
