package sale

import (
	"fmt"
	"math"
	"sort"
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

type SaleItemRequest struct {
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type CreateSaleRequest struct {
	CustomerID    *uint             `json:"customer_id"`
	SaleDate      string            `json:"sale_date"` // "2025-12-09"
	PaymentMethod string            `json:"payment_method"`
	Notes         string            `json:"notes"`
	Items         []SaleItemRequest `json:"items"`
}

type SaleItemResponse struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type SaleResponse struct {
	ID            uint               `json:"id"`
	CustomerID    *uint              `json:"customer_id"`
	CustomerName  string             `json:"customer_name,omitempty"`
	SaleDate      string             `json:"sale_date"`
	PaymentMethod string             `json:"payment_method"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Notes         string             `json:"notes"`
	Items         []SaleItemResponse `json:"items"`
	CreatedAt     string             `json:"created_at"`
}

func toResponse(s *models.Sale) SaleResponse {
	resp := SaleResponse{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		SaleDate:      s.SaleDate.Format("2006-01-02"),
		PaymentMethod: s.PaymentMethod,
		TotalAmount:   s.TotalAmount,
		Notes:         s.Notes,
		Items:         make([]SaleItemResponse, 0, len(s.Items)),
		CreatedAt:     s.CreatedAt.Format("2006-01-02T15:04:05"),
	}
	if s.Customer != nil {
		resp.CustomerName = s.Customer.Name
	}
	for _, item := range s.Items {
		resp.Items = append(resp.Items, SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return resp
}

// -------------------------
// Handlers
// -------------------------

// GET /api/sales?page=1&per_page=20
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		perPage := c.QueryInt("per_page", 20)
		if page < 1 {
			page = 1
		}
		if perPage < 1 || perPage > 100 {
			perPage = 20
		}

		var total int64
		if err := database.DB.Model(&models.Sale{}).Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar sayılamadı")
		}

		var rows []models.Sale
		if err := database.DB.Preload("Customer").Preload("Items.Product").
			Order("created_at desc, id desc").
			Offset((page - 1) * perPage).
			Limit(perPage).
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		resp := make([]SaleResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toResponse(&rows[i]))
		}

		return c.JSON(fiber.Map{
			"sales":        resp,
			"total":        total,
			"pages":        int(math.Ceil(float64(total) / float64(perPage))),
			"current_page": page,
		})
	}
}

// GET /api/sales/:id
func GetSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var saleRec models.Sale
		if err := database.DB.Preload("Customer").Preload("Items.Product").
			First(&saleRec, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}
		return c.JSON(toResponse(&saleRec))
	}
}

// POST /api/sales
func CreateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.SaleDate == "" || body.PaymentMethod == "" {
			return fiber.NewError(fiber.StatusBadRequest, "sale_date ve payment_method zorunlu")
		}

		d, err := time.Parse("2006-01-02", body.SaleDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		items := make([]ItemInput, 0, len(body.Items))
		for _, it := range body.Items {
			items = append(items, ItemInput{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
			})
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}

		saleRec, err := CreateSale(tx, CreateInput{
			CustomerID:    body.CustomerID,
			SaleDate:      d,
			PaymentMethod: body.PaymentMethod,
			Notes:         body.Notes,
			Items:         items,
		})
		if err != nil {
			tx.Rollback()
			return stock.MapError(err)
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		database.DB.Preload("Customer").Preload("Items.Product").First(saleRec, saleRec.ID)

		audit.WriteFromCtx(c, audit.LogOptions{
			EntityType:  "sale",
			EntityID:    saleRec.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Satış eklendi: %d satır - %s TL", len(saleRec.Items), saleRec.TotalAmount),
			After:       saleRec,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Satış kaydedildi",
			"sale":    toResponse(saleRec),
		})
	}
}

// DELETE /api/sales/:id
func DeleteSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var before models.Sale
		if err := database.DB.Preload("Items.Product").First(&before, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}

		if err := DeleteSale(tx, uint(id)); err != nil {
			tx.Rollback()
			return stock.MapError(err)
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		audit.WriteFromCtx(c, audit.LogOptions{
			EntityType:  "sale",
			EntityID:    before.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Satış silindi: %s TL", before.TotalAmount),
			Before:      before,
		})

		return c.JSON(fiber.Map{"message": "Satış silindi"})
	}
}

// GET /api/sales/report?start_date=...&end_date=...
func SalesReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Sale{})

		if fromStr := c.Query("start_date"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start_date geçersiz")
			}
			dbq = dbq.Where("sale_date >= ?", from)
		}
		if toStr := c.Query("end_date"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end_date geçersiz")
			}
			dbq = dbq.Where("sale_date <= ?", to)
		}

		var sales []models.Sale
		if err := dbq.Preload("Customer").Preload("Items.Product").
			Order("sale_date desc, id desc").
			Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor hesaplanamadı")
		}

		totalRevenue := decimal.Zero
		type productAgg struct {
			Name     string
			Quantity int
			Revenue  decimal.Decimal
		}
		byProduct := make(map[uint]*productAgg)

		for i := range sales {
			totalRevenue = totalRevenue.Add(sales[i].TotalAmount)
			for _, item := range sales[i].Items {
				agg, ok := byProduct[item.ProductID]
				if !ok {
					agg = &productAgg{Name: item.Product.Name, Revenue: decimal.Zero}
					byProduct[item.ProductID] = agg
				}
				agg.Quantity += item.Quantity
				agg.Revenue = agg.Revenue.Add(item.TotalPrice)
			}
		}

		aggs := make([]*productAgg, 0, len(byProduct))
		for _, agg := range byProduct {
			aggs = append(aggs, agg)
		}
		sort.Slice(aggs, func(i, j int) bool {
			if aggs[i].Quantity != aggs[j].Quantity {
				return aggs[i].Quantity > aggs[j].Quantity
			}
			return aggs[i].Name < aggs[j].Name
		})
		if len(aggs) > 10 {
			aggs = aggs[:10]
		}

		topProducts := make([]fiber.Map, 0, len(aggs))
		for _, agg := range aggs {
			topProducts = append(topProducts, fiber.Map{
				"name":     agg.Name,
				"quantity": agg.Quantity,
				"revenue":  agg.Revenue,
			})
		}

		saleResp := make([]SaleResponse, 0, len(sales))
		for i := range sales {
			saleResp = append(saleResp, toResponse(&sales[i]))
		}

		return c.JSON(fiber.Map{
			"total_sales":   len(sales),
			"total_revenue": totalRevenue,
			"top_products":  topProducts,
			"sales":         saleResp,
		})
	}
}
