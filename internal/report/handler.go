package report

import (
	"time"

	"atolye-backend/internal/database"
	"atolye-backend/internal/models"
	"atolye-backend/internal/product"
	"atolye-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// GET /api/reports/financial?start_date=2026-01-01&end_date=2026-01-31
// Verilen aralıkta ciro, gider ve net kârı döner. Tarih verilmezse içinde
// bulunulan ay kullanılır. Aralık uçları dahildir.
func FinancialReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 1, -1)

		if raw := c.Query("start_date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start_date formatı YYYY-MM-DD olmalı")
			}
			start = parsed
		}
		if raw := c.Query("end_date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end_date formatı YYYY-MM-DD olmalı")
			}
			end = parsed
		}
		if end.Before(start) {
			return fiber.NewError(fiber.StatusBadRequest, "end_date start_date'ten önce olamaz")
		}
		endExclusive := end.AddDate(0, 0, 1)

		var sales []models.Sale
		if err := database.DB.
			Where("sale_date >= ? AND sale_date < ?", start, endExclusive).
			Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor hesaplanamadı")
		}
		totalRevenue := decimal.Zero
		for _, s := range sales {
			totalRevenue = totalRevenue.Add(s.TotalAmount)
		}

		var expenses []models.Expense
		if err := database.DB.
			Where("expense_date >= ? AND expense_date < ?", start, endExclusive).
			Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor hesaplanamadı")
		}

		totalExpenses := decimal.Zero
		byCategory := make(map[string]decimal.Decimal)
		for _, e := range expenses {
			totalExpenses = totalExpenses.Add(e.Amount)
			cat := e.Category
			if cat == "" {
				cat = "diğer"
			}
			byCategory[cat] = byCategory[cat].Add(e.Amount)
		}

		categoryRows := make([]fiber.Map, 0, len(byCategory))
		for cat, amount := range byCategory {
			categoryRows = append(categoryRows, fiber.Map{
				"category": cat,
				"amount":   amount.Round(2),
			})
		}

		return c.JSON(fiber.Map{
			"start_date":           start.Format("2006-01-02"),
			"end_date":             end.Format("2006-01-02"),
			"total_revenue":        totalRevenue.Round(2),
			"total_expenses":       totalExpenses.Round(2),
			"net_profit":           totalRevenue.Sub(totalExpenses).Round(2),
			"sale_count":           len(sales),
			"expenses_by_category": categoryRows,
		})
	}
}

// GET /api/reports/inventory
// Tüm malzeme ve ürünler, düşük stok alt kümesi ve stok değerlemesi.
// Malzeme değeri alış fiyatından, ürün değeri geçerli satış fiyatındandır.
func InventoryReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var materials []models.Material
		if err := database.DB.Preload("Supplier").
			Order("name asc").
			Find(&materials).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Envanter raporu hesaplanamadı")
		}

		var products []models.Product
		if err := database.DB.Preload("Materials.Material").Preload("Category").
			Order("name asc").
			Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Envanter raporu hesaplanamadı")
		}

		lowStock, err := stock.LowStock(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Envanter raporu hesaplanamadı")
		}

		materialsValue := decimal.Zero
		materialRows := make([]fiber.Map, 0, len(materials))
		for i := range materials {
			m := &materials[i]
			value := m.StockQuantity.Mul(m.PurchasePrice).Round(2)
			materialsValue = materialsValue.Add(value)
			row := fiber.Map{
				"id":             m.ID,
				"name":           m.Name,
				"unit":           m.Unit,
				"purchase_price": m.PurchasePrice,
				"stock_quantity": m.StockQuantity,
				"stock_value":    value,
			}
			if m.Supplier != nil {
				row["supplier_name"] = m.Supplier.Name
			}
			materialRows = append(materialRows, row)
		}

		productsValue := decimal.Zero
		productRows := make([]fiber.Map, 0, len(products))
		for i := range products {
			p := &products[i]
			unit := product.EffectivePrice(p).Round(2)
			value := unit.Mul(decimal.NewFromInt(int64(p.StockQuantity))).Round(2)
			productsValue = productsValue.Add(value)
			productRows = append(productRows, fiber.Map{
				"id":              p.ID,
				"name":            p.Name,
				"effective_price": unit,
				"stock_quantity":  p.StockQuantity,
				"stock_value":     value,
			})
		}

		lowStockRows := make([]fiber.Map, 0, len(lowStock))
		for i := range lowStock {
			m := &lowStock[i]
			lowStockRows = append(lowStockRows, fiber.Map{
				"id":              m.ID,
				"name":            m.Name,
				"unit":            m.Unit,
				"stock_quantity":  m.StockQuantity,
				"min_stock_alert": m.MinStockAlert,
			})
		}

		return c.JSON(fiber.Map{
			"materials":           materialRows,
			"products":            productRows,
			"low_stock_materials": lowStockRows,
			"summary": fiber.Map{
				"total_materials":       len(materials),
				"total_products":        len(products),
				"low_stock_count":       len(lowStock),
				"materials_value":       materialsValue.Round(2),
				"products_value":        productsValue.Round(2),
				"total_inventory_value": materialsValue.Add(productsValue).Round(2),
			},
		})
	}
}
