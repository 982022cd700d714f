package main

import (
	"log"
	"strings"

	"atolye-backend/internal/audit"
	"atolye-backend/internal/auth"
	"atolye-backend/internal/category"
	"atolye-backend/internal/config"
	"atolye-backend/internal/customer"
	"atolye-backend/internal/dashboard"
	"atolye-backend/internal/database"
	"atolye-backend/internal/expense"
	"atolye-backend/internal/material"
	"atolye-backend/internal/product"
	"atolye-backend/internal/production"
	"atolye-backend/internal/report"
	"atolye-backend/internal/sale"
	"atolye-backend/internal/stock"
	"atolye-backend/internal/supplier"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/shopspring/decimal"
)

func main() {
	// Para ve miktar alanları JSON'da string değil sayı olarak dönsün.
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Post("/auth/logout", auth.LogoutHandler())

	// Tedarikçiler
	protected.Get("/suppliers", supplier.ListSuppliersHandler())
	protected.Get("/suppliers/:id", supplier.GetSupplierHandler())
	protected.Post("/suppliers", supplier.CreateSupplierHandler())
	protected.Put("/suppliers/:id", supplier.UpdateSupplierHandler())
	protected.Delete("/suppliers/:id", supplier.DeleteSupplierHandler())

	// Malzemeler
	protected.Get("/materials", material.ListMaterialsHandler())
	protected.Get("/materials/low-stock", material.LowStockHandler())
	protected.Post("/materials", material.CreateMaterialHandler())
	protected.Put("/materials/:id", material.UpdateMaterialHandler())
	protected.Delete("/materials/:id", material.DeleteMaterialHandler())
	protected.Post("/materials/:id/add-stock", material.AddStockHandler())

	// Stok hareketleri
	protected.Get("/stock-movements", stock.ListMovementsHandler())
	protected.Post("/stock-movements", stock.CreateMovementHandler())

	// Kategoriler
	protected.Get("/categories", category.ListCategoriesHandler())
	protected.Post("/categories", category.CreateCategoryHandler())
	protected.Put("/categories/:id", category.UpdateCategoryHandler())
	protected.Delete("/categories/:id", category.DeleteCategoryHandler())

	// Ürünler
	protected.Get("/products", product.ListProductsHandler())
	protected.Get("/products/:id", product.GetProductHandler())
	protected.Post("/products", product.CreateProductHandler())
	protected.Put("/products/:id", product.UpdateProductHandler())
	protected.Delete("/products/:id", product.DeleteProductHandler())
	protected.Get("/products/:id/calculate-price", product.CalculatePriceHandler())

	// Üretimler
	protected.Get("/productions", production.ListProductionsHandler())
	protected.Get("/productions/:id", production.GetProductionHandler())
	protected.Post("/productions", production.CreateProductionHandler())
	protected.Delete("/productions/:id", production.DeleteProductionHandler())

	// Müşteriler
	protected.Get("/customers", customer.ListCustomersHandler())
	protected.Get("/customers/:id", customer.GetCustomerHandler())
	protected.Post("/customers", customer.CreateCustomerHandler())
	protected.Put("/customers/:id", customer.UpdateCustomerHandler())
	protected.Delete("/customers/:id", customer.DeleteCustomerHandler())

	// Satışlar
	protected.Get("/sales", sale.ListSalesHandler())
	protected.Get("/sales/report", sale.SalesReportHandler())
	protected.Get("/sales/:id", sale.GetSaleHandler())
	protected.Post("/sales", sale.CreateSaleHandler())
	protected.Delete("/sales/:id", sale.DeleteSaleHandler())

	// Giderler
	protected.Get("/expenses", expense.ListExpensesHandler())
	protected.Get("/expenses/categories", expense.ListExpenseCategoriesHandler())
	protected.Post("/expenses", expense.CreateExpenseHandler())
	protected.Put("/expenses/:id", expense.UpdateExpenseHandler())
	protected.Delete("/expenses/:id", expense.DeleteExpenseHandler())

	// Dashboard
	protected.Get("/dashboard/summary", dashboard.SummaryHandler())
	protected.Get("/dashboard/sales-chart", dashboard.SalesChartHandler())
	protected.Get("/dashboard/top-products", dashboard.TopProductsHandler())

	// Raporlar
	protected.Get("/reports/financial", report.FinancialReportHandler())
	protected.Get("/reports/inventory", report.InventoryReportHandler())

	// Audit log
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Printf("Sunucu %s portunda başlıyor", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal("Sunucu başlatılamadı:", err)
	}
}
