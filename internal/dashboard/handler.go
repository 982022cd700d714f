package dashboard

import (
	"sort"
	"time"

	"atolye-backend/internal/database"
	"atolye-backend/internal/models"
	"atolye-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// -------------------------
// Yardımcılar
// -------------------------

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Tutar toplamları Go tarafında decimal ile alınır; SQL SUM dialect'e göre
// float dönebilir ve para hesabında yuvarlama hatası üretir.
func sumSales(from, to time.Time) (decimal.Decimal, error) {
	var sales []models.Sale
	if err := database.DB.
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Find(&sales).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.TotalAmount)
	}
	return total, nil
}

func sumExpenses(from, to time.Time) (decimal.Decimal, error) {
	var expenses []models.Expense
	if err := database.DB.
		Where("expense_date >= ? AND expense_date < ?", from, to).
		Find(&expenses).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total, nil
}

type topProduct struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

func topProductsSince(since time.Time, limit int) ([]topProduct, error) {
	var items []models.SaleItem
	if err := database.DB.
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.sale_date >= ?", since).
		Preload("Product").
		Find(&items).Error; err != nil {
		return nil, err
	}

	byProduct := make(map[uint]*topProduct)
	for _, it := range items {
		tp, ok := byProduct[it.ProductID]
		if !ok {
			tp = &topProduct{ProductID: it.ProductID, ProductName: it.Product.Name, Revenue: decimal.Zero}
			byProduct[it.ProductID] = tp
		}
		tp.Quantity += it.Quantity
		tp.Revenue = tp.Revenue.Add(it.TotalPrice)
	}

	result := make([]topProduct, 0, len(byProduct))
	for _, tp := range byProduct {
		tp.Revenue = tp.Revenue.Round(2)
		result = append(result, *tp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Quantity > result[j].Quantity })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// -------------------------
// Handlers
// -------------------------

// GET /api/dashboard/summary
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		thisMonth := monthStart(now)
		nextMonth := thisMonth.AddDate(0, 1, 0)
		prevMonth := thisMonth.AddDate(0, -1, 0)

		monthRevenue, err := sumSales(thisMonth, nextMonth)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}
		prevRevenue, err := sumSales(prevMonth, thisMonth)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}

		// Önceki ay sıfırsa büyüme oranı tanımsız, 0 döneriz.
		growth := decimal.Zero
		if prevRevenue.IsPositive() {
			growth = monthRevenue.Sub(prevRevenue).
				Div(prevRevenue).
				Mul(decimal.NewFromInt(100)).
				Round(1)
		}

		monthExpenses, err := sumExpenses(thisMonth, nextMonth)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}

		lowStock, err := stock.LowStock(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}
		type lowStockRow struct {
			ID            uint            `json:"id"`
			Name          string          `json:"name"`
			Unit          string          `json:"unit"`
			StockQuantity decimal.Decimal `json:"stock_quantity"`
			MinStockAlert decimal.Decimal `json:"min_stock_alert"`
		}
		lowRows := make([]lowStockRow, 0, len(lowStock))
		for _, m := range lowStock {
			lowRows = append(lowRows, lowStockRow{
				ID:            m.ID,
				Name:          m.Name,
				Unit:          m.Unit,
				StockQuantity: m.StockQuantity,
				MinStockAlert: m.MinStockAlert,
			})
		}

		top, err := topProductsSince(now.AddDate(0, 0, -30), 5)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}

		var recentProductions []models.Production
		database.DB.Preload("Product").
			Where("production_date >= ?", now.AddDate(0, 0, -7)).
			Order("production_date desc").
			Limit(10).
			Find(&recentProductions)
		type productionRow struct {
			ID               uint   `json:"id"`
			ProductName      string `json:"product_name"`
			QuantityProduced int    `json:"quantity_produced"`
			ProductionDate   string `json:"production_date"`
		}
		prodRows := make([]productionRow, 0, len(recentProductions))
		for _, p := range recentProductions {
			prodRows = append(prodRows, productionRow{
				ID:               p.ID,
				ProductName:      p.Product.Name,
				QuantityProduced: p.QuantityProduced,
				ProductionDate:   p.ProductionDate.Format("2006-01-02"),
			})
		}

		return c.JSON(fiber.Map{
			"month_revenue":      monthRevenue.Round(2),
			"prev_month_revenue": prevRevenue.Round(2),
			"revenue_growth_pct": growth,
			"month_expenses":     monthExpenses.Round(2),
			"month_balance":      monthRevenue.Sub(monthExpenses).Round(2),
			"low_stock_count":    len(lowRows),
			"low_stock":          lowRows,
			"top_products":       top,
			"recent_productions": prodRows,
		})
	}
}

// GET /api/dashboard/sales-chart
// Son 12 ayın aylık ciroları, eskiden yeniye.
func SalesChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		start := monthStart(now).AddDate(0, -11, 0)

		var sales []models.Sale
		if err := database.DB.
			Where("sale_date >= ?", start).
			Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış grafiği hesaplanamadı")
		}

		byMonth := make(map[string]decimal.Decimal)
		for _, s := range sales {
			key := s.SaleDate.Format("2006-01")
			byMonth[key] = byMonth[key].Add(s.TotalAmount)
		}

		type chartPoint struct {
			Month   string          `json:"month"`
			Revenue decimal.Decimal `json:"revenue"`
		}
		points := make([]chartPoint, 0, 12)
		for i := 0; i < 12; i++ {
			m := start.AddDate(0, i, 0)
			key := m.Format("2006-01")
			points = append(points, chartPoint{Month: key, Revenue: byMonth[key].Round(2)})
		}

		return c.JSON(fiber.Map{"chart": points})
	}
}

// GET /api/dashboard/top-products?days=30&limit=10
func TopProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := c.QueryInt("days", 30)
		if days < 1 {
			days = 30
		}
		limit := c.QueryInt("limit", 10)
		if limit < 1 {
			limit = 10
		}

		top, err := topProductsSince(time.Now().AddDate(0, 0, -days), limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün sıralaması hesaplanamadı")
		}

		return c.JSON(fiber.Map{
			"days":     days,
			"products": top,
		})
	}
}
