package expense

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migration hatası: %v", err)
	}
	return db
}

func TestListExpenseCategories(t *testing.T) {
	database.DB = newTestDB(t)

	seed := []models.Expense{
		{Description: "Atölye kirası", Amount: decimal.RequireFromString("500.00"), ExpenseDate: time.Now(), Category: "kira"},
		{Description: "Elektrik", Amount: decimal.RequireFromString("80.00"), ExpenseDate: time.Now(), Category: "fatura"},
		{Description: "Kira farkı", Amount: decimal.RequireFromString("50.00"), ExpenseDate: time.Now(), Category: "kira"},
		{Description: "Kategorisiz", Amount: decimal.RequireFromString("10.00"), ExpenseDate: time.Now()},
	}
	for i := range seed {
		if err := database.DB.Create(&seed[i]).Error; err != nil {
			t.Fatalf("gider oluşturulamadı: %v", err)
		}
	}

	app := fiber.New()
	app.Get("/api/expenses/categories", ListExpenseCategoriesHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/expenses/categories", nil))
	if err != nil {
		t.Fatalf("istek başarısız: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("200 beklenirdi, %d bulundu", resp.StatusCode)
	}

	var categories []string
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		t.Fatalf("yanıt çözümlenemedi: %v", err)
	}

	// Tekrarsız, boşlar hariç, alfabetik.
	if len(categories) != 2 || categories[0] != "fatura" || categories[1] != "kira" {
		t.Errorf("[fatura kira] beklenirdi, %v bulundu", categories)
	}
}
