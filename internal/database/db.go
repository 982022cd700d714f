package database

import (
	"log"

	"atolye-backend/internal/config"
	"atolye-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate tüm tabloları oluşturur/günceller. Testler aynı şemayı
// in-memory sqlite üzerinde kurmak için de bunu çağırır.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Supplier{},
		&models.Customer{},
		&models.Category{},
		&models.Material{},
		&models.Product{},
		&models.ProductMaterial{},
		&models.StockMovement{},
		&models.Production{},
		&models.Sale{},
		&models.SaleItem{},
		&models.Expense{},
		&models.AuditLog{},
	)
}
