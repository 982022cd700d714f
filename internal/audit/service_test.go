package audit

import (
	"strings"
	"testing"

	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

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

func TestWriteLog(t *testing.T) {
	database.DB = newTestDB(t)

	err := WriteLog(LogOptions{
		UserID:      7,
		UserName:    "Ayşe",
		EntityType:  "sale",
		EntityID:    3,
		Action:      models.AuditActionDelete,
		Description: "Satış silindi",
		Before:      map[string]any{"total_amount": "16.00"},
	})
	if err != nil {
		t.Fatalf("WriteLog hata döndü: %v", err)
	}

	var logRec models.AuditLog
	if err := database.DB.First(&logRec).Error; err != nil {
		t.Fatalf("log okunamadı: %v", err)
	}
	if logRec.EntityType != "sale" || logRec.EntityID != 3 || logRec.Action != models.AuditActionDelete {
		t.Errorf("beklenmeyen log kaydı: %+v", logRec)
	}
	if !strings.Contains(logRec.BeforeData, "16.00") {
		t.Errorf("BeforeData önceki hali içermeli, %q bulundu", logRec.BeforeData)
	}
	// Verilmeyen taraf JSON null olarak saklanır, boş string değil.
	if logRec.AfterData != "null" {
		t.Errorf("AfterData \"null\" olmalı, %q bulundu", logRec.AfterData)
	}
}

func TestWriteLogFailure(t *testing.T) {
	db := newTestDB(t)
	database.DB = db

	if err := db.Migrator().DropTable(&models.AuditLog{}); err != nil {
		t.Fatalf("tablo silinemedi: %v", err)
	}

	err := WriteLog(LogOptions{
		EntityType: "production",
		EntityID:   1,
		Action:     models.AuditActionCreate,
	})
	if err == nil {
		t.Fatal("yazma başarısız olduğunda hata dönmeli")
	}
}
