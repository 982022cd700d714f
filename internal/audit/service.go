package audit

import (
	"encoding/json"
	"fmt"
	"log"

	"atolye-backend/internal/auth"
	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// WriteFromCtx: kullanıcı bilgisini request context'inden doldurup log yazar.
// Log yazılamazsa asıl işlem geri alınmaz, sadece uyarı basılır.
func WriteFromCtx(c *fiber.Ctx, opts LogOptions) {
	if userID, ok := c.Locals(auth.CtxUserIDKey).(uint); ok {
		opts.UserID = userID
		var user models.User
		if err := database.DB.First(&user, userID).Error; err == nil {
			opts.UserName = user.Name
		}
	}

	if err := WriteLog(opts); err != nil {
		log.Printf("Audit log yazılamadı: %v", err)
	}
}
