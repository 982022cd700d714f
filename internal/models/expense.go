package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense: işletme gideri. Stok/envanter mantığından bağımsız, raporlama için.
type Expense struct {
	ID          uint            `gorm:"primaryKey"`
	Description string          `gorm:"size:255;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ExpenseDate time.Time       `gorm:"index;not null"`
	Category    string          `gorm:"size:100"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
