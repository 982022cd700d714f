package stock

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Beklenen iş hataları. Handler'lar errors.Is / errors.As ile HTTP koduna çevirir;
// bunların dışındaki her hata 500 + rollback demektir.
var (
	ErrNotFound        = errors.New("kayıt bulunamadı")
	ErrInvalidArgument = errors.New("geçersiz parametre")
)

// InsufficientStockError: fizibilite kontrolü başarısız. Hangi malzeme/ürün,
// ne kadar gerekli, ne kadar mevcut — kullanıcıya aynen gösterilir.
type InsufficientStockError struct {
	Name      string
	Unit      string
	Needed    decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	if e.Unit != "" {
		return fmt.Sprintf("Yetersiz stok: %s. Gereken: %s %s, Mevcut: %s %s",
			e.Name, e.Needed, e.Unit, e.Available, e.Unit)
	}
	return fmt.Sprintf("Yetersiz stok: %s. Gereken: %s, Mevcut: %s",
		e.Name, e.Needed, e.Available)
}
