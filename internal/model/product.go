package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Stock is only ever written by the sale, goods
// receipt and stock adjustment units of work, each paired with a StockMovement.
type Product struct {
	BaseModel
	SKU           string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required,min=3"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name" validate:"required,min=3"`
	Description   string          `gorm:"type:text" json:"description"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id" validate:"uuid_required"`
	Category      *Category       `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty" validate:"-"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"selling_price" validate:"gte=0"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"purchase_price" validate:"gte=0"`
	Stock         int             `gorm:"not null;default:0;check:stock >= 0" json:"stock" validate:"gte=0"`
}
