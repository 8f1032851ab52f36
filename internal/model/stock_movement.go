package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementSale       MovementType = "SALE"
	MovementPurchase   MovementType = "PURCHASE"
	MovementAdjustment MovementType = "ADJUSTMENT"
)

// StockMovement is one row of the append-only stock ledger. QuantityChange is
// signed: negative for stock leaving, positive for stock arriving.
type StockMovement struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id"`
	ProductID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         *Product       `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Type            MovementType   `gorm:"type:varchar(20);not null;index" json:"type"`
	QuantityChange  int            `gorm:"not null" json:"quantity_change"`
	Reason          string         `gorm:"type:varchar(255)" json:"reason,omitempty"`
	SaleID          *uuid.UUID     `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	Sale            *Sale          `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	PurchaseOrderID *uuid.UUID     `gorm:"type:uuid;index" json:"purchase_order_id,omitempty"`
	PurchaseOrder   *PurchaseOrder `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	CreatedBy       string         `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) (err error) {
	m.ID = ensureID(m.ID)
	return
}
