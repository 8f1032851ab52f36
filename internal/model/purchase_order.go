package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseOrderStatus string

const (
	PurchaseOrderPending   PurchaseOrderStatus = "PENDING"
	PurchaseOrderCompleted PurchaseOrderStatus = "COMPLETED"
	PurchaseOrderCancelled PurchaseOrderStatus = "CANCELLED"
)

type PurchaseOrder struct {
	BaseModel
	SupplierID  uuid.UUID           `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier    *Supplier           `gorm:"constraint:OnDelete:RESTRICT" json:"supplier,omitempty"`
	TotalAmount decimal.Decimal     `gorm:"type:decimal(20,2);not null" json:"total_amount"`
	Status      PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:PENDING;index" json:"status"`
	OrderDate   time.Time           `gorm:"not null" json:"order_date"`
	ReceivedAt  *time.Time          `json:"received_at,omitempty"`
	ReceivedBy  string              `gorm:"type:varchar(255)" json:"received_by,omitempty"`
	Items       []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID" json:"items"`
}

// Shortfall is how many units of an ordered line were never received.
type Shortfall struct {
	ProductID uuid.UUID `json:"product_id"`
	Ordered   int       `json:"ordered"`
	Received  int       `json:"received"`
	Missing   int       `json:"missing"`
}

func (po PurchaseOrder) Shortfalls() []Shortfall {
	var out []Shortfall
	for _, item := range po.Items {
		if missing := item.Quantity - item.QuantityReceived; missing > 0 {
			out = append(out, Shortfall{
				ProductID: item.ProductID,
				Ordered:   item.Quantity,
				Received:  item.QuantityReceived,
				Missing:   missing,
			})
		}
	}
	return out
}

type PurchaseOrderItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product          *Product        `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	PriceAtPurchase  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price_at_purchase"`
	QuantityReceived int             `gorm:"not null;default:0" json:"quantity_received"`
}

func (i *PurchaseOrderItem) BeforeCreate(tx *gorm.DB) (err error) {
	i.ID = ensureID(i.ID)
	return
}
