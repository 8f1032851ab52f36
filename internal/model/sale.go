package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentQRIS       PaymentMethod = "QRIS"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentQRIS, PaymentDebitCard, PaymentCreditCard:
		return true
	}
	return false
}

// Sale is written once by the sale commit and never updated afterwards.
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	InvoiceNumber string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"invoice_number"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_amount"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	SaleDate      time.Time       `gorm:"not null;index" json:"sale_date"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID" json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) (err error) {
	s.ID = ensureID(s.ID)
	return
}

type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product     *Product        `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	PriceAtSale decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price_at_sale"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) (err error) {
	i.ID = ensureID(i.ID)
	return
}

func (i SaleItem) Subtotal() decimal.Decimal {
	return i.PriceAtSale.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
