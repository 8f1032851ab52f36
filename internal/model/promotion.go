package model

import (
	"time"

	"github.com/google/uuid"
)

// Promotion is a percentage discount, optionally scoped to one category.
type Promotion struct {
	BaseModel
	Description     string     `gorm:"type:varchar(255);not null" json:"description" validate:"required,min=5"`
	DiscountPercent int        `gorm:"not null" json:"discount_percent" validate:"min=1,max=100"`
	StartDate       time.Time  `gorm:"not null" json:"start_date" validate:"required"`
	EndDate         time.Time  `gorm:"not null;index" json:"end_date" validate:"required,gtefield=StartDate"`
	IsActive        bool       `gorm:"default:true;index" json:"is_active"`
	CategoryID      *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	Category        *Category  `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty" validate:"-"`
}

// AppliesTo reports whether the promotion covers products of categoryID.
// A promotion without a category applies to every category.
func (p Promotion) AppliesTo(categoryID uuid.UUID) bool {
	return p.CategoryID == nil || *p.CategoryID == categoryID
}

// IsEffective reports whether the promotion is switched on and not yet over at now.
// The start date only gates when enforceStart is set.
func (p Promotion) IsEffective(now time.Time, enforceStart bool) bool {
	if !p.IsActive || now.After(p.EndDate) {
		return false
	}
	if enforceStart && now.Before(p.StartDate) {
		return false
	}
	return true
}
