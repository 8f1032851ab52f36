// Package pricing resolves the price a product sells for under the
// promotions currently in effect.
package pricing

import (
	"time"

	"pos-inventory/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Resolution is the outcome of pricing one product.
type Resolution struct {
	FinalPrice      decimal.Decimal `json:"final_price"`
	DiscountPercent int             `json:"discount_percent"`
}

// ResolvePrice applies the largest discount among the promotions that cover
// the product's category. Promotions with no category cover everything.
// The caller passes only promotions already in effect.
func ResolvePrice(product model.Product, activePromotions []model.Promotion) Resolution {
	best := 0
	for _, promo := range activePromotions {
		if promo.AppliesTo(product.CategoryID) && promo.DiscountPercent > best {
			best = promo.DiscountPercent
		}
	}
	if best == 0 {
		return Resolution{FinalPrice: product.SellingPrice, DiscountPercent: 0}
	}

	factor := hundred.Sub(decimal.NewFromInt(int64(best))).Div(hundred)
	return Resolution{
		FinalPrice:      product.SellingPrice.Mul(factor).Round(2),
		DiscountPercent: best,
	}
}

// FilterActivePromotions keeps promotions that are switched on and whose end
// date has not passed. With enforceStart, promotions that have not started
// yet are dropped too.
func FilterActivePromotions(promotions []model.Promotion, now time.Time, enforceStart bool) []model.Promotion {
	out := make([]model.Promotion, 0, len(promotions))
	for _, promo := range promotions {
		if promo.IsEffective(now, enforceStart) {
			out = append(out, promo)
		}
	}
	return out
}
