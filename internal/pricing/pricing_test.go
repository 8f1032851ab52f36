package pricing

import (
	"testing"
	"time"

	"pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func product(price int64, categoryID uuid.UUID) model.Product {
	return model.Product{Name: "Kopi Susu", SellingPrice: decimal.NewFromInt(price), CategoryID: categoryID}
}

func TestResolvePriceWithoutPromotions(t *testing.T) {
	p := product(10000, uuid.New())
	got := ResolvePrice(p, nil)
	if !got.FinalPrice.Equal(decimal.NewFromInt(10000)) || got.DiscountPercent != 0 {
		t.Fatalf("expected 10000 at 0%%, got %s at %d%%", got.FinalPrice, got.DiscountPercent)
	}
}

func TestGlobalPromotionBeatsSmallerCategoryPromotion(t *testing.T) {
	drinks := uuid.New()
	p := product(10000, drinks)
	promos := []model.Promotion{
		{DiscountPercent: 10, CategoryID: &drinks, IsActive: true},
		{DiscountPercent: 20, IsActive: true},
	}

	got := ResolvePrice(p, promos)
	if got.DiscountPercent != 20 {
		t.Fatalf("expected 20%% discount, got %d%%", got.DiscountPercent)
	}
	if !got.FinalPrice.Equal(decimal.NewFromInt(8000)) {
		t.Fatalf("expected final price 8000, got %s", got.FinalPrice)
	}
}

func TestPromotionForOtherCategoryIgnored(t *testing.T) {
	food := uuid.New()
	p := product(10000, uuid.New())
	got := ResolvePrice(p, []model.Promotion{{DiscountPercent: 50, CategoryID: &food, IsActive: true}})
	if got.DiscountPercent != 0 || !got.FinalPrice.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected no discount, got %s at %d%%", got.FinalPrice, got.DiscountPercent)
	}
}

func TestResolvePriceRoundsToCents(t *testing.T) {
	p := model.Product{SellingPrice: decimal.RequireFromString("9.99")}
	got := ResolvePrice(p, []model.Promotion{{DiscountPercent: 15, IsActive: true}})
	// 9.99 * 0.85 = 8.4915
	if got.FinalPrice.String() != "8.49" {
		t.Fatalf("expected 8.49, got %s", got.FinalPrice)
	}
}

func TestResolvePriceIsPureAndIdempotent(t *testing.T) {
	cat := uuid.New()
	p := product(12500, cat)
	promos := []model.Promotion{{DiscountPercent: 30, CategoryID: &cat, IsActive: true}}

	first := ResolvePrice(p, promos)
	second := ResolvePrice(p, promos)
	if !first.FinalPrice.Equal(second.FinalPrice) || first.DiscountPercent != second.DiscountPercent {
		t.Fatalf("expected identical results, got %v and %v", first, second)
	}
	if !p.SellingPrice.Equal(decimal.NewFromInt(12500)) {
		t.Fatalf("expected product untouched, got %s", p.SellingPrice)
	}
	if len(promos) != 1 || promos[0].DiscountPercent != 30 {
		t.Fatalf("expected promotions untouched")
	}
}

func TestFilterActivePromotions(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	promos := []model.Promotion{
		{Description: "running", IsActive: true, StartDate: now.AddDate(0, 0, -1), EndDate: now.AddDate(0, 0, 1)},
		{Description: "switched off", IsActive: false, StartDate: now.AddDate(0, 0, -1), EndDate: now.AddDate(0, 0, 1)},
		{Description: "expired", IsActive: true, StartDate: now.AddDate(0, 0, -9), EndDate: now.AddDate(0, 0, -1)},
		{Description: "future", IsActive: true, StartDate: now.AddDate(0, 0, 2), EndDate: now.AddDate(0, 0, 5)},
		{Description: "ends now", IsActive: true, StartDate: now.AddDate(0, 0, -1), EndDate: now},
	}

	got := FilterActivePromotions(promos, now, false)
	if len(got) != 3 {
		t.Fatalf("expected 3 active promotions without start gating, got %d", len(got))
	}

	got = FilterActivePromotions(promos, now, true)
	if len(got) != 2 {
		t.Fatalf("expected 2 active promotions with start gating, got %d", len(got))
	}
	for _, p := range got {
		if p.Description == "future" {
			t.Fatalf("expected future promotion to be gated by start date")
		}
	}
}
