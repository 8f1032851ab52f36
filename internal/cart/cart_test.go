package cart

import (
	"errors"
	"testing"

	"pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newProduct(name string, price int64, stock int) model.Product {
	return model.Product{
		BaseModel:    model.BaseModel{ID: uuid.New()},
		Name:         name,
		SellingPrice: decimal.NewFromInt(price),
		Stock:        stock,
		CategoryID:   uuid.New(),
	}
}

func TestAddAppliesPromotionAndIncrements(t *testing.T) {
	c := New()
	p := newProduct("Kopi", 10000, 3)
	promos := []model.Promotion{{DiscountPercent: 10, IsActive: true}}

	for i := 0; i < 2; i++ {
		if err := c.Add(p, promos); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 || lines[0].DiscountApplied != 10 {
		t.Fatalf("expected qty 2 at 10%%, got %d at %d%%", lines[0].Quantity, lines[0].DiscountApplied)
	}
	if !lines[0].Price.Equal(decimal.NewFromInt(9000)) || !lines[0].OriginalPrice.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected 9000 from 10000, got %s from %s", lines[0].Price, lines[0].OriginalPrice)
	}
	if !c.Total().Equal(decimal.NewFromInt(18000)) {
		t.Fatalf("expected total 18000, got %s", c.Total())
	}
}

func TestAddBeyondStockLeavesLineUnchanged(t *testing.T) {
	c := New()
	p := newProduct("Teh", 5000, 1)
	if err := c.Add(p, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := c.Add(p, nil)
	if !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("expected ErrStockInsufficient, got %v", err)
	}
	if c.Lines()[0].Quantity != 1 {
		t.Fatalf("expected quantity to stay 1, got %d", c.Lines()[0].Quantity)
	}
}

func TestAddOutOfStockProductRejected(t *testing.T) {
	c := New()
	if err := c.Add(newProduct("Roti", 7000, 0), nil); !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("expected ErrStockInsufficient, got %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("expected empty cart")
	}
}

func TestChangeQuantity(t *testing.T) {
	c := New()
	kopi := newProduct("Kopi", 10000, 5)
	teh := newProduct("Teh", 5000, 5)
	_ = c.Add(kopi, nil)
	_ = c.Add(teh, nil)

	if err := c.ChangeQuantity(kopi.ID, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.ChangeQuantity(kopi.ID, 2); !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("expected ErrStockInsufficient, got %v", err)
	}
	if c.Lines()[0].Quantity != 4 {
		t.Fatalf("expected kopi qty 4, got %d", c.Lines()[0].Quantity)
	}

	if err := c.ChangeQuantity(teh.ID, -1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := c.Lines()
	if len(lines) != 1 || lines[0].ProductID != kopi.ID {
		t.Fatalf("expected only kopi left, got %+v", lines)
	}
}

func TestSaleLinesCarryResolvedPrice(t *testing.T) {
	c := New()
	p := newProduct("Kopi", 10000, 5)
	_ = c.Add(p, []model.Promotion{{DiscountPercent: 25, IsActive: true}})
	_ = c.ChangeQuantity(p.ID, 1)

	lines := c.SaleLines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 sale line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 || !lines[0].Price.Equal(decimal.NewFromInt(7500)) {
		t.Fatalf("expected 2 x 7500, got %d x %s", lines[0].Quantity, lines[0].Price)
	}
}
