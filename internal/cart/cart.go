// Package cart holds the in-progress sale of a register. It is a value kept
// by the client session and never persisted; committing it goes through the
// sale transaction, which re-checks stock under lock.
package cart

import (
	"errors"
	"fmt"

	"pos-inventory/internal/model"
	"pos-inventory/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrStockInsufficient is returned when a change would put more units in the
// cart than the product had in stock when it was added. The cart is left
// unchanged.
var ErrStockInsufficient = errors.New("insufficient stock")

type Line struct {
	ProductID       uuid.UUID       `json:"product_id"`
	Name            string          `json:"name"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	Stock           int             `json:"stock"`
	DiscountApplied int             `json:"discount_applied"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SaleLine is what the sale commit needs for one cart line.
type SaleLine struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
}

type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add puts one unit of product in the cart. A new line is priced with the
// best applicable promotion; an existing line just grows by one.
func (c *Cart) Add(product model.Product, promotions []model.Promotion) error {
	if i := c.index(product.ID); i >= 0 {
		line := &c.lines[i]
		if line.Quantity+1 > line.Stock {
			return fmt.Errorf("%w: only %d of %s left", ErrStockInsufficient, line.Stock, line.Name)
		}
		line.Quantity++
		return nil
	}

	if product.Stock < 1 {
		return fmt.Errorf("%w: %s is out of stock", ErrStockInsufficient, product.Name)
	}

	price := pricing.ResolvePrice(product, promotions)
	c.lines = append(c.lines, Line{
		ProductID:       product.ID,
		Name:            product.Name,
		OriginalPrice:   product.SellingPrice,
		Price:           price.FinalPrice,
		Quantity:        1,
		Stock:           product.Stock,
		DiscountApplied: price.DiscountPercent,
	})
	return nil
}

// ChangeQuantity adds delta to a line. Dropping to zero or below removes the
// line; unknown products are ignored.
func (c *Cart) ChangeQuantity(productID uuid.UUID, delta int) error {
	i := c.index(productID)
	if i < 0 {
		return nil
	}

	line := &c.lines[i]
	qty := line.Quantity + delta
	switch {
	case qty <= 0:
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	case qty > line.Stock:
		return fmt.Errorf("%w: only %d of %s left", ErrStockInsufficient, line.Stock, line.Name)
	default:
		line.Quantity = qty
	}
	return nil
}

// Remove drops a line regardless of its quantity.
func (c *Cart) Remove(productID uuid.UUID) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Lines returns a copy of the cart lines in the order they were added.
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) SaleLines() []SaleLine {
	out := make([]SaleLine, len(c.lines))
	for i, line := range c.lines {
		out[i] = SaleLine{ProductID: line.ProductID, Quantity: line.Quantity, Price: line.Price}
	}
	return out
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) index(productID uuid.UUID) int {
	for i, line := range c.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}
