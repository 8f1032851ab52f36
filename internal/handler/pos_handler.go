package handler

import (
	"pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type POSHandler struct {
	service service.POSService
}

func NewPOSHandler(s service.POSService) *POSHandler {
	return &POSHandler{service: s}
}

// GetPosData returns sellable products and the promotions in effect
// GET /api/v1/pos/data
func (h *POSHandler) GetPosData(c *fiber.Ctx) error {
	data, err := h.service.GetPosData(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(data)
}

// Quote prices a cart without recording anything
// POST /api/v1/pos/quote
func (h *POSHandler) Quote(c *fiber.Ctx) error {
	var req service.QuoteRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	quote, err := h.service.Quote(c.UserContext(), actorFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(quote)
}

// CommitSale records a sale
// POST /api/v1/pos/sales
func (h *POSHandler) CommitSale(c *fiber.Ctx) error {
	var req service.CommitSaleRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.service.CommitSale(c.UserContext(), actorFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(result)
}

// GET /api/v1/sales/:id
func (h *POSHandler) GetSale(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	sale, err := h.service.GetSale(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}
