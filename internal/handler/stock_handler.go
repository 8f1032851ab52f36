package handler

import (
	"pos-inventory/internal/service"
	"pos-inventory/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StockHandler struct {
	service service.StockService
}

func NewStockHandler(s service.StockService) *StockHandler {
	return &StockHandler{service: s}
}

// AdjustStock applies a stock opname
// POST /api/v1/stock/adjustments
func (h *StockHandler) AdjustStock(c *fiber.Ctx) error {
	var req service.AdjustStockRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.service.AdjustStock(c.UserContext(), actorFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetMovements lists the ledger of one product, newest first
// GET /api/v1/stock/movements?product_id=&limit=
func (h *StockHandler) GetMovements(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		return respondError(c, apperror.Validation("Invalid product_id"))
	}

	movements, err := h.service.GetMovements(c.UserContext(), actorFrom(c), productID, c.QueryInt("limit", 100))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movements)
}

// GET /api/v1/stock/reconcile/:productId
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.service.Reconcile(c.UserContext(), actorFrom(c), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
