package handler

import (
	"pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PurchaseHandler struct {
	service service.PurchaseService
}

func NewPurchaseHandler(s service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: s}
}

type receiveRequest struct {
	Items []service.ReceivedLine `json:"items"`
}

// GET /api/v1/purchase-orders
func (h *PurchaseHandler) GetPurchaseOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetPurchaseOrders(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// GET /api/v1/purchase-orders/:id
func (h *PurchaseHandler) GetPurchaseOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	po, err := h.service.GetPurchaseOrder(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(po)
}

// POST /api/v1/purchase-orders
func (h *PurchaseHandler) CreatePurchaseOrder(c *fiber.Ctx) error {
	var req service.CreatePurchaseOrderRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	po, err := h.service.CreatePurchaseOrder(c.UserContext(), actorFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Purchase order created", "data": po})
}

// ReceivePurchaseOrder books delivered goods into stock
// POST /api/v1/purchase-orders/:id/receive
func (h *PurchaseHandler) ReceivePurchaseOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req receiveRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.service.ReceivePurchaseOrder(c.UserContext(), actorFrom(c), id, req.Items)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
