package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pos-inventory/internal/model"
	"pos-inventory/internal/repository"
	"pos-inventory/internal/ws"
	"pos-inventory/pkg/apperror"
	"pos-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErrOrderNotPending is wrapped by the conflict returned when a purchase
// order that was already completed or cancelled is received again.
var ErrOrderNotPending = errors.New("purchase order is not pending")

type PurchaseService interface {
	CreatePurchaseOrder(ctx context.Context, actor Actor, req CreatePurchaseOrderRequest) (*model.PurchaseOrder, error)
	GetPurchaseOrders(ctx context.Context, actor Actor) ([]model.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, actor Actor, id uuid.UUID) (*model.PurchaseOrder, error)
	ReceivePurchaseOrder(ctx context.Context, actor Actor, poID uuid.UUID, lines []ReceivedLine) (*ReceiptResult, error)
}

type PurchaseOrderItemRequest struct {
	ProductID       uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity        int             `json:"quantity" validate:"min=1"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase" validate:"gte=0"`
}

type CreatePurchaseOrderRequest struct {
	SupplierID uuid.UUID                  `json:"supplier_id" validate:"uuid_required"`
	OrderDate  *time.Time                 `json:"order_date"`
	Items      []PurchaseOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type ReceivedLine struct {
	ProductID        uuid.UUID `json:"product_id" validate:"uuid_required"`
	QuantityReceived int       `json:"quantity_received" validate:"gte=0"`
}

type receiveRequest struct {
	Lines []ReceivedLine `validate:"dive"`
}

type ReceiptResult struct {
	PurchaseOrder *model.PurchaseOrder `json:"purchase_order"`
	Shortfalls    []model.Shortfall    `json:"shortfalls"`
	Message       string               `json:"message"`
}

type purchaseService struct {
	uow      repository.UnitOfWork
	orders   repository.PurchaseOrderRepository
	notifier Notifier
	now      func() time.Time
}

func NewPurchaseService(uow repository.UnitOfWork, orders repository.PurchaseOrderRepository, notifier Notifier) PurchaseService {
	return &purchaseService{
		uow:      uow,
		orders:   orders,
		notifier: notifierOrNoop(notifier),
		now:      time.Now,
	}
}

func (s *purchaseService) CreatePurchaseOrder(ctx context.Context, actor Actor, req CreatePurchaseOrderRequest) (*model.PurchaseOrder, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	po := &model.PurchaseOrder{
		SupplierID: req.SupplierID,
		Status:     model.PurchaseOrderPending,
		OrderDate:  s.now(),
	}
	if req.OrderDate != nil {
		po.OrderDate = *req.OrderDate
	}
	po.CreatedBy = actor.Label()
	po.UpdatedBy = actor.Label()

	seen := make(map[uuid.UUID]bool, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		if seen[item.ProductID] {
			return nil, apperror.Validation(fmt.Sprintf("product %s appears more than once", item.ProductID))
		}
		seen[item.ProductID] = true

		po.Items = append(po.Items, model.PurchaseOrderItem{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		})
		total = total.Add(item.PriceAtPurchase.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	po.TotalAmount = total

	if err := s.orders.Create(ctx, po); err != nil {
		err = apperror.FromDB(err, "purchase order")
		logInternal("purchase", "CreatePurchaseOrder", "create purchase order", req.SupplierID, err)
		return nil, err
	}
	return po, nil
}

func (s *purchaseService) GetPurchaseOrders(ctx context.Context, actor Actor) ([]model.PurchaseOrder, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		err = apperror.FromDB(err, "purchase order")
		logInternal("purchase", "GetPurchaseOrders", "list purchase orders", nil, err)
		return nil, err
	}
	return orders, nil
}

func (s *purchaseService) GetPurchaseOrder(ctx context.Context, actor Actor, id uuid.UUID) (*model.PurchaseOrder, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}
	po, err := s.orders.FindByID(ctx, id)
	if err != nil {
		err = apperror.FromDB(err, "purchase order")
		logInternal("purchase", "GetPurchaseOrder", "find purchase order", id, err)
		return nil, err
	}
	return po, nil
}

// ReceivePurchaseOrder books the delivered goods of a pending order in one
// unit of work. The order is completed even when fewer units arrived than
// were ordered; the missing units are reported back as shortfalls.
func (s *purchaseService) ReceivePurchaseOrder(ctx context.Context, actor Actor, poID uuid.UUID, lines []ReceivedLine) (*ReceiptResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(&receiveRequest{Lines: lines}); err != nil {
		return nil, err
	}

	received := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		received[line.ProductID] += line.QuantityReceived
	}

	var (
		result *model.PurchaseOrder
		stock  = map[uuid.UUID]int{}
	)
	err := s.uow.Transaction(ctx, func(tx repository.InventoryTx) error {
		po, err := tx.LockPurchaseOrder(ctx, poID)
		if err != nil {
			return apperror.FromDB(err, "purchase order")
		}
		if po.Status != model.PurchaseOrderPending {
			return apperror.Wrap(apperror.KindConflict,
				fmt.Sprintf("purchase order is already %s", po.Status), ErrOrderNotPending)
		}

		itemIndex := make(map[uuid.UUID]int, len(po.Items))
		for i, item := range po.Items {
			itemIndex[item.ProductID] = i
		}
		for productID := range received {
			if _, ok := itemIndex[productID]; !ok {
				return apperror.Validation(fmt.Sprintf("product %s is not part of purchase order %s", productID, po.ID))
			}
		}

		now := s.now()
		po.Status = model.PurchaseOrderCompleted
		po.ReceivedAt = &now
		po.ReceivedBy = actor.Label()
		po.UpdatedBy = actor.Label()

		reason := fmt.Sprintf("Goods receipt for PO %s", po.ID)
		for _, productID := range sortedIDs(received) {
			qty := received[productID]
			if qty == 0 {
				continue
			}

			product, err := tx.LockProduct(ctx, productID)
			if err != nil {
				return apperror.FromDB(err, "product")
			}
			if err := tx.SetStock(ctx, productID, product.Stock+qty, actor.Label()); err != nil {
				return apperror.FromDB(err, "product")
			}
			stock[productID] = product.Stock + qty
			po.Items[itemIndex[productID]].QuantityReceived = qty

			movement := &model.StockMovement{
				ProductID:       productID,
				Type:            model.MovementPurchase,
				QuantityChange:  qty,
				Reason:          reason,
				PurchaseOrderID: &po.ID,
				CreatedBy:       actor.Label(),
			}
			if err := tx.AppendMovement(ctx, movement); err != nil {
				return apperror.FromDB(err, "stock movement")
			}
		}

		if err := tx.SavePurchaseOrderReceipt(ctx, po); err != nil {
			return apperror.FromDB(err, "purchase order")
		}
		result = po
		return nil
	})
	if err != nil {
		err = apperror.FromDB(err, "purchase order")
		logInternal("purchase", "ReceivePurchaseOrder", "receive purchase order", poID, err)
		return nil, err
	}

	shortfalls := result.Shortfalls()
	if shortfalls == nil {
		shortfalls = []model.Shortfall{}
	}
	message := "Goods received, purchase order completed"
	if len(shortfalls) > 0 {
		logger.WithModule("purchase").WithFields(logrus.Fields{
			"purchase_order_id": result.ID,
			"shortfalls":        shortfalls,
		}).Warn("purchase order completed with shortfalls")
		message = fmt.Sprintf("Goods received with %d short line(s), purchase order completed", len(shortfalls))
	}

	s.notifier.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "goods_received",
		Data:    map[string]interface{}{"purchase_order_id": result.ID, "stock": stock},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s received purchase order %s", actor.Label(), result.ID),
	})

	return &ReceiptResult{PurchaseOrder: result, Shortfalls: shortfalls, Message: message}, nil
}
