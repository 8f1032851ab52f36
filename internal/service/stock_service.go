package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"pos-inventory/internal/model"
	"pos-inventory/internal/repository"
	"pos-inventory/internal/ws"
	"pos-inventory/pkg/apperror"

	"github.com/google/uuid"
)

const defaultAdjustmentReason = "Stok Opname"

type StockService interface {
	AdjustStock(ctx context.Context, actor Actor, req AdjustStockRequest) (*AdjustStockResult, error)
	GetMovements(ctx context.Context, actor Actor, productID uuid.UUID, limit int) ([]model.StockMovement, error)
	Reconcile(ctx context.Context, actor Actor, productID uuid.UUID) (*Reconciliation, error)
}

type AdjustStockItem struct {
	ProductID     uuid.UUID `json:"product_id" validate:"uuid_required"`
	PhysicalCount int       `json:"physical_count" validate:"gte=0"`
}

type AdjustStockRequest struct {
	Items  []AdjustStockItem `json:"items" validate:"required,min=1,dive"`
	Reason string            `json:"reason"`
}

// Adjustment is one stock correction that was actually written.
type Adjustment struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	PreviousStock int       `json:"previous_stock"`
	PhysicalCount int       `json:"physical_count"`
	Delta         int       `json:"delta"`
}

type AdjustStockResult struct {
	Adjustments []Adjustment `json:"adjustments"`
	Message     string       `json:"message"`
}

// Reconciliation compares a product's stock with the sum of its ledger.
type Reconciliation struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	Stock         int       `json:"stock"`
	LedgerBalance int       `json:"ledger_balance"`
	Balanced      bool      `json:"balanced"`
}

type stockService struct {
	uow       repository.UnitOfWork
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	notifier  Notifier
}

func NewStockService(uow repository.UnitOfWork, products repository.ProductRepository, movements repository.StockMovementRepository, notifier Notifier) StockService {
	return &stockService{
		uow:       uow,
		products:  products,
		movements: movements,
		notifier:  notifierOrNoop(notifier),
	}
}

// AdjustStock sets each listed product to its counted quantity (stock opname)
// and records the signed difference in the ledger. Items whose count already
// matches are skipped. Any failure rolls back the whole batch.
func (s *stockService) AdjustStock(ctx context.Context, actor Actor, req AdjustStockRequest) (*AdjustStockResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = defaultAdjustmentReason
	}

	items := append([]AdjustStockItem(nil), req.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return bytes.Compare(items[i].ProductID[:], items[j].ProductID[:]) < 0
	})

	var applied []Adjustment
	err := s.uow.Transaction(ctx, func(tx repository.InventoryTx) error {
		applied = applied[:0]
		for _, item := range items {
			product, err := tx.LockProduct(ctx, item.ProductID)
			if err != nil {
				return apperror.FromDB(err, "product")
			}

			delta := item.PhysicalCount - product.Stock
			if delta == 0 {
				continue
			}

			if err := tx.SetStock(ctx, product.ID, item.PhysicalCount, actor.Label()); err != nil {
				return apperror.FromDB(err, "product")
			}
			movement := &model.StockMovement{
				ProductID:      product.ID,
				Type:           model.MovementAdjustment,
				QuantityChange: delta,
				Reason:         reason,
				CreatedBy:      actor.Label(),
			}
			if err := tx.AppendMovement(ctx, movement); err != nil {
				return apperror.FromDB(err, "stock movement")
			}

			applied = append(applied, Adjustment{
				ProductID:     product.ID,
				Name:          product.Name,
				PreviousStock: product.Stock,
				PhysicalCount: item.PhysicalCount,
				Delta:         delta,
			})
		}
		return nil
	})
	if err != nil {
		err = apperror.FromDB(err, "stock adjustment")
		logInternal("stock", "AdjustStock", "adjust stock", len(items), err)
		return nil, err
	}

	if applied == nil {
		applied = []Adjustment{}
	}
	if len(applied) == 0 {
		return &AdjustStockResult{Adjustments: applied, Message: "Stock already matches the physical count, nothing adjusted"}, nil
	}

	stock := make(map[uuid.UUID]int, len(applied))
	for _, a := range applied {
		stock[a.ProductID] = a.PhysicalCount
	}
	s.notifier.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "stock_adjusted",
		Data:    map[string]interface{}{"stock": stock, "reason": reason},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s adjusted stock of %d product(s)", actor.Label(), len(applied)),
	})

	return &AdjustStockResult{
		Adjustments: applied,
		Message:     fmt.Sprintf("Stock adjusted for %d product(s)", len(applied)),
	}, nil
}

func (s *stockService) GetMovements(ctx context.Context, actor Actor, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, apperror.Validation("product_id is required")
	}
	movements, err := s.movements.FindByProduct(ctx, productID, limit)
	if err != nil {
		err = apperror.FromDB(err, "stock movement")
		logInternal("stock", "GetMovements", "list movements", productID, err)
		return nil, err
	}
	return movements, nil
}

func (s *stockService) Reconcile(ctx context.Context, actor Actor, productID uuid.UUID) (*Reconciliation, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		err = apperror.FromDB(err, "product")
		logInternal("stock", "Reconcile", "find product", productID, err)
		return nil, err
	}
	balance, err := s.movements.SumByProduct(ctx, productID)
	if err != nil {
		err = apperror.FromDB(err, "stock movement")
		logInternal("stock", "Reconcile", "sum ledger", productID, err)
		return nil, err
	}

	return &Reconciliation{
		ProductID:     product.ID,
		Name:          product.Name,
		Stock:         product.Stock,
		LedgerBalance: balance,
		Balanced:      product.Stock == balance,
	}, nil
}
