package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pos-inventory/internal/cart"
	"pos-inventory/internal/model"
	"pos-inventory/internal/repository"
	"pos-inventory/internal/ws"
	"pos-inventory/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInsufficientStock is wrapped by the conflict returned when a sale asks
// for more units than are on the shelf.
var ErrInsufficientStock = errors.New("insufficient stock")

type POSService interface {
	GetPosData(ctx context.Context, actor Actor) (*PosData, error)
	Quote(ctx context.Context, actor Actor, req QuoteRequest) (*Quote, error)
	CommitSale(ctx context.Context, actor Actor, req CommitSaleRequest) (*SaleResult, error)
	GetSale(ctx context.Context, actor Actor, id uuid.UUID) (*model.Sale, error)
}

type PosData struct {
	Products   []model.Product   `json:"products"`
	Promotions []model.Promotion `json:"promotions"`
}

type QuoteItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
}

type QuoteRequest struct {
	Items []QuoteItem `json:"items" validate:"required,min=1,dive"`
}

type Quote struct {
	Lines []cart.Line     `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

type CommitSaleRequest struct {
	Lines         []cart.SaleLine     `json:"lines" validate:"required,min=1,dive"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"required,enum"`
}

type SaleResult struct {
	Sale    *model.Sale `json:"sale"`
	Message string      `json:"message"`
}

type posService struct {
	uow        repository.UnitOfWork
	products   repository.ProductRepository
	sales      repository.SaleRepository
	promotions PromotionLister
	notifier   Notifier
	now        func() time.Time
}

func NewPOSService(
	uow repository.UnitOfWork,
	products repository.ProductRepository,
	sales repository.SaleRepository,
	promotions PromotionLister,
	notifier Notifier,
) POSService {
	return &posService{
		uow:        uow,
		products:   products,
		sales:      sales,
		promotions: promotions,
		notifier:   notifierOrNoop(notifier),
		now:        time.Now,
	}
}

func (s *posService) GetPosData(ctx context.Context, actor Actor) (*PosData, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}

	products, err := s.products.FindInStock(ctx)
	if err != nil {
		err = apperror.FromDB(err, "product")
		logInternal("pos", "GetPosData", "find in-stock products", nil, err)
		return nil, err
	}

	promotions, err := s.promotions.ActivePromotions(ctx)
	if err != nil {
		return nil, err
	}

	return &PosData{Products: products, Promotions: promotions}, nil
}

// Quote prices a prospective cart the same way the register does.
func (s *posService) Quote(ctx context.Context, actor Actor, req QuoteRequest) (*Quote, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		err = apperror.FromDB(err, "product")
		logInternal("pos", "Quote", "find products", ids, err)
		return nil, err
	}
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	promotions, err := s.promotions.ActivePromotions(ctx)
	if err != nil {
		return nil, err
	}

	c := cart.New()
	for _, item := range req.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, apperror.NotFound(fmt.Sprintf("product %s not found", item.ProductID))
		}
		if err := c.Add(product, promotions); err != nil {
			return nil, apperror.Wrap(apperror.KindConflict, err.Error(), err)
		}
		if err := c.ChangeQuantity(product.ID, item.Quantity-1); err != nil {
			return nil, apperror.Wrap(apperror.KindConflict, err.Error(), err)
		}
	}

	return &Quote{Lines: c.Lines(), Total: c.Total()}, nil
}

// CommitSale records a sale atomically: header, items, stock decrement and a
// SALE ledger row per line. Stock is re-read under lock, so a cart built from
// stale data cannot oversell.
func (s *posService) CommitSale(ctx context.Context, actor Actor, req CommitSaleRequest) (*SaleResult, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	requested := make(map[uuid.UUID]int, len(req.Lines))
	for _, line := range req.Lines {
		requested[line.ProductID] += line.Quantity
	}
	ids := sortedIDs(requested)

	now := s.now()
	sale := &model.Sale{
		InvoiceNumber: newInvoiceNumber(now),
		PaymentMethod: req.PaymentMethod,
		SaleDate:      now,
		UserID:        actor.UserID,
	}
	remaining := make(map[uuid.UUID]int, len(ids))

	err := s.uow.Transaction(ctx, func(tx repository.InventoryTx) error {
		products := make(map[uuid.UUID]*model.Product, len(ids))
		for _, id := range ids {
			product, err := tx.LockProduct(ctx, id)
			if err != nil {
				return apperror.FromDB(err, "product")
			}
			if product.Stock < requested[id] {
				return apperror.Wrap(apperror.KindConflict,
					fmt.Sprintf("insufficient stock for product %s (remaining %d)", product.Name, product.Stock),
					ErrInsufficientStock)
			}
			products[id] = product
		}

		total := decimal.Zero
		sale.Items = make([]model.SaleItem, 0, len(req.Lines))
		for _, line := range req.Lines {
			item := model.SaleItem{ProductID: line.ProductID, Quantity: line.Quantity, PriceAtSale: line.Price}
			sale.Items = append(sale.Items, item)
			total = total.Add(item.Subtotal())
		}
		sale.TotalAmount = total

		if err := tx.CreateSale(ctx, sale); err != nil {
			return apperror.FromDB(err, "sale")
		}

		for _, id := range ids {
			stock := products[id].Stock - requested[id]
			if err := tx.SetStock(ctx, id, stock, actor.Label()); err != nil {
				return apperror.FromDB(err, "product")
			}
			remaining[id] = stock
		}

		for _, line := range req.Lines {
			movement := &model.StockMovement{
				ProductID:      line.ProductID,
				Type:           model.MovementSale,
				QuantityChange: -line.Quantity,
				Reason:         "Sale " + sale.InvoiceNumber,
				SaleID:         &sale.ID,
				CreatedBy:      actor.Label(),
			}
			if err := tx.AppendMovement(ctx, movement); err != nil {
				return apperror.FromDB(err, "stock movement")
			}
		}
		return nil
	})
	if err != nil {
		err = apperror.FromDB(err, "sale")
		logInternal("pos", "CommitSale", "commit sale", sale.InvoiceNumber, err)
		return nil, err
	}

	s.notifier.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "sale_committed",
		Data:    map[string]interface{}{"sale_id": sale.ID, "invoice_number": sale.InvoiceNumber, "stock": remaining},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s recorded sale %s", actor.Label(), sale.InvoiceNumber),
	})

	return &SaleResult{
		Sale:    sale,
		Message: fmt.Sprintf("Sale %s recorded successfully", sale.InvoiceNumber),
	}, nil
}

func (s *posService) GetSale(ctx context.Context, actor Actor, id uuid.UUID) (*model.Sale, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		err = apperror.FromDB(err, "sale")
		logInternal("pos", "GetSale", "find sale", id, err)
		return nil, err
	}
	return sale, nil
}

// newInvoiceNumber renders INV-YYYYMMDD-XXXXXXXX with a random suffix.
func newInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), suffix)
}
