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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const initialStockReason = "Initial stock"

type CatalogService interface {
	GetProducts(ctx context.Context, actor Actor) ([]model.Product, error)
	GetProduct(ctx context.Context, actor Actor, id uuid.UUID) (*model.Product, error)
	CreateProduct(ctx context.Context, actor Actor, req ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, actor Actor, id uuid.UUID, req ProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, actor Actor, id uuid.UUID) error

	GetCategories(ctx context.Context, actor Actor, page, limit int) (*CategoryPage, error)
	CreateCategory(ctx context.Context, actor Actor, req CategoryRequest) (*model.Category, error)
	UpdateCategory(ctx context.Context, actor Actor, id uuid.UUID, req CategoryRequest) (*model.Category, error)
	DeleteCategory(ctx context.Context, actor Actor, id uuid.UUID) error

	GetSuppliers(ctx context.Context, actor Actor) ([]model.Supplier, error)
	CreateSupplier(ctx context.Context, actor Actor, req SupplierRequest) (*model.Supplier, error)
	UpdateSupplier(ctx context.Context, actor Actor, id uuid.UUID, req SupplierRequest) (*model.Supplier, error)
	DeleteSupplier(ctx context.Context, actor Actor, id uuid.UUID) error

	GetPromotions(ctx context.Context, actor Actor) ([]PromotionView, error)
	GetActivePromotions(ctx context.Context, actor Actor) ([]model.Promotion, error)
	CreatePromotion(ctx context.Context, actor Actor, req PromotionRequest) (*model.Promotion, error)
	UpdatePromotion(ctx context.Context, actor Actor, id uuid.UUID, req PromotionRequest) (*model.Promotion, error)
	DeletePromotion(ctx context.Context, actor Actor, id uuid.UUID) error
}

type ProductRequest struct {
	SKU           string          `json:"sku" validate:"required,min=3"`
	Name          string          `json:"name" validate:"required,min=3"`
	Description   string          `json:"description"`
	CategoryID    uuid.UUID       `json:"category_id" validate:"uuid_required"`
	SellingPrice  decimal.Decimal `json:"selling_price" validate:"gte=0"`
	PurchasePrice decimal.Decimal `json:"purchase_price" validate:"gte=0"`
	// Stock is only read on create; afterwards stock moves through sales,
	// receipts and adjustments.
	Stock int `json:"stock" validate:"gte=0"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=3"`
}

type CategoryPage struct {
	Data  []model.Category `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type SupplierRequest struct {
	Name          string `json:"name" validate:"required,min=3"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

type PromotionRequest struct {
	Description     string     `json:"description" validate:"required,min=5"`
	DiscountPercent int        `json:"discount_percent" validate:"min=1,max=100"`
	StartDate       time.Time  `json:"start_date" validate:"required"`
	EndDate         time.Time  `json:"end_date" validate:"required,gtefield=StartDate"`
	IsActive        *bool      `json:"is_active"`
	CategoryID      *uuid.UUID `json:"category_id"`
}

// PromotionView is a promotion plus whether it is in effect right now.
type PromotionView struct {
	model.Promotion
	IsDynamicallyActive bool `json:"is_dynamically_active"`
}

type catalogService struct {
	uow        repository.UnitOfWork
	products   repository.ProductRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	promotions repository.PromotionRepository
	active     *ActivePromotions
	notifier   Notifier
}

func NewCatalogService(
	uow repository.UnitOfWork,
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	suppliers repository.SupplierRepository,
	promotions repository.PromotionRepository,
	active *ActivePromotions,
	notifier Notifier,
) CatalogService {
	return &catalogService{
		uow:        uow,
		products:   products,
		categories: categories,
		suppliers:  suppliers,
		promotions: promotions,
		active:     active,
		notifier:   notifierOrNoop(notifier),
	}
}

// ---- products ----

func (s *catalogService) GetProducts(ctx context.Context, actor Actor) ([]model.Product, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}
	products, err := s.products.FindAll(ctx)
	if err != nil {
		err = apperror.FromDB(err, "product")
		logInternal("catalog", "GetProducts", "list products", nil, err)
		return nil, err
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, actor Actor, id uuid.UUID) (*model.Product, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		err = apperror.FromDB(err, "product")
		logInternal("catalog", "GetProduct", "find product", id, err)
		return nil, err
	}
	return product, nil
}

// CreateProduct inserts the product and, when it starts with stock, the
// matching ADJUSTMENT ledger row in the same unit of work.
func (s *catalogService) CreateProduct(ctx context.Context, actor Actor, req ProductRequest) (*model.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	product := &model.Product{
		SKU:           req.SKU,
		Name:          req.Name,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		SellingPrice:  req.SellingPrice,
		PurchasePrice: req.PurchasePrice,
		Stock:         req.Stock,
	}
	product.ID = uuid.New()
	product.CreatedBy = actor.Label()
	product.UpdatedBy = actor.Label()

	err := s.uow.Transaction(ctx, func(tx repository.InventoryTx) error {
		if err := tx.CreateProduct(ctx, product); err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return apperror.Wrap(apperror.KindValidation, "category does not exist", err)
			}
			return apperror.FromDB(err, "product")
		}
		if product.Stock == 0 {
			return nil
		}
		return tx.AppendMovement(ctx, &model.StockMovement{
			ProductID:      product.ID,
			Type:           model.MovementAdjustment,
			QuantityChange: product.Stock,
			Reason:         initialStockReason,
			CreatedBy:      actor.Label(),
		})
	})
	if err != nil {
		err = apperror.FromDB(err, "product")
		logInternal("catalog", "CreateProduct", "create product", req.SKU, err)
		return nil, err
	}

	s.notifier.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "product_created",
		Data:    product,
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s created product '%s'", actor.Label(), product.Name),
	})
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, actor Actor, id uuid.UUID, req ProductRequest) (*model.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	product := &model.Product{
		SKU:           req.SKU,
		Name:          req.Name,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		SellingPrice:  req.SellingPrice,
		PurchasePrice: req.PurchasePrice,
	}
	product.ID = id
	product.UpdatedBy = actor.Label()

	if err := s.products.UpdateDetails(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, apperror.Wrap(apperror.KindValidation, "category does not exist", err)
		}
		err = apperror.FromDB(err, "product")
		logInternal("catalog", "UpdateProduct", "update product", id, err)
		return nil, err
	}

	updated, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.FromDB(err, "product")
	}

	s.notifier.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "product_updated",
		Data:    updated,
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s updated product '%s'", actor.Label(), updated.Name),
	})
	return updated, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperror.Wrap(apperror.KindReferential, "product has sales, purchases or stock history and cannot be deleted", err)
		}
		err = apperror.FromDB(err, "product")
		logInternal("catalog", "DeleteProduct", "delete product", id, err)
		return err
	}
	return nil
}

// ---- categories ----

func (s *catalogService) GetCategories(ctx context.Context, actor Actor, page, limit int) (*CategoryPage, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	categories, total, err := s.categories.FindPage(ctx, page, limit)
	if err != nil {
		err = apperror.FromDB(err, "category")
		logInternal("catalog", "GetCategories", "list categories", page, err)
		return nil, err
	}
	return &CategoryPage{Data: categories, Total: total, Page: page, Limit: limit}, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, actor Actor, req CategoryRequest) (*model.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	category := &model.Category{Name: req.Name}
	category.CreatedBy = actor.Label()
	category.UpdatedBy = actor.Label()
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(apperror.KindConflict, fmt.Sprintf("category %q already exists", req.Name), err)
		}
		err = apperror.FromDB(err, "category")
		logInternal("catalog", "CreateCategory", "create category", req.Name, err)
		return nil, err
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, actor Actor, id uuid.UUID, req CategoryRequest) (*model.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	category := &model.Category{Name: req.Name}
	category.ID = id
	category.UpdatedBy = actor.Label()
	if err := s.categories.Update(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(apperror.KindConflict, fmt.Sprintf("category %q already exists", req.Name), err)
		}
		err = apperror.FromDB(err, "category")
		logInternal("catalog", "UpdateCategory", "update category", id, err)
		return nil, err
	}
	return s.categories.FindByID(ctx, id)
}

func (s *catalogService) DeleteCategory(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperror.Wrap(apperror.KindReferential, "category is still used by products or promotions and cannot be deleted", err)
		}
		err = apperror.FromDB(err, "category")
		logInternal("catalog", "DeleteCategory", "delete category", id, err)
		return err
	}
	return nil
}

// ---- suppliers ----

func (s *catalogService) GetSuppliers(ctx context.Context, actor Actor) ([]model.Supplier, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}
	suppliers, err := s.suppliers.FindAll(ctx)
	if err != nil {
		err = apperror.FromDB(err, "supplier")
		logInternal("catalog", "GetSuppliers", "list suppliers", nil, err)
		return nil, err
	}
	return suppliers, nil
}

func (s *catalogService) CreateSupplier(ctx context.Context, actor Actor, req SupplierRequest) (*model.Supplier, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	supplier := &model.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Address:       req.Address,
	}
	supplier.CreatedBy = actor.Label()
	supplier.UpdatedBy = actor.Label()
	if err := s.suppliers.Create(ctx, supplier); err != nil {
		err = apperror.FromDB(err, "supplier")
		logInternal("catalog", "CreateSupplier", "create supplier", req.Name, err)
		return nil, err
	}
	return supplier, nil
}

func (s *catalogService) UpdateSupplier(ctx context.Context, actor Actor, id uuid.UUID, req SupplierRequest) (*model.Supplier, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	supplier := &model.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Address:       req.Address,
	}
	supplier.ID = id
	supplier.UpdatedBy = actor.Label()
	if err := s.suppliers.Update(ctx, supplier); err != nil {
		err = apperror.FromDB(err, "supplier")
		logInternal("catalog", "UpdateSupplier", "update supplier", id, err)
		return nil, err
	}
	return s.suppliers.FindByID(ctx, id)
}

func (s *catalogService) DeleteSupplier(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.suppliers.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperror.Wrap(apperror.KindReferential, "supplier has purchase orders and cannot be deleted", err)
		}
		err = apperror.FromDB(err, "supplier")
		logInternal("catalog", "DeleteSupplier", "delete supplier", id, err)
		return err
	}
	return nil
}

// ---- promotions ----

func (s *catalogService) GetPromotions(ctx context.Context, actor Actor) ([]PromotionView, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}
	promotions, err := s.promotions.FindAll(ctx)
	if err != nil {
		err = apperror.FromDB(err, "promotion")
		logInternal("catalog", "GetPromotions", "list promotions", nil, err)
		return nil, err
	}

	views := make([]PromotionView, len(promotions))
	for i, p := range promotions {
		views[i] = PromotionView{Promotion: p, IsDynamicallyActive: s.active.IsActive(p)}
	}
	return views, nil
}

func (s *catalogService) GetActivePromotions(ctx context.Context, actor Actor) ([]model.Promotion, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}
	return s.active.ActivePromotions(ctx)
}

func (s *catalogService) CreatePromotion(ctx context.Context, actor Actor, req PromotionRequest) (*model.Promotion, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	promotion := promotionFromRequest(req)
	promotion.CreatedBy = actor.Label()
	promotion.UpdatedBy = actor.Label()
	if err := s.promotions.Create(ctx, promotion); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, apperror.Wrap(apperror.KindValidation, "category does not exist", err)
		}
		err = apperror.FromDB(err, "promotion")
		logInternal("catalog", "CreatePromotion", "create promotion", req.Description, err)
		return nil, err
	}
	s.active.Invalidate(ctx)
	return promotion, nil
}

func (s *catalogService) UpdatePromotion(ctx context.Context, actor Actor, id uuid.UUID, req PromotionRequest) (*model.Promotion, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	promotion := promotionFromRequest(req)
	promotion.ID = id
	promotion.UpdatedBy = actor.Label()
	if err := s.promotions.Update(ctx, promotion); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, apperror.Wrap(apperror.KindValidation, "category does not exist", err)
		}
		err = apperror.FromDB(err, "promotion")
		logInternal("catalog", "UpdatePromotion", "update promotion", id, err)
		return nil, err
	}
	s.active.Invalidate(ctx)
	return s.promotions.FindByID(ctx, id)
}

func (s *catalogService) DeletePromotion(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.promotions.Delete(ctx, id); err != nil {
		err = apperror.FromDB(err, "promotion")
		logInternal("catalog", "DeletePromotion", "delete promotion", id, err)
		return err
	}
	s.active.Invalidate(ctx)
	return nil
}

func promotionFromRequest(req PromotionRequest) *model.Promotion {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &model.Promotion{
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		IsActive:        active,
		CategoryID:      req.CategoryID,
	}
}
