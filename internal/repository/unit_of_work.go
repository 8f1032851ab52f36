package repository

import (
	"context"

	"pos-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryTx is everything a stock-changing unit of work may read or write.
// Lock* methods return gorm.ErrRecordNotFound for unknown ids.
type InventoryTx interface {
	LockProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	SetStock(ctx context.Context, productID uuid.UUID, stock int, updatedBy string) error
	CreateProduct(ctx context.Context, product *model.Product) error
	CreateSale(ctx context.Context, sale *model.Sale) error
	AppendMovement(ctx context.Context, movement *model.StockMovement) error
	LockPurchaseOrder(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	SavePurchaseOrderReceipt(ctx context.Context, po *model.PurchaseOrder) error
}

// UnitOfWork runs fn atomically: every write made through tx is committed when
// fn returns nil and discarded when it returns an error or panics.
type UnitOfWork interface {
	Transaction(ctx context.Context, fn func(tx InventoryTx) error) error
}

type unitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Transaction(ctx context.Context, fn func(tx InventoryTx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&inventoryTx{db: tx})
	})
}

type inventoryTx struct {
	db *gorm.DB
}

func (t *inventoryTx) LockProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	// SELECT ... FOR UPDATE: concurrent registers queue here instead of overselling
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (t *inventoryTx) SetStock(ctx context.Context, productID uuid.UUID, stock int, updatedBy string) error {
	return t.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"stock":      stock,
			"updated_by": updatedBy,
		}).Error
}

func (t *inventoryTx) CreateProduct(ctx context.Context, product *model.Product) error {
	return t.db.WithContext(ctx).Omit("Category").Create(product).Error
}

func (t *inventoryTx) CreateSale(ctx context.Context, sale *model.Sale) error {
	return t.db.WithContext(ctx).Omit("User", "Items.Product").Create(sale).Error
}

func (t *inventoryTx) AppendMovement(ctx context.Context, movement *model.StockMovement) error {
	return t.db.WithContext(ctx).Omit(clause.Associations).Create(movement).Error
}

func (t *inventoryTx) LockPurchaseOrder(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&po, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	// Items are guarded by the header lock
	if err := t.db.WithContext(ctx).Where("purchase_order_id = ?", po.ID).Find(&po.Items).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (t *inventoryTx) SavePurchaseOrderReceipt(ctx context.Context, po *model.PurchaseOrder) error {
	err := t.db.WithContext(ctx).Model(&model.PurchaseOrder{}).
		Where("id = ?", po.ID).
		Updates(map[string]interface{}{
			"status":      po.Status,
			"received_at": po.ReceivedAt,
			"received_by": po.ReceivedBy,
			"updated_by":  po.UpdatedBy,
		}).Error
	if err != nil {
		return err
	}

	for _, item := range po.Items {
		err := t.db.WithContext(ctx).Model(&model.PurchaseOrderItem{}).
			Where("id = ?", item.ID).
			Update("quantity_received", item.QuantityReceived).Error
		if err != nil {
			return err
		}
	}
	return nil
}
