// Package memory is an in-process implementation of the inventory unit of
// work and its read repositories, used by service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pos-inventory/internal/model"
	"pos-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type state struct {
	products  map[uuid.UUID]model.Product
	orders    map[uuid.UUID]model.PurchaseOrder
	sales     []model.Sale
	movements []model.StockMovement
}

func (s *state) clone() *state {
	out := &state{
		products:  make(map[uuid.UUID]model.Product, len(s.products)),
		orders:    make(map[uuid.UUID]model.PurchaseOrder, len(s.orders)),
		sales:     append([]model.Sale(nil), s.sales...),
		movements: append([]model.StockMovement(nil), s.movements...),
	}
	for id, p := range s.products {
		out.products[id] = p
	}
	for id, po := range s.orders {
		po.Items = append([]model.PurchaseOrderItem(nil), po.Items...)
		out.orders[id] = po
	}
	return out
}

// Store holds one mutex for the duration of a unit of work, so transactions
// are fully serialized. Writes land on a copy that replaces the live state
// only when the callback succeeds.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

func New() *Store {
	return &Store{
		state: &state{
			products: map[uuid.UUID]model.Product{},
			orders:   map[uuid.UUID]model.PurchaseOrder{},
		},
		now: time.Now,
	}
}

var _ repository.UnitOfWork = (*Store)(nil)

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.InventoryTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(&tx{state: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// AddProduct seeds a product. Non-zero stock is recorded as an initial
// ADJUSTMENT movement so the ledger balances from the start.
func (s *Store) AddProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.state.products[p.ID] = p
	if p.Stock != 0 {
		s.state.movements = append(s.state.movements, model.StockMovement{
			ID:             uuid.New(),
			ProductID:      p.ID,
			Type:           model.MovementAdjustment,
			QuantityChange: p.Stock,
			Reason:         "Initial stock",
			CreatedAt:      s.now(),
		})
	}
	return p
}

func (s *Store) AddPurchaseOrder(po model.PurchaseOrder) model.PurchaseOrder {
	s.mu.Lock()
	defer s.mu.Unlock()

	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	if po.Status == "" {
		po.Status = model.PurchaseOrderPending
	}
	for i := range po.Items {
		if po.Items[i].ID == uuid.Nil {
			po.Items[i].ID = uuid.New()
		}
		po.Items[i].PurchaseOrderID = po.ID
	}
	po.Items = append([]model.PurchaseOrderItem(nil), po.Items...)
	s.state.orders[po.ID] = po
	return po
}

func (s *Store) Product(id uuid.UUID) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.products[id]
	return p, ok
}

func (s *Store) PurchaseOrder(id uuid.UUID) (model.PurchaseOrder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	po, ok := s.state.orders[id]
	if ok {
		po.Items = append([]model.PurchaseOrderItem(nil), po.Items...)
	}
	return po, ok
}

// Movements returns the ledger of one product in insertion order.
func (s *Store) Movements(productID uuid.UUID) []model.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.StockMovement
	for _, m := range s.state.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

func (s *Store) Sales() []model.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Sale(nil), s.state.sales...)
}

type tx struct {
	state *state
	now   func() time.Time
}

func (t *tx) LockProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := t.state.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (t *tx) SetStock(ctx context.Context, productID uuid.UUID, stock int, updatedBy string) error {
	p, ok := t.state.products[productID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stock < 0 {
		return fmt.Errorf("stock of product %s would become %d", productID, stock)
	}
	p.Stock = stock
	p.UpdatedBy = updatedBy
	p.UpdatedAt = t.now()
	t.state.products[productID] = p
	return nil
}

func (t *tx) CreateProduct(ctx context.Context, product *model.Product) error {
	for _, p := range t.state.products {
		if p.SKU == product.SKU {
			return gorm.ErrDuplicatedKey
		}
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = t.now()
	product.UpdatedAt = product.CreatedAt
	t.state.products[product.ID] = *product
	return nil
}

func (t *tx) CreateSale(ctx context.Context, sale *model.Sale) error {
	for _, s := range t.state.sales {
		if s.InvoiceNumber == sale.InvoiceNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	sale.CreatedAt = t.now()
	items := make([]model.SaleItem, len(sale.Items))
	for i, item := range sale.Items {
		if _, ok := t.state.products[item.ProductID]; !ok {
			return gorm.ErrForeignKeyViolated
		}
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.SaleID = sale.ID
		items[i] = item
	}
	sale.Items = items
	stored := *sale
	stored.Items = append([]model.SaleItem(nil), items...)
	t.state.sales = append(t.state.sales, stored)
	return nil
}

func (t *tx) AppendMovement(ctx context.Context, movement *model.StockMovement) error {
	if _, ok := t.state.products[movement.ProductID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = t.now()
	}
	t.state.movements = append(t.state.movements, *movement)
	return nil
}

func (t *tx) LockPurchaseOrder(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, ok := t.state.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	po.Items = append([]model.PurchaseOrderItem(nil), po.Items...)
	return &po, nil
}

func (t *tx) SavePurchaseOrderReceipt(ctx context.Context, po *model.PurchaseOrder) error {
	stored, ok := t.state.orders[po.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Status = po.Status
	stored.ReceivedAt = po.ReceivedAt
	stored.ReceivedBy = po.ReceivedBy
	stored.UpdatedBy = po.UpdatedBy
	received := make(map[uuid.UUID]int, len(po.Items))
	for _, item := range po.Items {
		received[item.ID] = item.QuantityReceived
	}
	items := append([]model.PurchaseOrderItem(nil), stored.Items...)
	for i := range items {
		if qty, ok := received[items[i].ID]; ok {
			items[i].QuantityReceived = qty
		}
	}
	stored.Items = items
	t.state.orders[po.ID] = stored
	return nil
}

// ProductRepo exposes the catalog reads over the same state.
func (s *Store) ProductRepo() repository.ProductRepository {
	return &productRepo{store: s}
}

type productRepo struct {
	store *Store
}

func (r *productRepo) list(keep func(model.Product) bool) []model.Product {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []model.Product{}
	for _, p := range r.store.state.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	return r.list(func(model.Product) bool { return true }), nil
}

func (r *productRepo) FindInStock(ctx context.Context) ([]model.Product, error) {
	return r.list(func(p model.Product) bool { return p.Stock > 0 }), nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.list(func(p model.Product) bool { return want[p.ID] }), nil
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.store.Product(id)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	found := r.list(func(p model.Product) bool { return p.SKU == sku })
	if len(found) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &found[0], nil
}

func (r *productRepo) FindLowStock(ctx context.Context, threshold int, limit int) ([]model.Product, error) {
	out := r.list(func(p model.Product) bool { return p.Stock <= threshold })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.state.products)), nil
}

func (r *productRepo) UpdateDetails(ctx context.Context, product *model.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.state.products[product.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for id, p := range r.store.state.products {
		if id != product.ID && p.SKU == product.SKU {
			return gorm.ErrDuplicatedKey
		}
	}
	stored.SKU = product.SKU
	stored.Name = product.Name
	stored.Description = product.Description
	stored.CategoryID = product.CategoryID
	stored.SellingPrice = product.SellingPrice
	stored.PurchasePrice = product.PurchasePrice
	stored.UpdatedBy = product.UpdatedBy
	r.store.state.products[product.ID] = stored
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.state.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, m := range r.store.state.movements {
		if m.ProductID == id {
			return gorm.ErrForeignKeyViolated
		}
	}
	delete(r.store.state.products, id)
	return nil
}

// MovementRepo exposes the ledger reads over the same state.
func (s *Store) MovementRepo() repository.StockMovementRepository {
	return &movementRepo{store: s}
}

type movementRepo struct {
	store *Store
}

func (r *movementRepo) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	all := r.store.Movements(productID)
	out := make([]model.StockMovement, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *movementRepo) SumByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	total := 0
	for _, m := range r.store.Movements(productID) {
		total += m.QuantityChange
	}
	return total, nil
}

func (r *movementRepo) GetDailyMovement(ctx context.Context, startDate, endDate time.Time) ([]repository.StockMovementData, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	byDay := map[string]*repository.StockMovementData{}
	for _, m := range r.store.state.movements {
		if m.CreatedAt.Before(startDate) || m.CreatedAt.After(endDate) {
			continue
		}
		day := m.CreatedAt.Format("2006-01-02")
		row, ok := byDay[day]
		if !ok {
			row = &repository.StockMovementData{Date: day}
			byDay[day] = row
		}
		if m.QuantityChange > 0 {
			row.Inbound += m.QuantityChange
		} else {
			row.Outbound -= m.QuantityChange
		}
	}

	out := make([]repository.StockMovementData, 0, len(byDay))
	for _, row := range byDay {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *movementRepo) GetInventoryStats(ctx context.Context, lowStockThreshold int) (*repository.InventoryStats, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stats := &repository.InventoryStats{TotalProducts: int64(len(r.store.state.products))}
	valuation := decimal.Zero
	for _, p := range r.store.state.products {
		if p.Stock <= lowStockThreshold {
			stats.LowStockCount++
		}
		valuation = valuation.Add(p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	stats.TotalValuation = valuation.StringFixed(2)
	return stats, nil
}
