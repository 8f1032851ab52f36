package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pos-inventory/internal/model"
	"pos-inventory/internal/repository/memory"
	"pos-inventory/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakePromotionRepo struct {
	promotions []model.Promotion
	activeHits int
}

func (r *fakePromotionRepo) FindAll(context.Context) ([]model.Promotion, error) {
	return r.promotions, nil
}

func (r *fakePromotionRepo) FindActive(_ context.Context, now time.Time) ([]model.Promotion, error) {
	r.activeHits++
	var out []model.Promotion
	for _, p := range r.promotions {
		if p.IsActive && !p.EndDate.Before(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePromotionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Promotion, error) {
	for _, p := range r.promotions {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePromotionRepo) Create(_ context.Context, p *model.Promotion) error {
	p.ID = uuid.New()
	r.promotions = append(r.promotions, *p)
	return nil
}

func (r *fakePromotionRepo) Update(context.Context, *model.Promotion) error { return nil }
func (r *fakePromotionRepo) Delete(context.Context, uuid.UUID) error        { return nil }

type mapPromotionCache struct {
	value       []model.Promotion
	ok          bool
	invalidated int
}

func (c *mapPromotionCache) Get(context.Context) ([]model.Promotion, bool, error) {
	return c.value, c.ok, nil
}

func (c *mapPromotionCache) Set(_ context.Context, p []model.Promotion, _ time.Duration) error {
	c.value, c.ok = p, true
	return nil
}

func (c *mapPromotionCache) Invalidate(context.Context) error {
	c.value, c.ok = nil, false
	c.invalidated++
	return nil
}

type usedCategories struct{}

func (usedCategories) FindPage(context.Context, int, int) ([]model.Category, int64, error) {
	return nil, 0, nil
}
func (usedCategories) FindByID(context.Context, uuid.UUID) (*model.Category, error) {
	return nil, gorm.ErrRecordNotFound
}
func (usedCategories) FindByName(context.Context, string) (*model.Category, error) {
	return nil, gorm.ErrRecordNotFound
}
func (usedCategories) Create(context.Context, *model.Category) error { return gorm.ErrDuplicatedKey }
func (usedCategories) Update(context.Context, *model.Category) error { return nil }
func (usedCategories) Delete(context.Context, uuid.UUID) error       { return gorm.ErrForeignKeyViolated }

func newCatalog(store *memory.Store, promos *fakePromotionRepo, cache *mapPromotionCache, now time.Time) CatalogService {
	active := NewActivePromotions(promos, cache, time.Minute, false)
	active.now = fixedClock(now)
	return NewCatalogService(store, store.ProductRepo(), usedCategories{}, nil, promos, active, nil)
}

func TestCreateProductRecordsInitialStock(t *testing.T) {
	store := memory.New()
	svc := newCatalog(store, &fakePromotionRepo{}, &mapPromotionCache{}, time.Now())

	product, err := svc.CreateProduct(context.Background(), admin, ProductRequest{
		SKU:           "KOPI-001",
		Name:          "Kopi Bubuk",
		CategoryID:    uuid.New(),
		SellingPrice:  decimal.NewFromInt(25000),
		PurchasePrice: decimal.NewFromInt(18000),
		Stock:         12,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	movements := store.Movements(product.ID)
	if len(movements) != 1 || movements[0].QuantityChange != 12 || movements[0].Reason != "Initial stock" {
		t.Fatalf("expected one initial stock movement of 12, got %+v", movements)
	}

	_, err = svc.CreateProduct(context.Background(), admin, ProductRequest{
		SKU: "KOPI-001", Name: "Kopi Lagi", CategoryID: uuid.New(),
	})
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("expected duplicate SKU conflict, got %v", err)
	}

	_, err = svc.CreateProduct(context.Background(), cashier, ProductRequest{})
	if apperror.KindOf(err) != apperror.KindForbidden {
		t.Fatalf("expected cashier forbidden, got %v", err)
	}
}

func TestDeleteCategoryInUse(t *testing.T) {
	svc := newCatalog(memory.New(), &fakePromotionRepo{}, &mapPromotionCache{}, time.Now())

	err := svc.DeleteCategory(context.Background(), admin, uuid.New())
	if apperror.KindOf(err) != apperror.KindReferential {
		t.Fatalf("expected referential error, got %v", err)
	}
	if apperror.Message(err) != "category is still used by products or promotions and cannot be deleted" {
		t.Fatalf("unexpected message %q", apperror.Message(err))
	}
	if !errors.Is(err, gorm.ErrForeignKeyViolated) {
		t.Fatalf("expected the driver error to be wrapped")
	}

	_, err = svc.CreateCategory(context.Background(), admin, CategoryRequest{Name: "Minuman"})
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("expected duplicate name conflict, got %v", err)
	}

	_, err = svc.CreateCategory(context.Background(), admin, CategoryRequest{Name: "ab"})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected short name rejected, got %v", err)
	}
}

// promotionCategories refuses to delete a category a promotion is scoped to,
// as the RESTRICT foreign key on promotions.category_id does.
type promotionCategories struct {
	usedCategories
	promos *fakePromotionRepo
}

func (c promotionCategories) Delete(_ context.Context, id uuid.UUID) error {
	for _, p := range c.promos.promotions {
		if p.CategoryID != nil && *p.CategoryID == id {
			return gorm.ErrForeignKeyViolated
		}
	}
	return nil
}

func TestDeleteCategoryScopedByPromotionIsBlocked(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	beverages := uuid.New()
	snacks := uuid.New()
	promos := &fakePromotionRepo{promotions: []model.Promotion{{
		Description:     "Beverages half price",
		DiscountPercent: 50,
		IsActive:        true,
		StartDate:       now.AddDate(0, 0, -1),
		EndDate:         now.AddDate(0, 0, 7),
		CategoryID:      &beverages,
	}}}
	cache := &mapPromotionCache{}
	active := NewActivePromotions(promos, cache, time.Minute, false)
	active.now = fixedClock(now)
	store := memory.New()
	svc := NewCatalogService(store, store.ProductRepo(), promotionCategories{promos: promos}, nil, promos, active, nil)
	ctx := context.Background()

	err := svc.DeleteCategory(ctx, admin, beverages)
	if apperror.KindOf(err) != apperror.KindReferential {
		t.Fatalf("expected referential error, got %v", err)
	}
	if cache.invalidated != 0 {
		t.Fatalf("expected a blocked delete to leave the cache alone")
	}

	current, err := active.ActivePromotions(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(current) != 1 || current[0].AppliesTo(snacks) {
		t.Fatalf("expected the promotion to stay scoped to its category, got %+v", current)
	}

	if err := svc.DeleteCategory(ctx, admin, snacks); err != nil {
		t.Fatalf("expected unreferenced category to be deleted, got %v", err)
	}
}

func TestActivePromotionsReadThroughCache(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := &fakePromotionRepo{promotions: []model.Promotion{
		{Description: "Ramadan sale", DiscountPercent: 10, IsActive: true, StartDate: now.AddDate(0, 0, -1), EndDate: now.AddDate(0, 0, 5)},
		{Description: "Old sale", DiscountPercent: 50, IsActive: true, StartDate: now.AddDate(0, -1, 0), EndDate: now.AddDate(0, 0, -1)},
		{Description: "Draft sale", DiscountPercent: 30, IsActive: false, StartDate: now, EndDate: now.AddDate(0, 0, 5)},
	}}
	cache := &mapPromotionCache{}
	svc := newCatalog(memory.New(), repo, cache, now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		active, err := svc.GetActivePromotions(ctx, cashier)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(active) != 1 || active[0].Description != "Ramadan sale" {
			t.Fatalf("expected only the running promotion, got %+v", active)
		}
	}
	if repo.activeHits != 1 {
		t.Fatalf("expected a single database read, got %d", repo.activeHits)
	}

	views, err := svc.GetPromotions(ctx, cashier)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	flags := map[string]bool{}
	for _, v := range views {
		flags[v.Description] = v.IsDynamicallyActive
	}
	if !flags["Ramadan sale"] || flags["Old sale"] || flags["Draft sale"] {
		t.Fatalf("unexpected dynamic flags %v", flags)
	}

	_, err = svc.CreatePromotion(ctx, admin, PromotionRequest{
		Description:     "Weekend deal",
		DiscountPercent: 15,
		StartDate:       now,
		EndDate:         now.AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.invalidated != 1 {
		t.Fatalf("expected cache invalidated after create")
	}

	active, _ := svc.GetActivePromotions(ctx, cashier)
	if len(active) != 2 {
		t.Fatalf("expected 2 active promotions after create, got %d", len(active))
	}
}

func TestPromotionValidation(t *testing.T) {
	now := time.Now()
	svc := newCatalog(memory.New(), &fakePromotionRepo{}, &mapPromotionCache{}, now)

	for name, req := range map[string]PromotionRequest{
		"short description": {Description: "abc", DiscountPercent: 10, StartDate: now, EndDate: now.Add(time.Hour)},
		"zero discount":     {Description: "Weekend deal", DiscountPercent: 0, StartDate: now, EndDate: now.Add(time.Hour)},
		"over 100":          {Description: "Weekend deal", DiscountPercent: 101, StartDate: now, EndDate: now.Add(time.Hour)},
		"ends before start": {Description: "Weekend deal", DiscountPercent: 10, StartDate: now, EndDate: now.Add(-time.Hour)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreatePromotion(context.Background(), admin, req)
			if apperror.KindOf(err) != apperror.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
