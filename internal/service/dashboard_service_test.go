package service

import (
	"context"
	"testing"
	"time"

	"pos-inventory/internal/cart"
	"pos-inventory/internal/model"
	"pos-inventory/internal/repository/memory"
	"pos-inventory/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubSales struct {
	today  int64
	total  decimal.Decimal
	recent []model.Sale
}

func (s stubSales) FindByID(context.Context, uuid.UUID) (*model.Sale, error) { return nil, nil }
func (s stubSales) FindByDateRange(context.Context, time.Time, time.Time) ([]model.Sale, error) {
	return nil, nil
}
func (s stubSales) FindRecent(context.Context, int) ([]model.Sale, error) { return s.recent, nil }
func (s stubSales) CountSince(context.Context, time.Time) (int64, error) { return s.today, nil }
func (s stubSales) SumTotal(context.Context) (decimal.Decimal, error)    { return s.total, nil }

func newDashboard(store *memory.Store, sales stubSales) *dashboardService {
	svc := NewDashboardService(store.ProductRepo(), sales, store.MovementRepo(), 10, time.UTC).(*dashboardService)
	svc.now = fixedClock(time.Now().Add(time.Minute))
	return svc
}

func TestDashboardStats(t *testing.T) {
	store := memory.New()
	stocks := []int{9, 0, 30, 3, 8, 1, 20, 2}
	for i, stock := range stocks {
		seedProduct(store, "Produk "+string(rune('A'+i)), 2000, stock)
	}

	sales := stubSales{
		today:  3,
		total:  decimal.NewFromInt(45000),
		recent: []model.Sale{{InvoiceNumber: "INV-1"}},
	}
	stats, err := newDashboard(store, sales).GetDashboardStats(context.Background(), cashier)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.ProductCount != 8 || stats.SalesToday != 3 || !stats.TotalRevenue.Equal(decimal.NewFromInt(45000)) {
		t.Fatalf("unexpected totals %+v", stats)
	}
	if len(stats.LowStockProducts) != 5 {
		t.Fatalf("expected top 5 low stock products, got %d", len(stats.LowStockProducts))
	}
	for i, want := range []int{0, 1, 2, 3, 8} {
		if got := stats.LowStockProducts[i].Stock; got != want {
			t.Fatalf("expected low stock #%d to have %d, got %d", i, want, got)
		}
	}
	if len(stats.RecentSales) != 1 {
		t.Fatalf("expected recent sales from the repository")
	}
	if stats.Inventory.TotalProducts != 8 || stats.Inventory.LowStockCount != 6 {
		t.Fatalf("unexpected inventory stats %+v", stats.Inventory)
	}
	// 73 units at a purchase price of 1000
	if stats.Inventory.TotalValuation != "73000.00" {
		t.Fatalf("expected valuation 73000.00, got %s", stats.Inventory.TotalValuation)
	}
}

func TestDashboardStockMovementSplitsInboundAndOutbound(t *testing.T) {
	store := memory.New()
	kopi := seedProduct(store, "Kopi", 10000, 20)
	seedProduct(store, "Teh", 5000, 6)

	pos := newPOS(store, nil, nil)
	if _, err := pos.CommitSale(context.Background(), cashier, CommitSaleRequest{
		Lines:         []cart.SaleLine{saleLine(kopi, 3)},
		PaymentMethod: model.PaymentCash,
	}); err != nil {
		t.Fatalf("commit sale: %v", err)
	}

	svc := newDashboard(store, stubSales{})
	data, err := svc.GetStockMovement(context.Background(), cashier, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inbound, outbound := 0, 0
	for _, day := range data {
		inbound += day.Inbound
		outbound += day.Outbound
	}
	if inbound != 26 || outbound != 3 {
		t.Fatalf("expected inbound 26 and outbound 3, got %d and %d", inbound, outbound)
	}

	if _, err := svc.GetStockMovement(context.Background(), Actor{}, 7); apperror.KindOf(err) != apperror.KindUnauthorized {
		t.Fatalf("expected unauthorized for anonymous actor, got %v", err)
	}
}
