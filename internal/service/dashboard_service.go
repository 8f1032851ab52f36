package service

import (
	"context"
	"time"

	"pos-inventory/internal/model"
	"pos-inventory/internal/repository"
	"pos-inventory/pkg/apperror"

	"github.com/shopspring/decimal"
)

const (
	dashboardLowStockLimit    = 5
	dashboardRecentSalesLimit = 5
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, actor Actor, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context, actor Actor) (*DashboardStats, error)
}

type DashboardStats struct {
	SalesToday       int64                      `json:"sales_today"`
	TotalRevenue     decimal.Decimal            `json:"total_revenue"`
	ProductCount     int64                      `json:"product_count"`
	LowStockProducts []model.Product            `json:"low_stock_products"`
	RecentSales      []model.Sale               `json:"recent_sales"`
	Inventory        *repository.InventoryStats `json:"inventory"`
}

type dashboardService struct {
	products          repository.ProductRepository
	sales             repository.SaleRepository
	movements         repository.StockMovementRepository
	lowStockThreshold int
	loc               *time.Location
	now               func() time.Time
}

func NewDashboardService(
	products repository.ProductRepository,
	sales repository.SaleRepository,
	movements repository.StockMovementRepository,
	lowStockThreshold int,
	loc *time.Location,
) DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &dashboardService{
		products:          products,
		sales:             sales,
		movements:         movements,
		lowStockThreshold: lowStockThreshold,
		loc:               loc,
		now:               time.Now,
	}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, actor Actor, days int) ([]repository.StockMovementData, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.movements.GetDailyMovement(ctx, startDate, endDate)
	if err != nil {
		err = apperror.FromDB(err, "stock movement")
		logInternal("dashboard", "GetStockMovement", "daily movement", days, err)
		return nil, err
	}
	return data, nil
}

func (s *dashboardService) GetDashboardStats(ctx context.Context, actor Actor) (*DashboardStats, error) {
	if err := Authorize(actor); err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	var (
		stats DashboardStats
		err   error
	)
	fail := func(step string, err error) (*DashboardStats, error) {
		err = apperror.FromDB(err, "dashboard")
		logInternal("dashboard", "GetDashboardStats", step, nil, err)
		return nil, err
	}

	if stats.SalesToday, err = s.sales.CountSince(ctx, startOfDay); err != nil {
		return fail("count sales today", err)
	}
	if stats.TotalRevenue, err = s.sales.SumTotal(ctx); err != nil {
		return fail("sum revenue", err)
	}
	if stats.ProductCount, err = s.products.Count(ctx); err != nil {
		return fail("count products", err)
	}
	if stats.LowStockProducts, err = s.products.FindLowStock(ctx, s.lowStockThreshold, dashboardLowStockLimit); err != nil {
		return fail("low stock products", err)
	}
	if stats.RecentSales, err = s.sales.FindRecent(ctx, dashboardRecentSalesLimit); err != nil {
		return fail("recent sales", err)
	}
	if stats.Inventory, err = s.movements.GetInventoryStats(ctx, s.lowStockThreshold); err != nil {
		return fail("inventory stats", err)
	}
	return &stats, nil
}
