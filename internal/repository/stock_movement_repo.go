package repository

import (
	"context"
	"time"

	"pos-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error)
	// SumByProduct is the ledger balance of one product.
	SumByProduct(ctx context.Context, productID uuid.UUID) (int, error)
	GetDailyMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetInventoryStats(ctx context.Context, lowStockThreshold int) (*InventoryStats, error)
}

// StockMovementData is one day of the stock movement chart
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// InventoryStats summarises the current shelf
type InventoryStats struct {
	TotalProducts  int64  `json:"total_products"`
	LowStockCount  int64  `json:"low_stock_count"`
	TotalValuation string `json:"total_valuation"`
}

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db}
}

func (r *stockMovementRepo) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	q := r.db.WithContext(ctx).
		Preload("Product").
		Where("product_id = ?", productID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepo) SumByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity_change), 0)").
		Scan(&total).Error
	return total, err
}

func (r *stockMovementRepo) GetDailyMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Positive changes are inbound, negative ones outbound
	rows, err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select(`
			TO_CHAR(DATE(created_at), 'YYYY-MM-DD') as date,
			COALESCE(SUM(CASE WHEN quantity_change > 0 THEN quantity_change ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN quantity_change < 0 THEN -quantity_change ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *stockMovementRepo) GetInventoryStats(ctx context.Context, lowStockThreshold int) (*InventoryStats, error) {
	var stats InventoryStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Product{}).Where("stock <= ?", lowStockThreshold).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	// Valuation at purchase price, rendered by postgres to keep decimal precision
	err := db.Model(&model.Product{}).
		Select("COALESCE(SUM(stock * purchase_price), 0)::text").
		Scan(&stats.TotalValuation).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
