package repository

import (
	"context"
	"time"

	"pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	// FindByDateRange returns sales with from <= sale_date < to, newest first.
	FindByDateRange(ctx context.Context, from, to time.Time) ([]model.Sale, error)
	FindRecent(ctx context.Context, limit int) ([]model.Sale, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	SumTotal(ctx context.Context) (decimal.Decimal, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Items.Product").
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) FindByDateRange(ctx context.Context, from, to time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Items.Product").
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Order("sale_date DESC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindRecent(ctx context.Context, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("sale_date DESC").
		Limit(limit).
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).Where("sale_date >= ?", since).Count(&total).Error
	return total, err
}

func (r *saleRepo) SumTotal(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("SUM(total_amount)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
