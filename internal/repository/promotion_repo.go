package repository

import (
	"context"
	"time"

	"pos-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromotionRepository interface {
	FindAll(ctx context.Context) ([]model.Promotion, error)
	// FindActive returns switched-on promotions whose end date is not before now.
	FindActive(ctx context.Context, now time.Time) ([]model.Promotion, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error)
	Create(ctx context.Context, promotion *model.Promotion) error
	Update(ctx context.Context, promotion *model.Promotion) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type promotionRepo struct {
	db *gorm.DB
}

func NewPromotionRepo(db *gorm.DB) PromotionRepository {
	return &promotionRepo{db}
}

func (r *promotionRepo) FindAll(ctx context.Context) ([]model.Promotion, error) {
	var promotions []model.Promotion
	err := r.db.WithContext(ctx).Preload("Category").Order("start_date DESC").Find(&promotions).Error
	return promotions, err
}

func (r *promotionRepo) FindActive(ctx context.Context, now time.Time) ([]model.Promotion, error) {
	var promotions []model.Promotion
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND end_date >= ?", true, now).
		Order("discount_percent DESC").
		Find(&promotions).Error
	return promotions, err
}

func (r *promotionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	var promotion model.Promotion
	if err := r.db.WithContext(ctx).Preload("Category").First(&promotion, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promotion, nil
}

func (r *promotionRepo) Create(ctx context.Context, promotion *model.Promotion) error {
	return r.db.WithContext(ctx).Omit("Category").Create(promotion).Error
}

func (r *promotionRepo) Update(ctx context.Context, promotion *model.Promotion) error {
	res := r.db.WithContext(ctx).Model(&model.Promotion{}).
		Where("id = ?", promotion.ID).
		Updates(map[string]interface{}{
			"description":      promotion.Description,
			"discount_percent": promotion.DiscountPercent,
			"start_date":       promotion.StartDate,
			"end_date":         promotion.EndDate,
			"is_active":        promotion.IsActive,
			"category_id":      promotion.CategoryID,
			"updated_by":       promotion.UpdatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *promotionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Promotion{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
