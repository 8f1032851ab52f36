package service

import (
	"context"
	"time"

	"pos-inventory/internal/cache"
	"pos-inventory/internal/model"
	"pos-inventory/internal/pricing"
	"pos-inventory/internal/repository"
	"pos-inventory/pkg/apperror"
	"pos-inventory/pkg/logger"
)

// PromotionLister yields the promotions in effect right now.
type PromotionLister interface {
	ActivePromotions(ctx context.Context) ([]model.Promotion, error)
}

// ActivePromotions reads switched-on promotions through the cache and applies
// the date window on every call.
type ActivePromotions struct {
	repo         repository.PromotionRepository
	cache        cache.PromotionCache
	ttl          time.Duration
	enforceStart bool
	now          func() time.Time
}

func NewActivePromotions(repo repository.PromotionRepository, c cache.PromotionCache, ttl time.Duration, enforceStart bool) *ActivePromotions {
	if c == nil {
		c = cache.NoopPromotionCache{}
	}
	return &ActivePromotions{repo: repo, cache: c, ttl: ttl, enforceStart: enforceStart, now: time.Now}
}

func (a *ActivePromotions) ActivePromotions(ctx context.Context) ([]model.Promotion, error) {
	now := a.now()

	promotions, hit, err := a.cache.Get(ctx)
	if err != nil {
		// fall back to the database
		logger.LogError("promotion", "ActivePromotions", "read cache", nil, err)
		hit = false
	}

	if !hit {
		promotions, err = a.repo.FindActive(ctx, now)
		if err != nil {
			err = apperror.FromDB(err, "promotion")
			logInternal("promotion", "ActivePromotions", "find active promotions", nil, err)
			return nil, err
		}
		if err := a.cache.Set(ctx, promotions, a.ttl); err != nil {
			logger.LogError("promotion", "ActivePromotions", "write cache", nil, err)
		}
	}

	return pricing.FilterActivePromotions(promotions, now, a.enforceStart), nil
}

// IsActive applies the same window as ActivePromotions to a single promotion.
func (a *ActivePromotions) IsActive(p model.Promotion) bool {
	return p.IsEffective(a.now(), a.enforceStart)
}

func (a *ActivePromotions) Invalidate(ctx context.Context) {
	if err := a.cache.Invalidate(ctx); err != nil {
		logger.LogError("promotion", "Invalidate", "drop cached promotions", nil, err)
	}
}
