package cache

import (
	"context"
	"time"

	"pos-inventory/internal/model"
)

// PromotionCache keeps the list of switched-on promotions between reads.
// Callers still filter by date, since entries can outlive a promotion's end.
type PromotionCache interface {
	Get(ctx context.Context) ([]model.Promotion, bool, error)
	Set(ctx context.Context, promotions []model.Promotion, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type NoopPromotionCache struct{}

func (NoopPromotionCache) Get(_ context.Context) ([]model.Promotion, bool, error) {
	return nil, false, nil
}

func (NoopPromotionCache) Set(_ context.Context, _ []model.Promotion, _ time.Duration) error {
	return nil
}

func (NoopPromotionCache) Invalidate(_ context.Context) error {
	return nil
}
