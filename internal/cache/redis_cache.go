package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"pos-inventory/internal/model"
)

const activePromotionsKey = "pos:promotions:active"

type RedisPromotionCache struct {
	client *redis.Client
}

func NewRedisPromotionCache(addr string, password string, db int) *RedisPromotionCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisPromotionCache{client: client}
}

func (c *RedisPromotionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisPromotionCache) Close() error {
	return c.client.Close()
}

func (c *RedisPromotionCache) Get(ctx context.Context) ([]model.Promotion, bool, error) {
	val, err := c.client.Get(ctx, activePromotionsKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var promotions []model.Promotion
	if err := json.Unmarshal([]byte(val), &promotions); err != nil {
		return nil, false, err
	}
	return promotions, true, nil
}

func (c *RedisPromotionCache) Set(ctx context.Context, promotions []model.Promotion, ttl time.Duration) error {
	if promotions == nil {
		promotions = []model.Promotion{}
	}
	payload, err := json.Marshal(promotions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, activePromotionsKey, payload, ttl).Err()
}

func (c *RedisPromotionCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, activePromotionsKey).Err()
}
