package cache

import (
	"context"
	"encoding/json"
	"time"

	"cosmetics_back_end/internal/models"

	"github.com/redis/go-redis/v9"
)

const ProductCacheTTL = 10 * time.Minute

// ProductCache garde les fiches produit fréquemment consultées.
type ProductCache interface {
	Get(ctx context.Context, id string) (*models.Product, bool)
	Set(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id string) error
}

type RedisProductCache struct {
	client *redis.Client
}

func NewRedisProductCache(client *redis.Client) *RedisProductCache {
	return &RedisProductCache{client: client}
}

func productKey(id string) string {
	return "product:" + id
}

func (c *RedisProductCache) Get(ctx context.Context, id string) (*models.Product, bool) {
	data, err := c.client.Get(ctx, productKey(id)).Result()
	if err != nil {
		return nil, false
	}
	var p models.Product
	if json.Unmarshal([]byte(data), &p) != nil {
		return nil, false
	}
	return &p, true
}

func (c *RedisProductCache) Set(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productKey(p.ID.String()), data, ProductCacheTTL).Err()
}

func (c *RedisProductCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, productKey(id)).Err()
}
