package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/viz-backend/internal/visualizations/domain"
)

const (
	detailKeyPrefix = "viz:detail:" // viz:detail:{visualization_id}
	DefaultTTL      = 5 * time.Minute
)

var ErrMiss = errors.New("cache miss")

// DetailCache keeps serialized detailed views in Redis.
type DetailCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDetailCache(client *redis.Client, ttl time.Duration) *DetailCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &DetailCache{client: client, ttl: ttl}
}

func (c *DetailCache) key(id int64) string {
	return detailKeyPrefix + strconv.FormatInt(id, 10)
}

// Get returns the cached entry for id, or ErrMiss.
func (c *DetailCache) Get(ctx context.Context, id int64) (*domain.CachedDetail, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached visualization: %w", err)
	}

	var entry domain.CachedDetail
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached visualization: %w", err)
	}
	return &entry, nil
}

func (c *DetailCache) Set(ctx context.Context, id int64, entry *domain.CachedDetail) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal visualization: %w", err)
	}
	if err := c.client.Set(ctx, c.key(id), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache visualization: %w", err)
	}
	return nil
}
