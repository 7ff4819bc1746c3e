package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

const dashboardKey = "admin:dashboard"

// DashboardCache keeps the last computed admin aggregates for a short time
type DashboardCache interface {
	Get(ctx context.Context) (*model.Dashboard, error)
	Set(ctx context.Context, d *model.Dashboard) error
	Invalidate(ctx context.Context) error
}

type dashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDashboardCache creates a Redis-backed dashboard cache
func NewDashboardCache(client *redis.Client, ttl time.Duration) DashboardCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &dashboardCache{client: client, ttl: ttl}
}

func (c *dashboardCache) Get(ctx context.Context) (*model.Dashboard, error) {
	data, err := c.client.Get(ctx, dashboardKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d model.Dashboard
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *dashboardCache) Set(ctx context.Context, d *model.Dashboard) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, dashboardKey, data, c.ttl).Err()
}

func (c *dashboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, dashboardKey).Err()
}

type memoryDashboardCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	value   *model.Dashboard
	expires time.Time
}

// NewMemoryDashboardCache creates an in-process dashboard cache
func NewMemoryDashboardCache(ttl time.Duration) DashboardCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &memoryDashboardCache{ttl: ttl}
}

func (c *memoryDashboardCache) Get(ctx context.Context) (*model.Dashboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value == nil || time.Now().After(c.expires) {
		return nil, nil
	}
	d := *c.value
	return &d, nil
}

func (c *memoryDashboardCache) Set(ctx context.Context, d *model.Dashboard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := *d
	c.value = &v
	c.expires = time.Now().Add(c.ttl)
	return nil
}

func (c *memoryDashboardCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
	return nil
}
