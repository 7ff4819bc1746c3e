package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonderless/Test-autoestima-sub000/internal/progress"
)

// SessionStore holds the working copy of a user's engine state and the test timer
type SessionStore interface {
	GetState(ctx context.Context, uid string) (*progress.State, error)
	SetState(ctx context.Context, uid string, state progress.State) error
	DeleteState(ctx context.Context, uid string) error

	SetTestStart(ctx context.Context, uid string, at time.Time) error
	GetTestStart(ctx context.Context, uid string) (time.Time, bool, error)
	ClearTestStart(ctx context.Context, uid string) error
}

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a Redis-backed session store
func NewSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisSessionStore{
		client: client,
		ttl:    ttl,
	}
}

// Key helpers
func (c *redisSessionStore) stateKey(uid string) string {
	return fmt.Sprintf("user:%s:state", uid)
}

func (c *redisSessionStore) testStartKey(uid string) string {
	return fmt.Sprintf("user:%s:test_start", uid)
}

func (c *redisSessionStore) GetState(ctx context.Context, uid string) (*progress.State, error) {
	data, err := c.client.Get(ctx, c.stateKey(uid)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state progress.State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *redisSessionStore) SetState(ctx context.Context, uid string, state progress.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.stateKey(uid), data, c.ttl).Err()
}

func (c *redisSessionStore) DeleteState(ctx context.Context, uid string) error {
	return c.client.Del(ctx, c.stateKey(uid)).Err()
}

func (c *redisSessionStore) SetTestStart(ctx context.Context, uid string, at time.Time) error {
	return c.client.Set(ctx, c.testStartKey(uid), at.UnixMilli(), c.ttl).Err()
}

func (c *redisSessionStore) GetTestStart(ctx context.Context, uid string) (time.Time, bool, error) {
	data, err := c.client.Get(ctx, c.testStartKey(uid)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(ms), true, nil
}

func (c *redisSessionStore) ClearTestStart(ctx context.Context, uid string) error {
	return c.client.Del(ctx, c.testStartKey(uid)).Err()
}
