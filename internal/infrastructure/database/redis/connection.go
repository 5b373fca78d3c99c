// internal/infrastructure/database/redis/connection.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// ErrKeyNotFound is returned when a blob key does not exist
var ErrKeyNotFound = errors.New("key not found")

// Client wraps the Redis client and exposes the blob store operations
// used for session state (carts, ledgers, intake sessions)
type Client struct {
	Redis *redis.Client
}

// NewConnection creates a new Redis connection
func NewConnection(cfg *config.Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,

		// Connection timeouts
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		// Pool timeouts
		PoolTimeout: 4 * time.Second,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("✅ Redis connection established successfully")

	return &Client{
		Redis: rdb,
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.Redis.Close()
}

// GetClient returns the Redis client instance
func (c *Client) GetClient() *redis.Client {
	return c.Redis
}

// Health checks the Redis connection health
func (c *Client) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return c.Redis.Ping(ctx).Err()
}

// LoadJSON reads the blob stored at key into dest.
// Returns ErrKeyNotFound when the key does not exist.
func (c *Client) LoadJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("corrupt blob at %s: %w", key, err)
	}

	return nil
}

// SaveJSON serializes value and stores it at key with the given expiration.
// A zero expiration keeps the key forever.
func (c *Client) SaveJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize blob for %s: %w", key, err)
	}

	if err := c.Redis.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}

	return nil
}

// Remove deletes one or more keys
func (c *Client) Remove(ctx context.Context, keys ...string) error {
	return c.Redis.Del(ctx, keys...).Err()
}

// IndexSet records field -> value in a hash, used for the order and
// repair owner indexes
func (c *Client) IndexSet(ctx context.Context, key, field, value string) error {
	return c.Redis.HSet(ctx, key, field, value).Err()
}

// IndexGet looks field up in a hash.
// Returns ErrKeyNotFound when the field is not indexed.
func (c *Client) IndexGet(ctx context.Context, key, field string) (string, error) {
	value, err := c.Redis.HGet(ctx, key, field).Result()
	if err == redis.Nil {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read index %s: %w", key, err)
	}
	return value, nil
}

// AcquireLock sets a short-lived marker key if it does not already exist.
// Returns false when the marker is still held.
func (c *Client) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.Redis.SetNX(ctx, key, 1, ttl).Result()
}

// ReleaseLock drops a marker key set by AcquireLock
func (c *Client) ReleaseLock(ctx context.Context, key string) error {
	return c.Redis.Del(ctx, key).Err()
}
