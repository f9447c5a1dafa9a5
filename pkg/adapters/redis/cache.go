package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/fundchat/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the cache.
const DefaultPrefix = "fundchat:"

// CandidateCache implements ports.CandidateCache using a Redis string key
// holding the JSON-encoded list.
type CandidateCache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the CandidateCache.
type Option func(*CandidateCache)

// WithTTL sets the expiration of the cached list. Zero keeps it until invalidated.
func WithTTL(ttl time.Duration) Option {
	return func(c *CandidateCache) {
		c.ttl = ttl
	}
}

// WithPrefix replaces DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(c *CandidateCache) {
		c.prefix = prefix
	}
}

// New connects to addr and returns a cache.
func New(addr, password string, db int, opts ...Option) *CandidateCache {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *CandidateCache {
	c := &CandidateCache{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the Redis key holding the list.
func (c *CandidateCache) Key() string {
	return c.prefix + "candidates"
}

// Ping checks connectivity.
func (c *CandidateCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *CandidateCache) Close() error {
	return c.client.Close()
}

// Load returns the cached list or domain.ErrCacheMiss.
func (c *CandidateCache) Load(ctx context.Context) ([]string, error) {
	data, err := c.client.Get(ctx, c.Key()).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candidates: %w", err)
	}
	return names, nil
}

// Save replaces the cached list.
func (c *CandidateCache) Save(ctx context.Context, names []string) error {
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to marshal candidates: %w", err)
	}
	if err := c.client.Set(ctx, c.Key(), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Invalidate deletes the key.
func (c *CandidateCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.Key()).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
