// Package redis mirrors grade book state into Redis.
//
// Key components:
//   - Cache: connection handling, key namespacing and JSON values
//   - RankingMirror: sorted-set copy of GPAs and the last calculated ranking
//
// Redis is never read back as the source of truth; the in-memory registries are.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alem-hub/gradebook/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// URL takes precedence over Host/Port/Password/DB when set.
	URL string

	Host     string
	Port     int
	Password string
	DB       int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// KeyPrefix namespaces every key written by this process.
	KeyPrefix string

	// ConnectAttempts is the number of pings tried before giving up.
	ConnectAttempts int
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            6379,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		KeyPrefix:       "gradebook:",
		ConnectAttempts: 3,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) options() (*redis.Options, error) {
	if c.URL != "" {
		opts, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
		}
		opts.DialTimeout = c.DialTimeout
		opts.ReadTimeout = c.ReadTimeout
		opts.WriteTimeout = c.WriteTimeout
		return opts, nil
	}
	return &redis.Options{
		Addr:         c.Addr(),
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrCacheMiss is returned when the requested key is not found in cache.
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrCacheConnection is returned when Redis connection fails.
	ErrCacheConnection = errors.New("cache: connection failed")

	// ErrCacheSerialization is returned when serialization/deserialization fails.
	ErrCacheSerialization = errors.New("cache: serialization failed")
)

// ══════════════════════════════════════════════════════════════════════════════
// KEY PREFIXES
// ══════════════════════════════════════════════════════════════════════════════

// Key prefixes, appended to Config.KeyPrefix.
const (
	PrefixRanking = "ranking:"
	PrefixCourse  = "course:"
)

// TTLRanking is the default expiry of mirrored ranking data.
const TTLRanking = 24 * time.Hour

// ══════════════════════════════════════════════════════════════════════════════
// CACHE CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Cache wraps a Redis client with key namespacing and JSON values.
type Cache struct {
	client *redis.Client
	prefix string
}

// NewCache connects to Redis, pinging with backoff until it answers or
// cfg.ConnectAttempts are exhausted. A reply error from the server, such as
// a rejected password, ends the attempts at once.
func NewCache(ctx context.Context, cfg Config, onRetry func(attempt int, err error, delay time.Duration)) (*Cache, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	err = retry.Connect(cfg.ConnectAttempts, onRetry).Do(ctx, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		return classify(client.Ping(pingCtx).Err())
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}

	return NewCacheFromClient(client, cfg.KeyPrefix), nil
}

// classify marks server replies as permanent. Only transport failures
// are worth another ping.
func classify(err error) error {
	var reply redis.Error
	if errors.As(err, &reply) {
		return retry.Permanent(err)
	}
	return err
}

// NewCacheFromClient wraps an existing client.
func NewCacheFromClient(client *redis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

// Client returns the underlying Redis client for advanced operations.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// Key returns the namespaced key for parts joined without separators.
func (c *Cache) Key(parts ...string) string {
	key := c.prefix
	for _, p := range parts {
		key += p
	}
	return key
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// HGet retrieves and deserializes a hash field.
// Returns ErrCacheMiss if the field doesn't exist.
func (c *Cache) HGet(ctx context.Context, key, field string, dest interface{}) error {
	data, err := c.client.HGet(ctx, key, field).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	return nil
}

// Delete removes keys from the cache.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
