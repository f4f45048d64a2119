// Package session keeps one Redis record per issued access token so tokens
// can be revoked before they expire.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stockflow/internal/config"
)

const keyPrefix = "sf:session:access:"

// ErrRequired is returned when a jti or user id is blank.
var ErrRequired = errors.New("session id and user id are required")

type cmdable interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store creates, looks up and revokes access sessions.
type Store interface {
	Create(ctx context.Context, jti, userID string, ttl time.Duration) error
	// Lookup returns the owning user id and whether the session is live.
	Lookup(ctx context.Context, jti string) (string, bool, error)
	Revoke(ctx context.Context, jti string) error
	Ping(ctx context.Context) error
}

// RedisStore is the Redis-backed Store.
type RedisStore struct {
	rdb cmdable
	raw *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewClient builds a pooled go-redis client from config and verifies connectivity.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return raw, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{rdb: client, raw: client}
}

// Key is the Redis key of the session named by jti.
func Key(jti string) string {
	return keyPrefix + jti
}

func (s *RedisStore) Create(ctx context.Context, jti, userID string, ttl time.Duration) error {
	if strings.TrimSpace(jti) == "" || strings.TrimSpace(userID) == "" {
		return ErrRequired
	}
	if ttl <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return s.rdb.Set(ctx, Key(jti), userID, ttl).Err()
}

func (s *RedisStore) Lookup(ctx context.Context, jti string) (string, bool, error) {
	if strings.TrimSpace(jti) == "" {
		return "", false, ErrRequired
	}
	userID, err := s.rdb.Get(ctx, Key(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return userID, true, nil
}

func (s *RedisStore) Revoke(ctx context.Context, jti string) error {
	if strings.TrimSpace(jti) == "" {
		return ErrRequired
	}
	return s.rdb.Del(ctx, Key(jti)).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}
