package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"eventplanner/internal/embedcache"
)

// Config configures the Redis cache backend.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Store implements embedcache.Store on Redis.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewWithClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

var _ embedcache.Store = (*Store)(nil)

// Get retrieves a vector from cache.
func (s *Store) Get(ctx context.Context, key string) ([]float64, bool, error) {
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get from cache: %w", err)
	}
	vec, err := embedcache.Decode(b)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Put stores a vector with the configured expiration. Zero TTL keeps it forever.
func (s *Store) Put(ctx context.Context, key string, vec []float64) error {
	if err := s.client.Set(ctx, s.prefix+key, embedcache.Encode(vec), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in cache: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *Store) Close() error { return s.client.Close() }
