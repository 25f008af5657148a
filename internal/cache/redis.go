package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ga4dash/internal/apperrors"
)

const scanBatch = 100

// RedisConfig holds connection settings for the Redis store
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}
	return client, nil
}

// Redis is a Store that keeps JSON-encoded values under a key namespace and
// relies on native key expiry. The client is shared and owned by the caller.
type Redis[T any] struct {
	client    *redis.Client
	namespace string
}

func NewRedis[T any](client *redis.Client, namespace string) *Redis[T] {
	return &Redis[T]{client: client, namespace: namespace}
}

func (r *Redis[T]) key(key string) string {
	return r.namespace + ":" + key
}

func (r *Redis[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var value T

	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return value, false, nil
	}
	if err != nil {
		return value, false, apperrors.NewCacheError("get failed", "get", key, err)
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false, apperrors.NewCacheError("unmarshal failed", "get", key, err)
	}
	return value, true, nil
}

func (r *Redis[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.NewCacheError("marshal failed", "set", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		return apperrors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

func (r *Redis[T]) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return apperrors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}

// Clear removes every key in the namespace.
func (r *Redis[T]) Clear(ctx context.Context) error {
	keys, err := r.scan(ctx)
	if err != nil {
		return err
	}

	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		if err := r.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			return apperrors.NewCacheError("clear failed", "del", r.namespace, err)
		}
	}
	return nil
}

func (r *Redis[T]) Len(ctx context.Context) (int, error) {
	keys, err := r.scan(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// CleanExpired is a no-op: Redis expires keys itself.
func (r *Redis[T]) CleanExpired(context.Context) (int, error) {
	return 0, nil
}

func (r *Redis[T]) Close() error {
	return nil
}

func (r *Redis[T]) scan(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, fmt.Sprintf("%s:*", r.namespace), scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, apperrors.NewCacheError("scan failed", "scan", r.namespace, err)
	}
	return keys, nil
}
