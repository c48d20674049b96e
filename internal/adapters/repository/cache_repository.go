package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/runsheet/core/internal/domain/entities"
	"github.com/runsheet/core/internal/ports"
)

// CacheRepositoryImpl implements the CacheRepository interface using Redis
type CacheRepositoryImpl struct {
	client *redis.Client
	prefix string
}

// NewCacheRepository creates a new cache repository. Keys are namespaced
// with prefix.
func NewCacheRepository(client *redis.Client, prefix string) ports.CacheRepository {
	return &CacheRepositoryImpl{client: client, prefix: prefix}
}

func (r *CacheRepositoryImpl) key(k string) string {
	return r.prefix + k
}

func (r *CacheRepositoryImpl) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	if err := r.client.Set(ctx, r.key(key), data, expiration).Err(); err != nil {
		return fmt.Errorf("set cache: %w", err)
	}
	return nil
}

// Get decodes the cached value into dest. A missing key is ErrCacheMiss.
func (r *CacheRepositoryImpl) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entities.ErrCacheMiss
		}
		return fmt.Errorf("get cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	return nil
}

func (r *CacheRepositoryImpl) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("delete cache: %w", err)
	}
	return nil
}
