package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runsheet/core/internal/domain/entities"
	"github.com/runsheet/core/internal/infrastructure/logger"
	"github.com/runsheet/core/internal/ports"
)

// memoryCache mimics the Redis cache: values are stored as JSON.
type memoryCache struct {
	data    map[string][]byte
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	if c.failGet {
		return errors.New("connection refused")
	}
	b, ok := c.data[key]
	if !ok {
		return entities.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

type countingRepository struct {
	ports.ProfileRepository
	gets int
}

func (r *countingRepository) Get(ctx context.Context, id string) (*entities.StoredProfile, error) {
	r.gets++
	return r.ProfileRepository.Get(ctx, id)
}

func TestCachedProfileRepositoryReadsThrough(t *testing.T) {
	ctx := context.Background()
	backing := &countingRepository{ProfileRepository: newTestRepository(t)}
	cache := newMemoryCache()
	repo := NewCachedProfileRepository(backing, cache, time.Minute, logger.NewNop())

	require.NoError(t, repo.Put(ctx, &entities.StoredProfile{ID: "p1", Name: "One", Document: map[string]any{"lineSpacing": 3.0}}))
	backing.gets = 0

	first, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	second, err := repo.Get(ctx, "p1")
	require.NoError(t, err)

	assert.Equal(t, 1, backing.gets)
	assert.Equal(t, first.Document, second.Document)
	assert.Contains(t, cache.data, "profile:p1")
}

func TestCachedProfileRepositoryEvictsOnWrite(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	repo := NewCachedProfileRepository(newTestRepository(t), cache, time.Minute, logger.NewNop())

	require.NoError(t, repo.Put(ctx, &entities.StoredProfile{ID: "p1", Name: "One"}))
	_, err := repo.Get(ctx, "p1")
	require.NoError(t, err)

	require.NoError(t, repo.Put(ctx, &entities.StoredProfile{ID: "p1", Name: "Renamed"}))
	assert.NotContains(t, cache.data, "profile:p1")

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	require.NoError(t, repo.Delete(ctx, "p1"))
	_, err = repo.Get(ctx, "p1")
	assert.ErrorIs(t, err, entities.ErrProfileNotFound)
}

func TestCachedProfileRepositoryToleratesCacheFailure(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	cache.failGet = true
	repo := NewCachedProfileRepository(newTestRepository(t), cache, time.Minute, logger.NewNop())

	require.NoError(t, repo.Put(ctx, &entities.StoredProfile{ID: "p1", Name: "One"}))
	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "One", got.Name)
}
