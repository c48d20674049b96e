package repository

import (
	"context"
	"errors"
	"time"

	"github.com/runsheet/core/internal/domain/entities"
	"github.com/runsheet/core/internal/infrastructure/logger"
	"github.com/runsheet/core/internal/ports"
)

// CachedProfileRepository serves profile reads from a cache in front of
// another repository. Writes go to the backing store first and then drop
// the cached copy. Cache failures are logged and never fail the call.
type CachedProfileRepository struct {
	next   ports.ProfileRepository
	cache  ports.CacheRepository
	ttl    time.Duration
	logger *logger.Logger
}

func NewCachedProfileRepository(next ports.ProfileRepository, cache ports.CacheRepository, ttl time.Duration, log *logger.Logger) *CachedProfileRepository {
	return &CachedProfileRepository{next: next, cache: cache, ttl: ttl, logger: log}
}

var _ ports.ProfileRepository = (*CachedProfileRepository)(nil)

func profileKey(id string) string {
	return "profile:" + id
}

func (r *CachedProfileRepository) Get(ctx context.Context, id string) (*entities.StoredProfile, error) {
	var cached entities.StoredProfile
	err := r.cache.Get(ctx, profileKey(id), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, entities.ErrCacheMiss) {
		r.logger.Warnw("Profile cache read failed", "profile_id", id, "error", err)
	}

	profile, err := r.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, profileKey(id), profile, r.ttl); err != nil {
		r.logger.Warnw("Profile cache write failed", "profile_id", id, "error", err)
	}
	return profile, nil
}

func (r *CachedProfileRepository) Put(ctx context.Context, profile *entities.StoredProfile) error {
	if err := r.next.Put(ctx, profile); err != nil {
		return err
	}
	r.evict(ctx, profile.ID)
	return nil
}

func (r *CachedProfileRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

func (r *CachedProfileRepository) List(ctx context.Context, filter ports.ProfileFilter) ([]*entities.StoredProfile, error) {
	return r.next.List(ctx, filter)
}

func (r *CachedProfileRepository) evict(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, profileKey(id)); err != nil {
		r.logger.Warnw("Profile cache eviction failed", "profile_id", id, "error", err)
	}
}
