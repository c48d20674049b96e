package ports

import (
	"context"
	"time"

	"github.com/runsheet/core/internal/domain/entities"
)

// ProfileRepository defines the interface for style profile storage
type ProfileRepository interface {
	Get(ctx context.Context, id string) (*entities.StoredProfile, error)
	Put(ctx context.Context, profile *entities.StoredProfile) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProfileFilter) ([]*entities.StoredProfile, error)
}

// CacheRepository defines the interface for cache operations
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

// PresetSource provides the group presets loaded at startup
type PresetSource interface {
	Presets() []entities.GroupPreset
	Preset(id string) (entities.GroupPreset, bool)
}

// BlobStore persists rendered artifacts and maps their paths to public URLs
type BlobStore interface {
	Put(ctx context.Context, path, contentType string, data []byte) error
	PublicURL(path string) string
}

// ProfileFilter pages through stored profiles
type ProfileFilter struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}
