package ports

import (
	"context"

	"github.com/runsheet/core/internal/domain/entities"
)

// RenderService interface for schedule rendering operations
type RenderService interface {
	Generate(ctx context.Context, payload entities.Payload) (*RenderSummary, error)
	Preview(ctx context.Context, req PreviewRequest) (string, error)
	Presets() []entities.GroupPreset
}

// ProfileService interface for style profile management
type ProfileService interface {
	CreateProfile(ctx context.Context, req SaveProfileRequest) (*entities.StoredProfile, error)
	GetProfile(ctx context.Context, id string) (*entities.StoredProfile, error)
	GetNormalizedProfile(ctx context.Context, id string) (*entities.StyleProfile, error)
	SaveProfile(ctx context.Context, id string, req SaveProfileRequest) (*entities.StoredProfile, error)
	DeleteProfile(ctx context.Context, id string) error
	ListProfiles(ctx context.Context, filter ProfileFilter) ([]*entities.StoredProfile, error)
}

// Request DTOs

type SaveProfileRequest struct {
	Name     string         `json:"name" validate:"required,max=200"`
	Document map[string]any `json:"document" validate:"required"`
}

type PreviewRequest struct {
	Payload       entities.Payload `json:"payload"`
	GroupPresetID string           `json:"groupPresetId" validate:"required"`
	entities.EntryFilter
}

// Response DTOs

type SnapshotResult struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	HTMLURL string `json:"htmlUrl,omitempty"`
	PDFURL  string `json:"pdfUrl,omitempty"`
	Error   string `json:"error,omitempty"`
}

type RenderSummary struct {
	Success              bool             `json:"success"`
	RunID                string           `json:"runId"`
	HTMLURL              string           `json:"htmlUrl,omitempty"`
	Snapshots            []SnapshotResult `json:"snapshots"`
	ExecutionTimeSeconds float64          `json:"executionTimeSeconds"`
	Error                string           `json:"error,omitempty"`
}
