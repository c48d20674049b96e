package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/runsheet/core/internal/domain/entities"
	"github.com/runsheet/core/internal/domain/styles"
	"github.com/runsheet/core/internal/infrastructure/logger"
	"github.com/runsheet/core/internal/ports"
)

// ProfileService handles style profile operations
type ProfileService struct {
	profileRepo ports.ProfileRepository
	logger      *logger.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo ports.ProfileRepository, logger *logger.Logger) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		logger:      logger,
	}
}

var _ ports.ProfileService = (*ProfileService)(nil)

// CreateProfile stores a new profile under a generated ID
func (s *ProfileService) CreateProfile(ctx context.Context, req ports.SaveProfileRequest) (*entities.StoredProfile, error) {
	profile := &entities.StoredProfile{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(req.Name),
		Document: req.Document,
	}

	if err := s.profileRepo.Put(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Infow("Profile created successfully", "profile_id", profile.ID, "name", profile.Name)

	return profile, nil
}

// GetProfile returns the raw stored document
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*entities.StoredProfile, error) {
	profile, err := s.profileRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}
	return profile, nil
}

// GetNormalizedProfile returns the canonical profile. Nothing is written
// back to the store.
func (s *ProfileService) GetNormalizedProfile(ctx context.Context, id string) (*entities.StyleProfile, error) {
	profile, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	normalized := styles.Normalize(profile.Document)
	return &normalized, nil
}

// SaveProfile replaces the document of a profile, creating it if needed
func (s *ProfileService) SaveProfile(ctx context.Context, id string, req ports.SaveProfileRequest) (*entities.StoredProfile, error) {
	profile := &entities.StoredProfile{
		ID:       id,
		Name:     strings.TrimSpace(req.Name),
		Document: req.Document,
	}

	if err := s.profileRepo.Put(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Infow("Profile saved successfully", "profile_id", profile.ID, "name", profile.Name)

	return profile, nil
}

// DeleteProfile removes a profile
func (s *ProfileService) DeleteProfile(ctx context.Context, id string) error {
	if err := s.profileRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	s.logger.Infow("Profile deleted successfully", "profile_id", id)

	return nil
}

// ListProfiles pages through stored profiles, most recently updated first
func (s *ProfileService) ListProfiles(ctx context.Context, filter ports.ProfileFilter) ([]*entities.StoredProfile, error) {
	profiles, err := s.profileRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}
