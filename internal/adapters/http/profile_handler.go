package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/runsheet/core/internal/domain/entities"
	"github.com/runsheet/core/internal/infrastructure/logger"
	"github.com/runsheet/core/internal/ports"
)

// ProfileHandler handles style profile requests
type ProfileHandler struct {
	profileService ports.ProfileService
	logger         *logger.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ports.ProfileService, logger *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// CreateProfile godoc
// @Summary Create a style profile
// @Description Store a raw style document under a new ID
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body ports.SaveProfileRequest true "Profile data"
// @Success 201 {object} entities.StoredProfile
// @Failure 400 {object} ErrorResponse
// @Router /profiles [post]
func (h *ProfileHandler) CreateProfile(c echo.Context) error {
	var req ports.SaveProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, err := h.profileService.CreateProfile(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Create profile failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, profile)
}

// GetProfile godoc
// @Summary Get a style profile
// @Description Get the stored document, or the canonical profile with normalized=true
// @Tags profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Param normalized query bool false "Return the normalized profile"
// @Success 200 {object} entities.StoredProfile
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{id} [get]
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	id := c.Param("id")

	normalized, _ := strconv.ParseBool(c.QueryParam("normalized"))
	var (
		profile interface{}
		err     error
	)
	if normalized {
		profile, err = h.profileService.GetNormalizedProfile(c.Request().Context(), id)
	} else {
		profile, err = h.profileService.GetProfile(c.Request().Context(), id)
	}
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, profile)
}

// SaveProfile godoc
// @Summary Save a style profile
// @Description Replace the stored document of a profile, creating it if needed
// @Tags profiles
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param request body ports.SaveProfileRequest true "Profile data"
// @Success 200 {object} entities.StoredProfile
// @Failure 400 {object} ErrorResponse
// @Router /profiles/{id} [put]
func (h *ProfileHandler) SaveProfile(c echo.Context) error {
	id := c.Param("id")

	var req ports.SaveProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, err := h.profileService.SaveProfile(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Errorw("Save profile failed", "error", err, "profile_id", id)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, profile)
}

// DeleteProfile godoc
// @Summary Delete a style profile
// @Tags profiles
// @Param id path string true "Profile ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{id} [delete]
func (h *ProfileHandler) DeleteProfile(c echo.Context) error {
	id := c.Param("id")

	if err := h.profileService.DeleteProfile(c.Request().Context(), id); err != nil {
		return domainError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListProfiles godoc
// @Summary List style profiles
// @Description Most recently updated first
// @Tags profiles
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} PaginatedResponse[entities.StoredProfile]
// @Failure 400 {object} ErrorResponse
// @Router /profiles [get]
func (h *ProfileHandler) ListProfiles(c echo.Context) error {
	var filter ports.ProfileFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	if err := c.Validate(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profiles, err := h.profileService.ListProfiles(c.Request().Context(), filter)
	if err != nil {
		return domainError(err)
	}
	if profiles == nil {
		profiles = []*entities.StoredProfile{}
	}

	return c.JSON(http.StatusOK, PaginatedResponse[*entities.StoredProfile]{
		Data:   profiles,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}
