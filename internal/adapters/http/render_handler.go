package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/runsheet/core/internal/domain/entities"
	"github.com/runsheet/core/internal/infrastructure/logger"
	"github.com/runsheet/core/internal/ports"
)

// RenderHandler handles schedule rendering requests
type RenderHandler struct {
	renderService ports.RenderService
	logger        *logger.Logger
}

// NewRenderHandler creates a new render handler
func NewRenderHandler(renderService ports.RenderService, logger *logger.Logger) *RenderHandler {
	return &RenderHandler{
		renderService: renderService,
		logger:        logger,
	}
}

// Generate godoc
// @Summary Render a schedule
// @Description Render every snapshot of the payload as HTML and PDF, upload them and the home page
// @Tags render
// @Accept json
// @Produce json
// @Param request body entities.Payload true "Schedule payload"
// @Success 200 {object} ports.RenderSummary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ports.RenderSummary
// @Failure 422 {object} ports.RenderSummary
// @Failure 500 {object} ports.RenderSummary
// @Router /render [post]
func (h *RenderHandler) Generate(c echo.Context) error {
	var payload entities.Payload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	summary, err := h.renderService.Generate(c.Request().Context(), payload)
	if err != nil {
		if summary == nil {
			return domainError(err)
		}
		return c.JSON(statusFor(err), summary)
	}

	return c.JSON(http.StatusOK, summary)
}

// Preview godoc
// @Summary Preview one view
// @Description Render a single preset view as HTML without uploading anything
// @Tags render
// @Accept json
// @Produce html
// @Param request body ports.PreviewRequest true "Preview request"
// @Success 200 {string} string "HTML document"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /render/preview [post]
func (h *RenderHandler) Preview(c echo.Context) error {
	var req ports.PreviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	page, err := h.renderService.Preview(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("Preview failed", "error", err, "group_preset_id", req.GroupPresetID)
		return domainError(err)
	}

	return c.HTML(http.StatusOK, page)
}

// ListPresets godoc
// @Summary List group presets
// @Tags render
// @Produce json
// @Success 200 {array} entities.GroupPreset
// @Router /presets [get]
func (h *RenderHandler) ListPresets(c echo.Context) error {
	return c.JSON(http.StatusOK, h.renderService.Presets())
}
