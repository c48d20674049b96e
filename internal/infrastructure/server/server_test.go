package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runsheet/core/internal/domain/entities"
	"github.com/runsheet/core/internal/infrastructure/config"
	"github.com/runsheet/core/internal/infrastructure/database"
	"github.com/runsheet/core/internal/infrastructure/logger"
	"github.com/runsheet/core/internal/infrastructure/metrics"
	"github.com/runsheet/core/internal/ports"
)

type fakeRender struct{}

func (fakeRender) Generate(context.Context, entities.Payload) (*ports.RenderSummary, error) {
	return &ports.RenderSummary{Success: true, RunID: "r1"}, nil
}

func (fakeRender) Preview(context.Context, ports.PreviewRequest) (string, error) {
	return "<html></html>", nil
}

func (fakeRender) Presets() []entities.GroupPreset {
	return []entities.GroupPreset{{ID: "by-day", GroupBy: entities.GroupByDate}}
}

type fakeProfiles struct{ ports.ProfileService }

func (fakeProfiles) GetProfile(_ context.Context, id string) (*entities.StoredProfile, error) {
	return nil, entities.ErrProfileNotFound
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "runsheet", Version: "test"},
		Server:   config.ServerConfig{Port: 8080, BodyLimit: "1M", WriteTimeout: 5 * time.Second},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		Storage:  config.StorageConfig{Backend: "local", Local: config.LocalConfig{Dir: t.TempDir()}},
		Security: config.SecurityConfig{CORSAllowedOrigins: "*", RateLimitRequests: 100, RateLimitWindow: time.Minute},
		Metrics:  config.MetricsConfig{Enabled: true, Namespace: "test"},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := testConfig(t)
	db, err := database.New(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(cfg, db, nil, Services{Render: fakeRender{}, Profiles: fakeProfiles{}}, metrics.New("test"), logger.NewNop())
}

func serve(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = serve(s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(s, http.MethodGet, "/health/detailed", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"driver":"sqlite"`)
	assert.NotContains(t, rec.Body.String(), "redis")
}

func TestRoutesAreWired(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodPost, "/api/v1/render", `{"styles": {}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"runId":"r1"`)

	rec = serve(s, http.MethodGet, "/api/v1/presets", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "by-day")

	rec = serve(s, http.MethodPost, "/api/v1/render/preview", `{"groupPresetId": "by-day"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "style-src 'self' 'unsafe-inline'")

	rec = serve(s, http.MethodGet, "/api/v1/profiles/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"style profile not found"`)

	rec = serve(s, http.MethodGet, "/api/v1/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	serve(s, http.MethodGet, "/health", "")
	rec := serve(s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="GET",path="/health",status="200"} 1`)
}
