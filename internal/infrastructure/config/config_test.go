package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "runsheet.db", cfg.Database.GetDSN())
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, 4, cfg.Render.Workers)
	assert.Equal(t, 5*time.Second, cfg.Render.LogoTimeout)
	assert.Equal(t, time.UTC, cfg.Render.GetLocation())
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.GetAddr())
	assert.True(t, cfg.App.IsDevelopment())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("RENDER_WORKERS", "8")
	t.Setenv("RENDER_TIMEZONE", "Europe/Amsterdam")
	t.Setenv("STORAGE_BACKEND", "sftp")
	t.Setenv("SFTP_HOST", "files.example.com")
	t.Setenv("SFTP_USER", "deploy")
	t.Setenv("SFTP_PASSWORD", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "host=db.internal port=5432 user=postgres password= dbname=runsheet sslmode=disable", cfg.Database.GetDSN())
	assert.Equal(t, 8, cfg.Render.Workers)
	assert.Equal(t, "Europe/Amsterdam", cfg.Render.GetLocation().String())
	assert.Equal(t, 22, cfg.Storage.SFTP.Port)
	assert.Equal(t, "deploy", cfg.Storage.SFTP.User)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("render:\n  workers: 2\nstorage:\n  local:\n    dir: /srv/schedules\n"), 0o644))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Render.Workers)
	assert.Equal(t, "/srv/schedules", cfg.Storage.Local.Dir)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}, "unsupported database driver"},
		{"bad port", map[string]string{"SERVER_PORT": "70000"}, "server port"},
		{"unknown backend", map[string]string{"STORAGE_BACKEND": "s3"}, "unsupported storage backend"},
		{"sftp without credentials", map[string]string{"STORAGE_BACKEND": "sftp", "SFTP_HOST": "h", "SFTP_USER": "u"}, "sftp password or private key"},
		{"zero workers", map[string]string{"RENDER_WORKERS": "0"}, "render workers"},
		{"bad timezone", map[string]string{"RENDER_TIMEZONE": "Mars/Olympus"}, "invalid render timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
					for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
