package storage

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/runsheet/core/internal/infrastructure/logger"
)

func TestLocalStorePut(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "https://cdn.example.com/schedules")
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "summit/run-1/day-1.html", "text/html", []byte("<html>")))
	require.NoError(t, store.Put(context.Background(), "summit/run-1/day-1.html", "text/html", []byte("<html>v2")))

	data, err := os.ReadFile(filepath.Join(root, "summit", "run-1", "day-1.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>v2", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "summit", "run-1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalStoreStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(filepath.Join(root, "store"), "")
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "../../escape.html", "text/html", []byte("x")))
	_, err = os.Stat(filepath.Join(root, "store", "escape.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "escape.html"))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, store.Put(context.Background(), "/", "text/html", nil), ErrInvalidPath)
}

func TestLocalStoreHonoursContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Put(ctx, "a.html", "text/html", nil), context.Canceled)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/s/summit/run%201/index.html", publicURL("https://cdn.example.com/s/", "summit/run 1/index.html"))
	assert.Equal(t, "https://cdn.example.com/a.pdf", publicURL("https://cdn.example.com", "/a.pdf"))
	assert.Empty(t, publicURL("https://cdn.example.com", ""))
}

func TestAuthMethods(t *testing.T) {
	_, err := authMethods(SFTPConfig{})
	assert.Error(t, err)

	methods, err := authMethods(SFTPConfig{Password: "secret"})
	require.NoError(t, err)
	assert.Len(t, methods, 1)

	_, err = authMethods(SFTPConfig{PrivateKey: "not a key"})
	assert.ErrorContains(t, err, "failed to parse private key")
}

func TestHostKeyCallback(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	key, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	fingerprint := ssh.FingerprintSHA256(key)

	unpinned := NewSFTPStore(SFTPConfig{Host: "files.example.com"}, logger.NewNop())
	assert.NoError(t, unpinned.hostKeyCallback("files.example.com:22", nil, key))

	pinned := NewSFTPStore(SFTPConfig{HostKeyFingerprint: fingerprint}, logger.NewNop())
	assert.NoError(t, pinned.hostKeyCallback("files.example.com:22", nil, key))

	wrong := NewSFTPStore(SFTPConfig{HostKeyFingerprint: "SHA256:other"}, logger.NewNop())
	assert.ErrorContains(t, wrong.hostKeyCallback("files.example.com:22", nil, key), "host key mismatch")
}

func TestSFTPStoreDefaults(t *testing.T) {
	s := NewSFTPStore(SFTPConfig{BaseURL: "https://files.example.com"}, logger.NewNop())
	assert.Equal(t, 22, s.cfg.Port)
	assert.Equal(t, "https://files.example.com/x/y.pdf", s.PublicURL("x/y.pdf"))
}

type memFile struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (f *memFile) Close() error {
	f.closed = true
	return f.closeErr
}

type memFS struct {
	dirs  []string
	files map[string]*memFile
	err   error
}

func (fs *memFS) MkdirAll(dir string) error {
	fs.dirs = append(fs.dirs, dir)
	return nil
}

func (fs *memFS) Create(name string) (io.WriteCloser, error) {
	f := &memFile{closeErr: fs.err}
	fs.files[name] = f
	return f, nil
}

func TestUpload(t *testing.T) {
	fs := &memFS{files: map[string]*memFile{}}

	require.NoError(t, upload(fs, "/srv/event/run/day.pdf", strings.NewReader("%PDF")))
	assert.Equal(t, []string{"/srv/event/run"}, fs.dirs)
	assert.Equal(t, "%PDF", fs.files["/srv/event/run/day.pdf"].String())
	assert.True(t, fs.files["/srv/event/run/day.pdf"].closed)
}

func TestUploadReportsCloseFailure(t *testing.T) {
	fs := &memFS{files: map[string]*memFile{}, err: errors.New("connection lost")}

	err := upload(fs, "/srv/day.pdf", strings.NewReader("%PDF"))
	assert.ErrorContains(t, err, "failed to close remote file: connection lost")
}
