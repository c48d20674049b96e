// Package storage persists rendered artifacts and maps them to public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/runsheet/core/internal/ports"
)

var ErrInvalidPath = errors.New("invalid artifact path")

// cleanPath normalizes an artifact path to a slash-separated relative path
// that cannot leave the store root.
func cleanPath(p string) (string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return clean, nil
}

// publicURL joins base and the escaped path segments of p.
func publicURL(base, p string) string {
	clean, err := cleanPath(p)
	if err != nil {
		return ""
	}
	u, err := url.JoinPath(base, strings.Split(clean, "/")...)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + clean
	}
	return u
}

// LocalStore writes artifacts below a directory, typically one served by a
// static file server at baseURL.
type LocalStore struct {
	root    string
	baseURL string
}

var _ ports.BlobStore = (*LocalStore)(nil)

func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStore{root: root, baseURL: baseURL}, nil
}

// Put writes data atomically: readers never observe a partial file.
func (s *LocalStore) Put(ctx context.Context, p, _ string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := cleanPath(p)
	if err != nil {
		return err
	}

	target := filepath.Join(s.root, filepath.FromSlash(clean))
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("move file into place: %w", err)
	}
	return nil
}

func (s *LocalStore) PublicURL(p string) string {
	return publicURL(s.baseURL, p)
}
