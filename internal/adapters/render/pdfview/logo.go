package pdfview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxLogoBytes = 5 << 20

// LogoFetcher loads header images by URL.
type LogoFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPLogoFetcher fetches over HTTP with a per-attempt timeout and retries
// once on failure.
type HTTPLogoFetcher struct {
	client  *http.Client
	timeout time.Duration
	retries int
}

func NewHTTPLogoFetcher(timeout time.Duration) *HTTPLogoFetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPLogoFetcher{
		client:  &http.Client{},
		timeout: timeout,
		retries: 1,
	}
}

func (f *HTTPLogoFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := f.fetchOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("fetch logo %s: %w", url, lastErr)
}

func (f *HTTPLogoFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes))
}

// imageType maps sniffed content to an fpdf image type. Unsupported formats
// yield "".
func imageType(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	case "image/gif":
		return "GIF"
	default:
		return ""
	}
}
