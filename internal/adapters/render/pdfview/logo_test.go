package pdfview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runsheet/core/internal/domain/entities"
)

func TestHTTPLogoFetcherRetriesOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("logo"))
	}))
	defer srv.Close()

	data, err := NewHTTPLogoFetcher(time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("logo"), data)
	assert.Equal(t, int32(2), hits.Load())
}

func TestHTTPLogoFetcherGivesUpAfterRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPLogoFetcher(time.Second).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
	assert.Equal(t, int32(2), hits.Load())
}

func TestHTTPLogoFetcherTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewHTTPLogoFetcher(50*time.Millisecond).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestImageType(t *testing.T) {
	assert.Equal(t, "PNG", imageType(pngBytes(t)))
	assert.Equal(t, "GIF", imageType([]byte("GIF89a....")))
	assert.Equal(t, "", imageType([]byte("<svg></svg>")))
}

func TestFitLogo(t *testing.T) {
	l := fitLogo(entities.Logo{}, 200, 100, 40)
	require.NotNil(t, l)
	assert.InDelta(t, 80, l.w, 1e-9)
	assert.InDelta(t, 40, l.h, 1e-9)

	l = fitLogo(entities.Logo{Width: 30}, 200, 100, 40)
	assert.InDelta(t, 15, l.h, 1e-9)

	l = fitLogo(entities.Logo{Width: 100, Height: 80}, 200, 100, 40)
	assert.InDelta(t, 50, l.w, 1e-9)
	assert.InDelta(t, 40, l.h, 1e-9)
}
