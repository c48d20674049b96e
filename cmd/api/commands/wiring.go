package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/runsheet/core/internal/adapters/render/home"
	"github.com/runsheet/core/internal/adapters/render/htmlview"
	"github.com/runsheet/core/internal/adapters/render/markdown"
	"github.com/runsheet/core/internal/adapters/render/pdfview"
	"github.com/runsheet/core/internal/adapters/repository"
	"github.com/runsheet/core/internal/adapters/storage"
	"github.com/runsheet/core/internal/application/services"
	"github.com/runsheet/core/internal/infrastructure/config"
	"github.com/runsheet/core/internal/infrastructure/logger"
	"github.com/runsheet/core/internal/infrastructure/metrics"
	"github.com/runsheet/core/internal/ports"
)

const redisAttempts = 3

// countingLogoFetcher records every logo fetch outcome.
type countingLogoFetcher struct {
	next    pdfview.LogoFetcher
	metrics *metrics.Metrics
}

func (f countingLogoFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	data, err := f.next.Fetch(ctx, url)
	f.metrics.ObserveLogoFetch(err)
	return data, err
}

// newBlobStore builds the configured artifact store.
func newBlobStore(cfg config.StorageConfig, log *logger.Logger) (ports.BlobStore, error) {
	switch cfg.Backend {
	case "sftp":
		sc := storage.SFTPConfig{
			Host:               cfg.SFTP.Host,
			Port:               cfg.SFTP.Port,
			Username:           cfg.SFTP.User,
			Password:           cfg.SFTP.Password,
			Passphrase:         cfg.SFTP.Passphrase,
			HostKeyFingerprint: cfg.SFTP.HostKeyFingerprint,
			RootDir:            cfg.SFTP.RootDir,
			BaseURL:            cfg.BaseURL,
			Timeout:            cfg.SFTP.Timeout,
		}
		if cfg.SFTP.PrivateKeyFile != "" {
			key, err := os.ReadFile(cfg.SFTP.PrivateKeyFile)
			if err != nil {
				return nil, fmt.Errorf("read sftp private key: %w", err)
			}
			sc.PrivateKey = string(key)
		}
		return storage.NewSFTPStore(sc, log.WithComponent("sftp")), nil
	default:
		return storage.NewLocalStore(cfg.Local.Dir, cfg.BaseURL)
	}
}

// connectRedis dials Redis with exponential backoff. The cache is optional:
// callers run without it when this fails.
func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	retryDelay := time.Second

	for attempt := 1; attempt <= redisAttempts; attempt++ {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.GetAddr(),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		})

		err := client.Ping(ctx).Err()
		if err == nil {
			log.Infow("Redis connected", "addr", cfg.GetAddr())
			return client, nil
		}
		client.Close()

		log.Warnw("Redis connection failed", "attempt", attempt, "error", err)
		if attempt < redisAttempts {
			time.Sleep(retryDelay)
			retryDelay *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d attempts", redisAttempts)
}

// renderStack bundles what both the server and the offline render command
// need to run the pipeline.
type renderStack struct {
	presets *repository.PresetSourceImpl
	blobs   ports.BlobStore
	metrics *metrics.Metrics
}

func newRenderService(cfg *config.Config, stack renderStack, profiles ports.ProfileRepository, log *logger.Logger) (*services.RenderService, error) {
	md := markdown.New()

	htmlRenderer, err := htmlview.New(md)
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}
	homeRenderer, err := home.New(md)
	if err != nil {
		return nil, fmt.Errorf("home renderer: %w", err)
	}

	var logos pdfview.LogoFetcher = pdfview.NewHTTPLogoFetcher(cfg.Render.LogoTimeout)
	if stack.metrics != nil {
		logos = countingLogoFetcher{next: logos, metrics: stack.metrics}
	}

	return services.NewRenderService(
		services.RenderDeps{
			Presets:  stack.presets,
			Profiles: profiles,
			Blobs:    stack.blobs,
			HTML:     htmlRenderer,
			PDF:      pdfview.New(logos, log.WithComponent("pdf")),
			Home:     homeRenderer,
			Metrics:  stack.metrics,
		},
		services.RenderConfig{
			Workers:  cfg.Render.Workers,
			Location: cfg.Render.GetLocation(),
		},
		log.WithComponent("render"),
	), nil
}
