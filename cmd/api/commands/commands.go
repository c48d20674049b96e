package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/runsheet/core/internal/adapters/repository"
	"github.com/runsheet/core/internal/adapters/storage"
	"github.com/runsheet/core/internal/application/services"
	"github.com/runsheet/core/internal/domain/entities"
	"github.com/runsheet/core/internal/infrastructure/config"
	"github.com/runsheet/core/internal/infrastructure/database"
	"github.com/runsheet/core/internal/infrastructure/logger"
	"github.com/runsheet/core/internal/infrastructure/metrics"
	"github.com/runsheet/core/internal/infrastructure/server"
	"github.com/runsheet/core/internal/ports"
	"github.com/runsheet/core/migrations"
)

// Build information, set with -ldflags at release time
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "development"
)

const shutdownTimeout = 30 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Runsheet API server",
		Long:  "Start the render and profile API with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer(*configFile)
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand(configFile *string) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version). SQLite databases only support up.",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration(*configFile, "up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration(*configFile, "down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion(*configFile)
		},
	})

	return migrateCmd
}

// NewRenderCommand creates the offline render command. It renders a payload
// file into a local directory without the database or the HTTP server.
func NewRenderCommand(configFile *string) *cobra.Command {
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a payload file to a local directory",
		Run: func(cmd *cobra.Command, args []string) {
			payloadFile, _ := cmd.Flags().GetString("payload")
			profileFile, _ := cmd.Flags().GetString("profile")
			outDir, _ := cmd.Flags().GetString("out")
			baseURL, _ := cmd.Flags().GetString("base-url")

			if payloadFile == "" {
				log.Fatal("--payload is required")
			}

			runRender(*configFile, payloadFile, profileFile, outDir, baseURL)
		},
	}

	renderCmd.Flags().String("payload", "", "Schedule payload JSON file (required)")
	renderCmd.Flags().String("profile", "", "Style profile file (JSON or YAML), replaces the payload styles")
	renderCmd.Flags().String("out", "./artifacts", "Output directory")
	renderCmd.Flags().String("base-url", "", "Public URL of the output directory (defaults to file URLs)")

	return renderCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Runsheet version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Runsheet %s\n", Version)
			fmt.Printf("Build Date: %s\n", BuildDate)
			fmt.Printf("Git Commit: %s\n", GitCommit)
		},
	}
}

func loadConfig(configFile string) *config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

func runServer(configFile string) {
	cfg := loadConfig(configFile)

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		appLogger.Fatalw("Failed to connect to database", "error", err)
	}
	defer db.Close()

	profileRepo := repository.NewProfileRepository(db.DB)
	if db.Driver() == "sqlite" {
		ensureSchema(profileRepo, appLogger)
	}

	var (
		profiles    ports.ProfileRepository = profileRepo
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled {
		redisClient, err = connectRedis(context.Background(), cfg.Redis, appLogger)
		if err != nil {
			appLogger.Warnw("Running without profile cache", "error", err)
		} else {
			defer redisClient.Close()
			cache := repository.NewCacheRepository(redisClient, cfg.Redis.Prefix)
			profiles = repository.NewCachedProfileRepository(profileRepo, cache, cfg.Redis.TTL, appLogger.WithComponent("cache"))
		}
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	presets, err := repository.LoadPresetFile(cfg.Render.PresetsFile)
	if err != nil {
		appLogger.Fatalw("Failed to load group presets", "error", err)
	}

	blobs, err := newBlobStore(cfg.Storage, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize artifact storage", "error", err)
	}
	if closer, ok := blobs.(*storage.SFTPStore); ok {
		defer closer.Close()
	}

	renderService, err := newRenderService(cfg, renderStack{presets: presets, blobs: blobs, metrics: m}, profiles, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize renderers", "error", err)
	}

	srv := server.New(cfg, db, redisClient, server.Services{
		Render:   renderService,
		Profiles: services.NewProfileService(profiles, appLogger.WithComponent("profiles")),
	}, m, appLogger)

	appLogger.Infow("Starting Runsheet API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"database", db.Driver(),
		"storage", cfg.Storage.Backend,
		"presets", len(presets.Presets()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.GetAddr())
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalw("Server failed to start", "error", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Errorw("Graceful shutdown failed", "error", err)
		}
	}
}

func ensureSchema(repo *repository.ProfileRepositoryImpl, appLogger *logger.Logger) {
	start := time.Now()
	err := repo.EnsureSchema(context.Background())
	appLogger.LogDatabaseQuery("ensure style_profiles schema", float64(time.Since(start).Microseconds())/1000, err)
	if err != nil {
		appLogger.Fatalw("Failed to prepare database schema", "error", err)
	}
}

func newMigrator(db *database.DB) *migrate.Migrate {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Fatalf("Failed to open migration files: %v", err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		log.Fatalf("Failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}
	return m
}

func runMigration(configFile, direction string) {
	cfg := loadConfig(configFile)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if db.Driver() == "sqlite" {
		if direction != "up" {
			log.Fatalf("SQLite databases only support migrate up")
		}
		if err := repository.NewProfileRepository(db.DB).EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Println("Migration up completed successfully")
		return
	}

	m := newMigrator(db)

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Migration failed: %v", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No migrations to run")
	} else {
		fmt.Printf("Migration %s completed successfully\n", direction)
	}
}

func showMigrationVersion(configFile string) {
	cfg := loadConfig(configFile)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if db.Driver() == "sqlite" {
		log.Fatalf("SQLite databases are not versioned")
	}

	version, dirty, err := newMigrator(db).Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied")
		return
	}
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
}

func runRender(configFile, payloadFile, profileFile, outDir, baseURL string) {
	cfg := loadConfig(configFile)

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	payload, err := readPayload(payloadFile, profileFile)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	presets, err := repository.LoadPresetFile(cfg.Render.PresetsFile)
	if err != nil {
		log.Fatalf("Failed to load group presets: %v", err)
	}

	if baseURL == "" {
		abs, err := filepath.Abs(outDir)
		if err != nil {
			log.Fatalf("Failed to resolve output directory: %v", err)
		}
		baseURL = "file://" + filepath.ToSlash(abs)
	}
	blobs, err := storage.NewLocalStore(outDir, baseURL)
	if err != nil {
		log.Fatalf("Failed to prepare output directory: %v", err)
	}

	renderService, err := newRenderService(cfg, renderStack{presets: presets, blobs: blobs}, nil, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize renderers: %v", err)
	}

	summary, renderErr := renderService.Generate(context.Background(), payload)

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode summary: %v", err)
	}
	fmt.Println(string(out))

	if renderErr != nil {
		os.Exit(1)
	}
}

// readPayload decodes the payload and, when given, replaces its styles with
// the profile file. YAML is a superset of JSON so both formats are accepted.
func readPayload(payloadFile, profileFile string) (entities.Payload, error) {
	var payload entities.Payload

	data, err := os.ReadFile(payloadFile)
	if err != nil {
		return payload, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("decode payload: %w", err)
	}

	if profileFile == "" {
		return payload, nil
	}

	raw, err := os.ReadFile(profileFile)
	if err != nil {
		return payload, err
	}
	var styles map[string]any
	if err := yaml.Unmarshal(raw, &styles); err != nil {
		return payload, fmt.Errorf("decode profile: %w", err)
	}
	payload.Styles = styles
	payload.ProfileID = ""
	return payload, nil
}
