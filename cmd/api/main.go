// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/rsandford/stockpile/internal/adapters/backend"
	redis_a "github.com/rsandford/stockpile/internal/adapters/redis_adapter"
	"github.com/rsandford/stockpile/internal/core/ports"
	"github.com/rsandford/stockpile/internal/core/services"
	"github.com/rsandford/stockpile/internal/handlers"
	"github.com/rsandford/stockpile/internal/handlers/middleware"
	"github.com/rsandford/stockpile/internal/pkg/config"
	"github.com/rsandford/stockpile/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting stockpile record service",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
	)

	// Load configuration
	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("backend", cfg.Sync.BackendKind),
	)

	ctx := context.Background()

	deps, err := initializeDependencies(ctx, cfg, slogger.Logger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	// Load the collection before accepting traffic
	if err := deps.coordinator.Initialize(ctx); err != nil {
		slogger.Error("failed to initialize collection", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := setupHTTPServer(cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		// One last write so nothing applied in memory is lost
		persistCtx, persistCancel := context.WithTimeout(context.Background(), cfg.Sync.CallTimeout)
		if err := deps.inventoryService.SyncNow(persistCtx); err != nil {
			slogger.Warn("final sync failed", slog.String("error", err.Error()))
		}
		persistCancel()

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	redisClient      *redis.Client
	dbPool           *pgxpool.Pool
	coordinator      *services.Coordinator
	inventoryService *services.InventoryService

	itemsHandler        *handlers.ItemsHandler
	importExportHandler *handlers.ImportExportHandler
	syncHandler         *handlers.SyncHandler
	healthHandler       *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.dbPool != nil {
		d.dbPool.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	// Overlay credentials from the secrets store when one is configured
	if cfg.Secrets.Name != "" {
		sm, err := config.NewAWSSecretsManager(cfg.Secrets.Region, cfg.Secrets.Name, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize secrets manager: %w", err)
		}
		if err := cfg.ApplyBackendSecrets(ctx, sm); err != nil {
			return nil, err
		}
	}

	// Snapshot cache
	var cache ports.SnapshotCache
	if cfg.Sync.CacheEnabled {
		logger.Info("connecting to Redis",
			slog.String("addr", cfg.GetRedisAddress()))

		redisClient := redis.NewClient(&redis.Options{
			Addr:            cfg.GetRedisAddress(),
			Password:        cfg.Redis.Password,
			DB:              cfg.Redis.DB,
			MaxRetries:      cfg.Redis.MaxRetries,
			MinRetryBackoff: cfg.Redis.MinRetryBackoff,
			MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
			DialTimeout:     cfg.Redis.DialTimeout,
			ReadTimeout:     cfg.Redis.ReadTimeout,
			WriteTimeout:    cfg.Redis.WriteTimeout,
			PoolSize:        cfg.Redis.PoolSize,
			MinIdleConns:    cfg.Redis.MinIdleConns,
			PoolTimeout:     cfg.Redis.PoolTimeout,
		})

		// The cache is a fallback source; an unreachable Redis only
		// degrades startup, it must not block it.
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, snapshot cache degraded",
				slog.String("error", err.Error()))
		}
		deps.redisClient = redisClient
		cache = redis_a.NewSnapshotCache(redisClient, cfg.Sync.CacheSlot, logger)
	}

	remote, fallbacks, err := buildBackends(ctx, cfg, deps, logger)
	if err != nil {
		return nil, err
	}

	opts := []services.CoordinatorOption{
		services.WithCallTimeout(cfg.Sync.CallTimeout),
		services.WithFallbacks(fallbacks...),
	}
	if remote != nil {
		opts = append(opts, services.WithRemote(remote))
	}
	if cache != nil {
		opts = append(opts, services.WithCache(cache))
	}
	deps.coordinator = services.NewCoordinator(logger, opts...)

	deps.inventoryService = services.NewInventoryService(deps.coordinator, logger)

	deps.itemsHandler = handlers.NewItemsHandler(deps.inventoryService, logger)
	deps.importExportHandler = handlers.NewImportExportHandler(deps.inventoryService, logger)
	deps.syncHandler = handlers.NewSyncHandler(deps.inventoryService, logger)
	deps.healthHandler = handlers.NewHealthHandler(deps.inventoryService, cache, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// buildBackends constructs the writable backend and fallback sources
// for the configured backend kind.
func buildBackends(ctx context.Context, cfg *config.Config, deps *dependencies, logger *slog.Logger) (ports.WritableBackend, []ports.Backend, error) {
	httpClient := &http.Client{Timeout: cfg.Sync.CallTimeout}

	var remote ports.WritableBackend
	var fallbacks []ports.Backend

	switch cfg.Sync.BackendKind {
	case "none":

	case "raw":
		// Read-only deployment: the raw URL is a source, never a sink
		fallbacks = append(fallbacks, backend.NewRaw(cfg.Raw.URL, httpClient, logger))

	case "keyvalue":
		remote = backend.NewKeyValue(backend.KeyValueConfig{
			Endpoint:  cfg.KeyValue.Endpoint,
			AccessKey: cfg.KeyValue.AccessKey,
		}, httpClient, logger)

	case "gitcontent":
		remote = backend.NewGitContent(backend.GitContentConfig{
			URL:           cfg.GitContent.URL,
			Branch:        cfg.GitContent.Branch,
			Token:         cfg.GitContent.Token,
			CommitMessage: cfg.GitContent.CommitMessage,
		}, httpClient, logger)

	case "s3":
		s3cfg := backend.S3Config{
			Bucket:          cfg.S3.Bucket,
			Key:             cfg.S3.Key,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Endpoint:        cfg.S3.Endpoint,
			UsePathStyle:    cfg.S3.UsePathStyle,
		}
		client, err := backend.NewS3Client(ctx, s3cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize s3 client: %w", err)
		}
		remote = backend.NewS3(s3cfg, client, logger)

	case "pgdoc":
		poolCfg, err := pgxpool.ParseConfig(cfg.GetDatabaseURL())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse database config: %w", err)
		}
		poolCfg.MaxConns = cfg.Database.MaxConnections
		poolCfg.MinConns = cfg.Database.MinConnections
		poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
		poolCfg.MaxConnIdleTime = cfg.Database.MaxConnIdleTime
		poolCfg.HealthCheckPeriod = cfg.Database.HealthCheckPeriod
		poolCfg.ConnConfig.ConnectTimeout = cfg.Database.ConnectTimeout

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		deps.dbPool = pool

		pgBackend := backend.NewPgDoc(backend.PgDocConfig{Slot: cfg.Database.Slot}, pool, logger)
		if err := pgBackend.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		remote = pgBackend

	default:
		return nil, nil, fmt.Errorf("unknown sync backend %q", cfg.Sync.BackendKind)
	}

	// A generic fallback URL reads through the raw backend
	if cfg.Sync.FallbackURL != "" {
		fallbacks = append(fallbacks, backend.NewRaw(cfg.Sync.FallbackURL, httpClient, logger))
	}

	return remote, fallbacks, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, slogger *logger.Logger) *http.Server {
	mux := http.NewServeMux()

	registerRoutes(mux, deps)

	// Apply middleware in reverse order (innermost first)
	var handler http.Handler = mux
	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}
	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}
	handler = middleware.Recovery(slogger.Logger)(handler)
	handler = middleware.Logger(slogger)(handler)
	handler = middleware.RequestID(handler)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slogger.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies) {
	apiV1 := "/api/v1"

	// Health and readiness endpoints
	mux.HandleFunc("GET /health", deps.healthHandler.Health)
	mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
	mux.HandleFunc("GET "+apiV1+"/health", deps.healthHandler.Health)

	// Item endpoints
	mux.HandleFunc("GET "+apiV1+"/items", deps.itemsHandler.ListItems)
	mux.HandleFunc("GET "+apiV1+"/items/{id}", deps.itemsHandler.GetItem)
	mux.HandleFunc("POST "+apiV1+"/items", deps.itemsHandler.CreateItem)
	mux.HandleFunc("PUT "+apiV1+"/items/{id}", deps.itemsHandler.UpdateItem)
	mux.HandleFunc("DELETE "+apiV1+"/items/{id}", deps.itemsHandler.DeleteItem)
	mux.HandleFunc("POST "+apiV1+"/items/sort", deps.itemsHandler.ToggleSort)

	// Import/export endpoints
	mux.HandleFunc("POST "+apiV1+"/import", deps.importExportHandler.Import)
	mux.HandleFunc("GET "+apiV1+"/export", deps.importExportHandler.ExportJSON)
	mux.HandleFunc("GET "+apiV1+"/export/xlsx", deps.importExportHandler.ExportXLSX)

	// Sync endpoints
	mux.HandleFunc("POST "+apiV1+"/sync", deps.syncHandler.SyncNow)
	mux.HandleFunc("GET "+apiV1+"/sync/status", deps.syncHandler.Status)
}
