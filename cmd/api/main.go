package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mepex/cotizador-backend/api/controllers"
	"github.com/mepex/cotizador-backend/api/routes"
	"github.com/mepex/cotizador-backend/internal/catalog"
	"github.com/mepex/cotizador-backend/internal/directory"
	"github.com/mepex/cotizador-backend/internal/quotations"
	"github.com/mepex/cotizador-backend/internal/sessions"
	"github.com/mepex/cotizador-backend/pkg/config"
	"github.com/mepex/cotizador-backend/pkg/db"
	"github.com/mepex/cotizador-backend/pkg/instance"
	"github.com/mepex/cotizador-backend/pkg/logger"
	"github.com/mepex/cotizador-backend/pkg/metrics"
	"github.com/mepex/cotizador-backend/pkg/migrate"
	"github.com/mepex/cotizador-backend/pkg/notion"
	"github.com/mepex/cotizador-backend/pkg/redis"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeAutoRun(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run migrations", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    nil,
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		readiness["redis"] = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured, using in-process sessions and sql numbering")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	remoteMetrics := metrics.NewRemoteMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	var notionClient *notion.Client
	if cfg.Notion.Enabled() {
		notionClient, err = notion.NewClient(cfg.Notion.APIKey,
			notion.WithBaseURL(cfg.Notion.BaseURL),
			notion.WithVersion(cfg.Notion.Version),
			notion.WithTimeout(cfg.Notion.Timeout),
			notion.WithMetrics(remoteMetrics),
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create workspace client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "workspace not configured, running on local catalog and storage")
	}

	catalogService, err := newCatalogService(cfg, logg, notionClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	if cfg.Catalog.SyncOnStart && notionClient != nil {
		if res, err := catalogService.Sync(context.Background(), false); err != nil {
			logg.Error(context.Background(), "initial catalog sync failed, serving seed", err)
		} else {
			ctx := logg.WithFields(context.Background(), map[string]any{
				"fetched": res.Fetched,
				"added":   res.Added,
				"updated": res.Updated,
				"cached":  res.FromCache,
			})
			logg.Info(ctx, "catalog synced")
		}
	}

	directoryParams := directory.ServiceParams{
		Databases: directory.Databases{
			Clients:  cfg.Notion.ClientsDatabaseID,
			Projects: cfg.Notion.ProjectsDatabaseID,
			Events:   cfg.Notion.EventsDatabaseID,
		},
		CacheTTL: cfg.Catalog.CacheTTL,
		Logger:   logg,
	}
	if notionClient != nil {
		directoryParams.Workspace = notionClient
	}
	if redisClient != nil {
		directoryParams.Cache = redisClient
		directoryParams.KeyFunc = redisClient.CatalogKey
	}
	directoryService := directory.NewService(directoryParams)

	var remote *quotations.RemoteStore
	if notionClient != nil {
		remote = quotations.NewRemoteStore(notionClient, cfg.Notion.QuotationsDatabaseID)
	}
	var counter quotations.Counter
	if redisClient != nil {
		counter = redisClient
	}
	quotationService, err := quotations.NewService(quotations.ServiceParams{
		Remote:        remote,
		Local:         quotations.NewLocalStore(dbClient.DB(), cfg.Quotations.LocalCap, logg),
		Sequencer:     quotations.NewSequencer(counter, dbClient.DB(), logg),
		Metrics:       remoteMetrics,
		Logger:        logg,
		UploadTimeout: cfg.Quotations.PDFUploadTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create quotation service", err)
		os.Exit(1)
	}

	var sessionStore sessions.Store = sessions.NewMemoryStore()
	if redisClient != nil {
		sessionStore = sessions.NewRedisStore(redisClient, redis.IsMiss)
	}
	sessionManager := sessions.NewManager(sessions.ManagerParams{
		Lookup: catalogService.Index(),
		Store:  sessionStore,
		TTL:    cfg.Sessions.TTL,
		Logger: logg,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			registry,
			httpMetrics,
			readiness,
			catalogService,
			directoryService,
			quotationService,
			sessionManager,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "api server shutdown failed", err)
	}
	if err := quotationService.Wait(shutdownCtx); err != nil {
		logg.Error(ctx, "pending document uploads abandoned", err)
	}
	logg.Info(ctx, "api server stopped")
}

// newCatalogService seeds the index from disk and attaches the workspace
// and cache when they are available.
func newCatalogService(cfg *config.Config, logg *logger.Logger, ws *notion.Client, cache *redis.Client) (*catalog.Service, error) {
	var items []catalog.Item
	if cfg.Catalog.SeedPath != "" {
		seed, err := catalog.LoadSeed(cfg.Catalog.SeedPath)
		if err != nil {
			return nil, err
		}
		items = seed
	}

	params := catalog.ServiceParams{
		Index:      catalog.NewIndex(items...),
		DatabaseID: cfg.Notion.ItemsDatabaseID,
		CacheTTL:   cfg.Catalog.CacheTTL,
		Logger:     logg,
	}
	if ws != nil {
		params.Workspace = ws
	}
	if cache != nil {
		params.Cache = cache
		params.CacheKey = cache.CatalogKey("items")
	}
	return catalog.NewService(params)
}
