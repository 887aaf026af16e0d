// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/hunter-searcher/internal/api"
	"github.com/JakeFAU/hunter-searcher/internal/archive"
	"github.com/JakeFAU/hunter-searcher/internal/archive/gcs"
	"github.com/JakeFAU/hunter-searcher/internal/archive/local"
	archivememory "github.com/JakeFAU/hunter-searcher/internal/archive/memory"
	"github.com/JakeFAU/hunter-searcher/internal/config"
	"github.com/JakeFAU/hunter-searcher/internal/crawler"
	collyfetcher "github.com/JakeFAU/hunter-searcher/internal/fetcher/colly"
	"github.com/JakeFAU/hunter-searcher/internal/publisher"
	publishmemory "github.com/JakeFAU/hunter-searcher/internal/publisher/memory"
	"github.com/JakeFAU/hunter-searcher/internal/publisher/pubsub"
	"github.com/JakeFAU/hunter-searcher/internal/storage/postgres"
	"github.com/JakeFAU/hunter-searcher/internal/store"
)

// App holds the shared, long-lived services: the logger, the page store and
// the optional crawl sinks. It is built once at startup and closed on exit.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	pages   store.PageRepository
	sinks   []crawler.DocumentSink
	closers []closer
}

type closer struct {
	name  string
	close func() error
}

// New connects to Postgres using the POSTGRES_* environment, bootstraps the
// schema and builds the configured sinks. Any failure here is fatal.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pg, err := config.LoadPostgresEnv()
	if err != nil {
		return nil, fmt.Errorf("load postgres env: %w", err)
	}

	logger.Info("connecting to postgres", zap.String("host", pg.Host), zap.String("database", pg.Database))
	pages, err := postgres.NewPageStore(ctx, postgres.PageStoreConfig{
		DSN:             pg.DSN(),
		MaxConns:        cfg.DB.MaxConns,
		MinConns:        cfg.DB.MinConns,
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init page store: %w", err)
	}
	if err := pages.Ping(ctx); err != nil {
		pages.Close()
		return nil, err
	}
	if err := pages.EnsureSchema(ctx); err != nil {
		pages.Close()
		return nil, fmt.Errorf("init page store: %w", err)
	}

	a, err := NewWithStore(ctx, cfg, logger, pages)
	if err != nil {
		pages.Close()
		return nil, err
	}
	return a, nil
}

// NewWithStore builds an App around an existing page store. The App takes
// ownership of pages and closes it in Close.
func NewWithStore(ctx context.Context, cfg config.Config, logger *zap.Logger, pages store.PageRepository) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pages == nil {
		return nil, fmt.Errorf("page store is required")
	}
	a := &App{cfg: cfg, logger: logger, pages: pages}

	if err := a.initArchive(ctx); err != nil {
		a.closeSinks()
		return nil, err
	}
	if err := a.initPublisher(ctx); err != nil {
		a.closeSinks()
		return nil, err
	}
	logger.Info("application services initialized", zap.Int("sinks", len(a.sinks)))
	return a, nil
}

func (a *App) initArchive(ctx context.Context) error {
	var blobs archive.BlobStore
	switch a.cfg.Archive.Provider {
	case config.ProviderNone:
		return nil
	case config.ProviderLocal:
		bs, err := local.New(local.Config{BaseDir: a.cfg.Archive.BaseDir})
		if err != nil {
			return fmt.Errorf("init local archive: %w", err)
		}
		blobs = bs
	case config.ProviderGCS:
		bs, err := gcs.Open(ctx, gcs.Config{Bucket: a.cfg.Archive.Bucket}, a.logger)
		if err != nil {
			return fmt.Errorf("init gcs archive: %w", err)
		}
		a.closers = append(a.closers, closer{name: "gcs archive", close: bs.Close})
		blobs = bs
	case config.ProviderMemory:
		blobs = archivememory.NewBlobStore()
	default:
		return fmt.Errorf("unknown archive provider: %s", a.cfg.Archive.Provider)
	}
	a.logger.Info("archiving raw html", zap.String("provider", a.cfg.Archive.Provider))
	a.sinks = append(a.sinks, archive.NewSink(blobs, a.cfg.Archive.Prefix, a.logger))
	return nil
}

func (a *App) initPublisher(ctx context.Context) error {
	var pub publisher.Publisher
	switch a.cfg.Publish.Provider {
	case config.ProviderNone:
		return nil
	case config.ProviderPubSub:
		p, err := pubsub.Open(ctx, a.cfg.Publish.ProjectID, a.cfg.Publish.Topic, a.logger)
		if err != nil {
			return fmt.Errorf("init pubsub publisher: %w", err)
		}
		a.closers = append(a.closers, closer{name: "pubsub publisher", close: p.Close})
		pub = p
	case config.ProviderMemory:
		pub = publishmemory.New()
	default:
		return fmt.Errorf("unknown publish provider: %s", a.cfg.Publish.Provider)
	}
	a.logger.Info("publishing page events", zap.String("provider", a.cfg.Publish.Provider))
	a.sinks = append(a.sinks, publisher.NewSink(pub, a.cfg.Publish.Topic, a.logger))
	return nil
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Pages exposes the page store.
func (a *App) Pages() store.PageRepository {
	return a.pages
}

// Sinks returns the configured crawl sinks.
func (a *App) Sinks() []crawler.DocumentSink {
	return append([]crawler.DocumentSink(nil), a.sinks...)
}

// NewCrawler builds a Crawler backed by a colly fetcher, the page store and
// the configured sinks.
func (a *App) NewCrawler(cfg *crawler.Config) (*crawler.Crawler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.UserAgent,
		Delay:     cfg.Delay,
		Timeout:   cfg.RequestTimeout,
	}, a.logger)
	return crawler.New(cfg, fetcher, a.pages, a.logger, crawler.WithSinks(a.sinks...)), nil
}

// Serve runs the presentation server until ctx is canceled.
func (a *App) Serve(ctx context.Context) error {
	if err := api.NewServer(a.pages, a.logger).ListenAndServe(ctx, a.cfg.Server.Port); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Close shuts down all services. It is safe to call once.
func (a *App) Close() {
	a.logger.Info("shutting down application services")
	a.closeSinks()
	a.pages.Close()
	if err := a.logger.Sync(); err != nil {
		// stdout/stderr cannot always be synced; nothing else to do.
		a.logger.Debug("sync logger on shutdown", zap.Error(err))
	}
}

func (a *App) closeSinks() {
	for _, c := range a.closers {
		if err := c.close(); err != nil {
			a.logger.Warn("close failed", zap.String("service", c.name), zap.Error(err))
		}
	}
	a.closers = nil
}
