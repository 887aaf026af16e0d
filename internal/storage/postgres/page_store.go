// Package postgres implements the storage engine on Postgres full-text search.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/JakeFAU/hunter-searcher/internal/metrics"
	"github.com/JakeFAU/hunter-searcher/internal/store"
)

// PageStoreConfig controls the Postgres connection pool.
type PageStoreConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// pool is the subset of pgxpool.Pool the store needs, so pgxmock can stand in.
type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Ping(context.Context) error
	Close()
}

// PageStore persists crawled pages in the webpages table. Apart from
// EnsureSchema and Ping, failures are logged and never surfaced to callers.
type PageStore struct {
	pool   pool
	logger *zap.Logger
}

var _ store.PageRepository = (*PageStore)(nil)

// NewPageStore connects a pool using cfg.
func NewPageStore(ctx context.Context, cfg PageStoreConfig, logger *zap.Logger) (*PageStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewPageStoreWithPool(p, logger)
}

// NewPageStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewPageStoreWithPool(p pool, logger *zap.Logger) (*PageStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	return &PageStore{pool: p, logger: logger}, nil
}

// EnsureSchema creates the table, index, function and trigger if missing.
func (s *PageStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema (%s): %w", firstLine(stmt), err)
		}
	}
	return nil
}

// Ping checks connectivity.
func (s *PageStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *PageStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// AddPage stores page. An existing row with the same title, content and url is
// left alone unless force is set; otherwise the old row is deleted and a new
// one inserted so the trigger recomputes the search vector.
func (s *PageStore) AddPage(ctx context.Context, page store.Page, force bool) {
	logger := s.logger.With(zap.String("url", page.URL))

	var existing store.Page
	err := s.pool.QueryRow(ctx, selectForStaleness, page.URL).Scan(&existing.Title, &existing.URL, &existing.Content)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		logger.Warn("staleness lookup failed; inserting", zap.Error(err))
	case !force && !store.IsStale(existing, page):
		logger.Debug("page unchanged; skipping")
		metrics.ObserveStoreOp("add_page_skip", nil)
		return
	default:
		logger.Debug("page stale; replacing")
		s.DeletePage(ctx, page.URL)
	}

	_, err = s.pool.Exec(ctx, insertPage, page.Title, page.URL, page.Blurb, page.Content, page.ScriptCount)
	metrics.ObserveStoreOp("add_page", err)
	if err != nil {
		logger.Warn("insert page failed", zap.Error(err))
		return
	}
	logger.Debug("page stored", zap.String("title", page.Title))
}

// Search returns rows ranked above store.MinRank, best first. Blank queries and
// failures yield an empty slice.
func (s *PageStore) Search(ctx context.Context, query string) []store.SearchResult {
	results := []store.SearchResult{}
	if strings.TrimSpace(query) == "" {
		metrics.ObserveSearch(0)
		return results
	}
	rows, err := s.pool.Query(ctx, searchPages, query, store.MinRank)
	if err != nil {
		metrics.ObserveStoreOp("search", err)
		s.logger.Warn("search query failed", zap.String("query", query), zap.Error(err))
		return results
	}
	defer rows.Close()
	for rows.Next() {
		var r store.SearchResult
		if err := rows.Scan(&r.Title, &r.URL, &r.Blurb, &r.ScriptCount, &r.Rank, &r.Timestamp); err != nil {
			metrics.ObserveStoreOp("search", err)
			s.logger.Warn("scan search row failed", zap.Error(err))
			return []store.SearchResult{}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		metrics.ObserveStoreOp("search", err)
		s.logger.Warn("iterate search rows failed", zap.Error(err))
		return []store.SearchResult{}
	}
	metrics.ObserveStoreOp("search", nil)
	metrics.ObserveSearch(len(results))
	return results
}

// GetPage returns the row stored for url, ranked against url as a query.
func (s *PageStore) GetPage(ctx context.Context, url string) (store.SearchResult, bool) {
	var r store.SearchResult
	err := s.pool.QueryRow(ctx, selectPage, url).Scan(&r.Title, &r.URL, &r.Blurb, &r.ScriptCount, &r.Rank, &r.Timestamp)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("get page failed", zap.String("url", url), zap.Error(err))
		}
		return store.SearchResult{}, false
	}
	return r, true
}

// DeletePage removes every row stored for url.
func (s *PageStore) DeletePage(ctx context.Context, url string) {
	_, err := s.pool.Exec(ctx, deleteByURL, url)
	metrics.ObserveStoreOp("delete_page", err)
	if err != nil {
		s.logger.Warn("delete page failed", zap.String("url", url), zap.Error(err))
	}
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return strings.TrimSpace(stmt[:i])
	}
	return stmt
}
