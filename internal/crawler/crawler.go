package crawler

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/hunter-searcher/internal/id/uuid"
	"github.com/JakeFAU/hunter-searcher/internal/metrics"
	"github.com/JakeFAU/hunter-searcher/internal/store"
)

// Crawler runs sequential breadth-first crawl sessions. The robots cache and
// the visited-host set live for the lifetime of the Crawler; the frontier and
// the produced documents are per session. A Crawler is not safe for
// concurrent use.
type Crawler struct {
	cfg     *Config
	fetcher Fetcher
	index   store.Indexer
	sinks   []DocumentSink
	ids     IDGenerator
	logger  *zap.Logger

	robots *RobotsCache
	filter hostFilter
	sites  *hostSet
}

// Option customizes a Crawler.
type Option func(*Crawler)

// WithSinks registers sinks that receive each document after indexing.
func WithSinks(sinks ...DocumentSink) Option {
	return func(c *Crawler) {
		for _, s := range sinks {
			if s != nil {
				c.sinks = append(c.sinks, s)
			}
		}
	}
}

// WithIDGenerator overrides the session ID source.
func WithIDGenerator(ids IDGenerator) Option {
	return func(c *Crawler) {
		c.ids = ids
	}
}

// New wires a Crawler. cfg must already be validated.
func New(cfg *Config, fetcher Fetcher, index store.Indexer, logger *zap.Logger, opts ...Option) *Crawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	c := &Crawler{
		cfg:     cfg,
		fetcher: fetcher,
		index:   index,
		ids:     uuid.New(),
		logger:  logger,
		robots:  NewRobotsCache(fetcher, cfg.UserAgent, logger),
		filter:  newHostFilter(cfg),
		sites:   newHostSet(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sites returns the hosts visited so far, in first-visit order.
func (c *Crawler) Sites() []string {
	return c.sites.List()
}

// Crawl runs one session starting at seed and returns the documents produced.
// An unparsable frontier entry aborts the session with ErrInvalidURL; the
// documents produced before it are still returned. Cancelling ctx stops the
// session between URLs.
func (c *Crawler) Crawl(ctx context.Context, seed string) ([]Document, error) {
	started := time.Now()
	logger := c.logger.With(zap.String("session_id", c.ids.NewID()))
	logger.Info("crawl started", zap.String("seed", seed), zap.Int("max_documents", c.cfg.MaxDocuments))

	queue := newFrontier()
	queue.Push(seed)
	var docs []Document

	for {
		if err := ctx.Err(); err != nil {
			c.logSummary(logger, docs, started)
			return docs, fmt.Errorf("crawl canceled: %w", err)
		}
		if queue.Len() == 0 {
			logger.Debug("frontier empty")
			break
		}
		if c.cfg.MaxDocuments != Unbounded && len(docs) >= c.cfg.MaxDocuments {
			logger.Info("document limit reached", zap.Int("limit", c.cfg.MaxDocuments))
			break
		}

		raw, _ := queue.Pop()
		metrics.SetFrontierSize(queue.Len())
		target, err := parseTarget(raw)
		if err != nil {
			c.logSummary(logger, docs, started)
			return docs, err
		}
		host := target.Hostname()
		urlLogger := logger.With(zap.String("url", raw), zap.String("host", host))

		if !c.robots.Allowed(ctx, target) {
			urlLogger.Info("robots.txt disallows path")
			metrics.ObserveCrawl(raw, metrics.StatusRobotsDeny, 0)
			continue
		}
		if skip, reason := c.filter.Skip(host); skip {
			urlLogger.Info("skipping host", zap.String("reason", reason))
			metrics.ObserveCrawl(raw, metrics.StatusFiltered, 0)
			continue
		}
		c.sites.Add(host)

		doc, ok := c.indexURL(ctx, target, raw, urlLogger)
		if !ok {
			continue
		}
		for _, link := range doc.Links {
			queue.Push(link)
		}
		metrics.SetFrontierSize(queue.Len())
		urlLogger.Info("indexed page",
			zap.Int("queued", queue.Len()),
			zap.Int("sites", c.sites.Len()),
			zap.Int("links", len(doc.Links)),
		)

		c.index.AddPage(ctx, doc.Page(), c.cfg.Force)
		c.deliver(ctx, doc, urlLogger)
		docs = append(docs, doc)
	}

	c.logSummary(logger, docs, started)
	return docs, nil
}

// indexURL fetches and extracts one page. A failed fetch or unparsable body
// drops the URL.
func (c *Crawler) indexURL(ctx context.Context, target *url.URL, raw string, logger *zap.Logger) (Document, bool) {
	body, ok := c.fetcher.Get(ctx, raw)
	if !ok {
		logger.Debug("fetch yielded no body; dropping url")
		metrics.ObserveCrawl(raw, metrics.StatusFetchFailed, 0)
		return Document{}, false
	}
	extraction, err := Extract(body)
	if err != nil {
		logger.Warn("html extraction failed; dropping url", zap.Error(err))
		metrics.ObserveCrawl(raw, metrics.StatusFetchFailed, len(body))
		return Document{}, false
	}
	links, rejected := resolveLinks(target, extraction.Hrefs())
	for _, href := range rejected {
		logger.Debug("skipping unresolvable link", zap.String("href", href))
	}
	metrics.ObserveCrawl(raw, metrics.StatusIndexed, len(body))
	return Document{
		URL:         raw,
		Title:       extraction.Title(),
		ScriptCount: extraction.ScriptCount(),
		Content:     extraction.Text(),
		Blurb:       Blurb(extraction.Text()),
		Links:       links,
		HTML:        body,
	}, true
}

func (c *Crawler) deliver(ctx context.Context, doc Document, logger *zap.Logger) {
	for _, sink := range c.sinks {
		if err := sink.HandleDocument(ctx, doc); err != nil {
			metrics.ObserveSinkError(sink.Name())
			logger.Warn("document sink failed", zap.String("sink", sink.Name()), zap.Error(err))
		}
	}
}

func (c *Crawler) logSummary(logger *zap.Logger, docs []Document, started time.Time) {
	logger.Info("crawl finished",
		zap.Int("documents", len(docs)),
		zap.Int("sites", c.sites.Len()),
		zap.Int("robots_hosts", c.robots.Len()),
		zap.Duration("elapsed", time.Since(started)),
	)
}
