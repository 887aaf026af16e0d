// Package collyfetcher implements crawler.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	// Delay is slept after every request, successful or not.
	Delay time.Duration
	// Timeout bounds one request. Zero disables the timeout.
	Timeout time.Duration
}

// Fetcher performs GETs through a shared colly backend. robots.txt is never
// consulted here; the crawler owns that policy.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	logger        *zap.Logger
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// response is what the hooks capture for one visit.
type response struct {
	status int
	body   []byte
	err    error
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(
		colly.Async(false),
		colly.IgnoreRobotsTxt(),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
		// Bodies are read whole; colly otherwise truncates at 10 MiB.
		colly.MaxBodySize(0),
	)
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		logger:        logger,
	}
}

// Get fetches url and returns its body when the server answered 200.
// Any other status, or a transport error, is logged and yields ok == false.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, bool) {
	defer f.pause(ctx)

	resp, err := f.fetch(ctx, url)
	if err != nil {
		f.logger.Warn("request failed", zap.String("url", url), zap.Error(err))
		return nil, false
	}
	if resp.status != http.StatusOK {
		f.logger.Info("non-200 response", zap.String("url", url), zap.Int("status", resp.status))
		return nil, false
	}
	return resp.body, true
}

func (f *Fetcher) fetch(ctx context.Context, url string) (response, error) {
	var result response
	collector := f.baseCollector.Clone()
	collector.Context = ctx
	configureCollectorHooks(collector, &result)

	if err := runCollector(ctx, collector, url); err != nil {
		return response{}, err
	}
	if result.err != nil {
		return response{}, fmt.Errorf("colly response failed: %w", result.err)
	}
	return result, nil
}

func configureCollectorHooks(hooks collectorHooks, result *response) {
	hooks.OnResponse(func(r *colly.Response) {
		result.status = r.StatusCode
		result.body = append([]byte(nil), r.Body...)
	})
	hooks.OnError(func(_ *colly.Response, err error) {
		result.err = err
	})
}

func runCollector(ctx context.Context, collector *colly.Collector, url string) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		return nil
	}
}

// pause enforces the politeness delay, returning early if ctx is done.
func (f *Fetcher) pause(ctx context.Context) {
	if err := sleepWithContext(ctx, f.cfg.Delay); err != nil {
		f.logger.Debug("politeness delay interrupted", zap.Error(err))
	}
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("delay sleep: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
