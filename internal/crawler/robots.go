package crawler

import (
	"context"
	"net/url"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"

	"github.com/JakeFAU/hunter-searcher/internal/metrics"
)

// RobotsCache holds the raw robots.txt text per host. A host is fetched at most
// once per cache lifetime; a failed fetch is recorded as an empty (permissive)
// policy.
type RobotsCache struct {
	fetcher   Fetcher
	userAgent string
	records   map[string]string
	logger    *zap.Logger
}

// NewRobotsCache builds an empty cache that fetches through fetcher.
func NewRobotsCache(fetcher Fetcher, userAgent string, logger *zap.Logger) *RobotsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RobotsCache{
		fetcher:   fetcher,
		userAgent: userAgent,
		records:   make(map[string]string),
		logger:    logger,
	}
}

// PolicyFor returns the cached robots.txt text for host, fetching
// {scheme}://{host}/robots.txt on a miss.
func (r *RobotsCache) PolicyFor(ctx context.Context, scheme, host string) string {
	if text, ok := r.records[host]; ok {
		return text
	}
	robotsURL := (&url.URL{Scheme: scheme, Host: host, Path: "/robots.txt"}).String()
	body, ok := r.fetcher.Get(ctx, robotsURL)
	metrics.ObserveRobotsFetch(ok)
	text := ""
	if ok {
		text = string(body)
	} else {
		r.logger.Debug("robots.txt unavailable; treating host as permissive", zap.String("host", host))
	}
	r.records[host] = text
	return text
}

// Allowed reports whether the configured user agent may fetch target.
func (r *RobotsCache) Allowed(ctx context.Context, target *url.URL) bool {
	text := r.PolicyFor(ctx, target.Scheme, target.Host)
	if text == "" {
		return true
	}
	data, err := robotstxt.FromString(text)
	if err != nil {
		r.logger.Warn("unparsable robots.txt; allowing access", zap.String("host", target.Host), zap.Error(err))
		return true
	}
	group := data.FindGroup(r.userAgent)
	if group == nil {
		return true
	}
	return group.Test(target.RequestURI())
}

// Len returns the number of hosts with a resolved policy.
func (r *RobotsCache) Len() int {
	return len(r.records)
}
