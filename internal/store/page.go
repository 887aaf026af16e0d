package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound signals that no page is stored under the requested URL.
var ErrNotFound = errors.New("page not found")

// Page is the persisted shape of a crawled document. The search vector is
// derived by the backend and never set by callers.
type Page struct {
	Title       string
	URL         string
	Blurb       string
	Content     string
	ScriptCount int32
	// Timestamp is filled in by the backend on insert.
	Timestamp time.Time
}

// SearchResult is one ranked row returned to readers.
type SearchResult struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Blurb       *string   `json:"blurb"`
	ScriptCount int32     `json:"number_js"`
	Rank        *float32  `json:"rank"`
	Timestamp   time.Time `json:"timestamp"`
}

// MinRank is the relevance threshold below which rows are not returned.
const MinRank = 0.1

// Indexer is the write side used by the crawl loop. AddPage never reports
// errors; backends log them.
type Indexer interface {
	AddPage(ctx context.Context, page Page, force bool)
}

// Searcher is the read side used by the presentation server.
type Searcher interface {
	Search(ctx context.Context, query string) []SearchResult
	GetPage(ctx context.Context, url string) (SearchResult, bool)
}

// PageRepository is the full storage engine contract.
type PageRepository interface {
	Indexer
	Searcher
	DeletePage(ctx context.Context, url string)
	Close()
}

// IsStale reports whether incoming differs from existing in any field that
// participates in the staleness check (title, content, url).
func IsStale(existing, incoming Page) bool {
	return existing.Title != incoming.Title ||
		existing.Content != incoming.Content ||
		existing.URL != incoming.URL
}
