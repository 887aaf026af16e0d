package crawler

import (
	"context"
)

// Fetcher performs a single GET. ok is false for transport errors and any
// status other than 200. Implementations enforce the politeness delay.
type Fetcher interface {
	Get(ctx context.Context, url string) (body []byte, ok bool)
}

// DocumentSink receives every document after it has been handed to the index.
// Sinks are best-effort; a returned error is logged and the crawl continues.
type DocumentSink interface {
	Name() string
	HandleDocument(ctx context.Context, doc Document) error
}

// IDGenerator produces crawl session identifiers.
type IDGenerator interface {
	NewID() string
}
