// Package archive keeps the raw HTML of every indexed page in a blob store so
// pages can be re-extracted without re-crawling.
package archive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/hunter-searcher/internal/crawler"
)

const htmlContentType = "text/html; charset=utf-8"

// BlobStore writes raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Sink is a crawler.DocumentSink that archives document HTML.
type Sink struct {
	store  BlobStore
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

var _ crawler.DocumentSink = (*Sink)(nil)

// NewSink builds a Sink writing under prefix (default "pages").
func NewSink(store BlobStore, prefix string, logger *zap.Logger) *Sink {
	if prefix == "" {
		prefix = "pages"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{
		store:  store,
		prefix: prefix,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// Name implements crawler.DocumentSink.
func (s *Sink) Name() string { return "archive" }

// HandleDocument stores doc.HTML. Documents without HTML are ignored.
func (s *Sink) HandleDocument(ctx context.Context, doc crawler.Document) error {
	if len(doc.HTML) == 0 {
		return nil
	}
	key := ObjectKey(s.prefix, doc.URL, s.now())
	uri, err := s.store.PutObject(ctx, key, htmlContentType, bytes.NewReader(doc.HTML))
	if err != nil {
		return fmt.Errorf("archive %s: %w", doc.URL, err)
	}
	s.logger.Debug("archived page", zap.String("url", doc.URL), zap.String("uri", uri))
	return nil
}

// ObjectKey names the archived copy of rawURL fetched at at:
// <prefix>/<yyyy-mm-dd>/<sha256(url)>.html.
func ObjectKey(prefix, rawURL string, at time.Time) string {
	sum := sha256.Sum256([]byte(rawURL))
	return path.Join(prefix, at.UTC().Format(time.DateOnly), hex.EncodeToString(sum[:])+".html")
}
