// Package publisher announces indexed pages to downstream consumers.
package publisher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/hunter-searcher/internal/crawler"
)

// Publisher pushes events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// PageEvent is the message body published for every indexed page.
type PageEvent struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Blurb       string    `json:"blurb"`
	ScriptCount int       `json:"script_count"`
	Links       []string  `json:"links"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// NewPageEvent builds the event for doc.
func NewPageEvent(doc crawler.Document, at time.Time) PageEvent {
	links := doc.Links
	if links == nil {
		links = []string{}
	}
	return PageEvent{
		URL:         doc.URL,
		Title:       doc.Title,
		Blurb:       doc.Blurb,
		ScriptCount: doc.ScriptCount,
		Links:       links,
		IndexedAt:   at.UTC(),
	}
}

// Sink is a crawler.DocumentSink that publishes a PageEvent per document.
type Sink struct {
	pub    Publisher
	topic  string
	now    func() time.Time
	logger *zap.Logger
}

var _ crawler.DocumentSink = (*Sink)(nil)

// NewSink builds a Sink publishing to topic.
func NewSink(pub Publisher, topic string, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{
		pub:    pub,
		topic:  topic,
		now:    time.Now,
		logger: logger,
	}
}

// Name implements crawler.DocumentSink.
func (s *Sink) Name() string { return "publish" }

// HandleDocument publishes the event for doc.
func (s *Sink) HandleDocument(ctx context.Context, doc crawler.Document) error {
	id, err := s.pub.Publish(ctx, s.topic, NewPageEvent(doc, s.now()))
	if err != nil {
		return fmt.Errorf("publish %s: %w", doc.URL, err)
	}
	s.logger.Debug("published page event", zap.String("url", doc.URL), zap.String("message_id", id))
	return nil
}
