// Package memory keeps page events in process, grouped by topic, for tests
// and local runs without Pub/Sub.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JakeFAU/hunter-searcher/internal/publisher"
)

// Event is one announced page as it was handed to Publish.
type Event struct {
	ID    string
	Topic string
	Page  publisher.PageEvent
}

// Publisher records page events per topic in publish order.
type Publisher struct {
	mu     sync.Mutex
	seq    int
	topics map[string][]Event
}

var _ publisher.Publisher = (*Publisher)(nil)

// New returns an empty Publisher.
func New() *Publisher {
	return &Publisher{topics: make(map[string][]Event)}
}

// Publish records payload, which must be a publisher.PageEvent, and returns
// an ID unique within this Publisher.
func (p *Publisher) Publish(_ context.Context, topic string, payload any) (string, error) {
	page, ok := payload.(publisher.PageEvent)
	if !ok {
		return "", fmt.Errorf("memory publisher: unsupported payload %T", payload)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	id := fmt.Sprintf("%s-%d", topic, p.seq)
	p.topics[topic] = append(p.topics[topic], Event{ID: id, Topic: topic, Page: page})
	return id, nil
}

// Events returns a copy of the events published to topic.
func (p *Publisher) Events(topic string) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.topics[topic]...)
}

// URLs lists the page URLs announced on topic, oldest first.
func (p *Publisher) URLs(topic string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	urls := make([]string, 0, len(p.topics[topic]))
	for _, e := range p.topics[topic] {
		urls = append(urls, e.Page.URL)
	}
	return urls
}
