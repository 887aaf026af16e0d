package publisher_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/hunter-searcher/internal/crawler"
	"github.com/JakeFAU/hunter-searcher/internal/publisher"
	"github.com/JakeFAU/hunter-searcher/internal/publisher/memory"
)

func TestNewPageEvent(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.FixedZone("x", 3600))
	doc := crawler.Document{URL: "https://a.test/", Title: "A", Blurb: "b", ScriptCount: 2, HTML: []byte("<html>")}
	event := publisher.NewPageEvent(doc, at)

	assert.Equal(t, "https://a.test/", event.URL)
	assert.Equal(t, 2, event.ScriptCount)
	assert.NotNil(t, event.Links)
	assert.Empty(t, event.Links)
	assert.Equal(t, time.UTC, event.IndexedAt.Location())
}

func TestSinkPublishesEvents(t *testing.T) {
	t.Parallel()

	pub := memory.New()
	sink := publisher.NewSink(pub, "pages", zap.NewNop())
	doc := crawler.Document{URL: "https://a.test/", Title: "A", Links: []string{"https://a.test/b"}}

	require.NoError(t, sink.HandleDocument(context.Background(), doc))
	assert.Equal(t, "publish", sink.Name())

	events := pub.Events("pages")
	require.Len(t, events, 1)
	assert.Equal(t, "A", events[0].Page.Title)
	assert.Equal(t, []string{"https://a.test/b"}, events[0].Page.Links)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, any) (string, error) {
	return "", errors.New("topic deleted")
}

func TestSinkWrapsErrors(t *testing.T) {
	t.Parallel()

	sink := publisher.NewSink(failingPublisher{}, "pages", nil)
	err := sink.HandleDocument(context.Background(), crawler.Document{URL: "https://a.test/"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic deleted")
}
