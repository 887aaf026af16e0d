package crawler

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// mapFetcher serves canned bodies and records every requested URL.
type mapFetcher struct {
	pages map[string]string
	calls []string
}

func newMapFetcher(pages map[string]string) *mapFetcher {
	return &mapFetcher{pages: pages}
}

func (f *mapFetcher) Get(_ context.Context, url string) ([]byte, bool) {
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return nil, false
	}
	return []byte(body), true
}

func (f *mapFetcher) count(url string) int {
	n := 0
	for _, c := range f.calls {
		if c == url {
			n++
		}
	}
	return n
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Name() string { return "mock" }

func (m *mockSink) HandleDocument(ctx context.Context, doc Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

type fixedID string

func (f fixedID) NewID() string { return string(f) }
