// Package memory provides an in-process storage engine used by tests and
// local development. Ranking approximates the Postgres weighted search vector
// closely enough to exercise callers; it is not a relevance model.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/JakeFAU/hunter-searcher/internal/metrics"
	"github.com/JakeFAU/hunter-searcher/internal/store"
)

// Field weights mirror the A/B/C/D weights of the Postgres search vector.
const (
	weightTitle   = 1.0
	weightBlurb   = 0.4
	weightContent = 0.2
	weightURL     = 0.1
)

type row struct {
	page   store.Page
	vector map[string]float32
}

// PageStore keeps pages in a map keyed by URL.
type PageStore struct {
	mu   sync.RWMutex
	rows map[string]row
	now  func() time.Time
}

var _ store.PageRepository = (*PageStore)(nil)

// NewPageStore creates an empty store.
func NewPageStore() *PageStore {
	metrics.Init()
	return &PageStore{
		rows: make(map[string]row),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// AddPage inserts page, replacing an existing row only when it is stale or
// force is set.
func (s *PageStore) AddPage(_ context.Context, page store.Page, force bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rows[page.URL]; ok && !force && !store.IsStale(existing.page, page) {
		metrics.ObserveStoreOp("add_page_skip", nil)
		return
	}
	delete(s.rows, page.URL)
	page.Timestamp = s.now()
	s.rows[page.URL] = row{page: page, vector: buildVector(page)}
	metrics.ObserveStoreOp("add_page", nil)
}

// Search ranks every row against query and returns those above store.MinRank,
// best first. A blank query matches nothing.
func (s *PageStore) Search(_ context.Context, query string) []store.SearchResult {
	terms := tokenize(query)
	results := []store.SearchResult{}
	if len(terms) == 0 {
		metrics.ObserveSearch(0)
		return results
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rows {
		rank := score(r.vector, terms)
		if rank <= store.MinRank {
			continue
		}
		results = append(results, toResult(r.page, rank))
	}
	sort.SliceStable(results, func(i, j int) bool {
		if *results[i].Rank == *results[j].Rank {
			return results[i].URL < results[j].URL
		}
		return *results[i].Rank > *results[j].Rank
	})
	metrics.ObserveSearch(len(results))
	return results
}

// GetPage returns the row for url ranked against the url itself.
func (s *PageStore) GetPage(_ context.Context, url string) (store.SearchResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[url]
	if !ok {
		return store.SearchResult{}, false
	}
	return toResult(r.page, score(r.vector, tokenize(url))), true
}

// DeletePage removes the row for url if present.
func (s *PageStore) DeletePage(_ context.Context, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, url)
	metrics.ObserveStoreOp("delete_page", nil)
}

// Len returns the number of stored rows.
func (s *PageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Close is a no-op.
func (s *PageStore) Close() {}

func buildVector(p store.Page) map[string]float32 {
	vector := make(map[string]float32)
	add := func(text string, weight float32) {
		for _, term := range tokenize(text) {
			if vector[term] < weight {
				vector[term] = weight
			}
		}
	}
	add(p.URL, weightURL)
	add(p.Content, weightContent)
	add(p.Blurb, weightBlurb)
	add(p.Title, weightTitle)
	return vector
}

// score averages the best field weight of each query term.
func score(vector map[string]float32, terms []string) float32 {
	if len(terms) == 0 {
		return 0
	}
	var total float32
	for _, term := range terms {
		total += vector[term]
	}
	return total / float32(len(terms))
}

func toResult(p store.Page, rank float32) store.SearchResult {
	blurb := p.Blurb
	return store.SearchResult{
		Title:       p.Title,
		URL:         p.URL,
		Blurb:       &blurb,
		ScriptCount: p.ScriptCount,
		Rank:        &rank,
		Timestamp:   p.Timestamp,
	}
}
