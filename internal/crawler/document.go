package crawler

import (
	"math"

	"github.com/JakeFAU/hunter-searcher/internal/store"
)

// Document is the result of indexing one fetched page.
type Document struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	ScriptCount int      `json:"script_count"`
	Content     string   `json:"content"`
	Blurb       string   `json:"blurb"`
	Links       []string `json:"links"`
	// HTML is the raw response body. Only sinks see it; it is never indexed.
	HTML []byte `json:"-"`
}

// Page converts the document to its stored form.
func (d Document) Page() store.Page {
	count := d.ScriptCount
	if count > math.MaxInt32 {
		count = math.MaxInt32
	}
	return store.Page{
		Title:       d.Title,
		URL:         d.URL,
		Blurb:       d.Blurb,
		Content:     d.Content,
		ScriptCount: int32(count), //nolint:gosec // clamped above
	}
}
