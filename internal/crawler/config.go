package crawler

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Unbounded disables the document limit.
const Unbounded = -1

// DefaultUserAgent identifies the crawler to remote servers and robots.txt groups.
const DefaultUserAgent = "hunter-searcher crawler/v0.1.0"

// HostList is an optional set of hostname substrings.
type HostList struct {
	Enabled  bool
	Patterns []string
}

// ParseHostList builds a HostList from a comma separated flag value. A blank
// value yields a disabled list.
func ParseHostList(csv string) HostList {
	var patterns []string
	for _, raw := range strings.Split(csv, ",") {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		patterns = append(patterns, value)
	}
	if len(patterns) == 0 {
		return HostList{}
	}
	return HostList{Enabled: true, Patterns: patterns}
}

// Matches reports whether host contains any of the patterns. Hosts are
// compared in their canonical lowercase form; patterns are used verbatim.
func (l HostList) Matches(host string) bool {
	host = strings.ToLower(host)
	for _, pattern := range l.Patterns {
		if strings.Contains(host, pattern) {
			return true
		}
	}
	return false
}

// Config holds the settings for a crawl session. It is built once at startup
// and shared read-only by pointer.
type Config struct {
	UserAgent string
	// MaxDocuments bounds the number of documents a session produces.
	// Unbounded (-1) disables the limit.
	MaxDocuments int
	AllowList    HostList
	DenyList     HostList
	// Delay is slept after every HTTP request, robots.txt included.
	Delay time.Duration
	// RequestTimeout bounds a single request. Zero means no timeout.
	RequestTimeout time.Duration
	// Force rewrites stored pages even when they are unchanged.
	Force bool
}

// Validate checks for obviously bad configuration combinations.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.UserAgent) == "" {
		problems = append(problems, "user agent is required")
	}
	if c.MaxDocuments < Unbounded {
		problems = append(problems, fmt.Sprintf("max documents must be >= %d, got %d", Unbounded, c.MaxDocuments))
	}
	if c.Delay < 0 {
		problems = append(problems, "delay must be >= 0")
	}
	if c.RequestTimeout < 0 {
		problems = append(problems, "request timeout must be >= 0")
	}
	if len(problems) > 0 {
		return errors.New("invalid crawl config: " + strings.Join(problems, "; "))
	}
	return nil
}
