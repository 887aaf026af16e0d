package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveLinks turns the raw hrefs of the page at base into absolute,
// de-duplicated crawl candidates in order of first appearance. Fragments and
// query strings are dropped, and "/", "#" and the page itself are excluded.
// hrefs that cannot be resolved to an http(s) URL are skipped.
func ResolveLinks(base string, hrefs []string) ([]string, error) {
	baseURL, err := parseTarget(base)
	if err != nil {
		return nil, err
	}
	links, _ := resolveLinks(baseURL, hrefs)
	return links, nil
}

// resolveLinks also returns the hrefs it rejected so the caller can log them.
func resolveLinks(base *url.URL, hrefs []string) (links []string, rejected []string) {
	self := base.String()
	seen := make(map[string]struct{}, len(hrefs))
	for _, raw := range hrefs {
		href := strings.ReplaceAll(raw, "&#x2F;", "/")
		if href == "/" || href == "#" || href == self {
			continue
		}
		if i := strings.IndexByte(href, '#'); i >= 0 {
			href = href[:i]
		}
		if i := strings.IndexByte(href, '?'); i >= 0 {
			href = href[:i]
		}

		link, ok := resolveHref(base, href)
		if !ok {
			rejected = append(rejected, raw)
			continue
		}
		if link == self {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}
	return links, rejected
}

func resolveHref(base *url.URL, href string) (string, bool) {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		if _, err := parseTarget(href); err != nil {
			return "", false
		}
		return href, true
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	if !isWebURL(resolved) {
		return "", false
	}
	return resolved.String(), true
}

// parseTarget parses a frontier entry, which must be an absolute URL with a host.
func parseTarget(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidURL, raw, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
	}
	return u, nil
}

func isWebURL(u *url.URL) bool {
	return (u.Scheme == "http" || u.Scheme == "https") && u.Hostname() != ""
}
