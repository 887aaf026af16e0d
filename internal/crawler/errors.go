package crawler

import "errors"

// ErrInvalidURL is returned when a frontier entry cannot be parsed into an
// absolute URL with a host. It aborts the crawl session.
var ErrInvalidURL = errors.New("invalid url")
