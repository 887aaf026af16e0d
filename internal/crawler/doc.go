// Package crawler implements the polite breadth-first traversal engine: the
// frontier, the robots policy cache, host allow/deny filtering, HTML content
// extraction, blurb synthesis, link resolution, and the crawl loop that feeds
// each extracted document to the storage engine and the optional sinks.
package crawler
