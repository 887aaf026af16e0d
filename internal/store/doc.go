// Package store defines the page types and the repository interface shared by
// the crawler, the presentation server, and the storage backends.
// Implementations live in internal/storage; this package must not import
// database drivers or concrete clients.
package store
