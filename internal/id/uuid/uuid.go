// Package uuid generates crawl session and request identifiers.
package uuid

import (
	"github.com/google/uuid"
)

// Generator creates time-ordered identifiers so log lines from one session
// sort together.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a UUIDv7 string. If the v7 source fails it falls back to a
// random v4 so callers never have to handle an error for a log field.
func (Generator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Valid reports whether s is a well-formed UUID of any version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
