package store

import "errors"

// Errors returned by persistence operations.
//
// Callers distinguish the cases with errors.Is():
//
//	if errors.Is(err, store.ErrNotFound) {
//	    // no document on disk for that id
//	}
var (
	// ErrNotFound is returned when no document exists at the requested
	// path. A read of a missing entity is not corruption.
	ErrNotFound = errors.New("document not found")

	// ErrCorrupt is returned when a document exists but cannot be parsed.
	// The caller may attempt recovery from the .bak sibling; that is a
	// caller decision, never automatic.
	ErrCorrupt = errors.New("document is corrupt")
)
