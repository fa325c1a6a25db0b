package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoQuerySession indicates that no query session was provided.
	ErrNoQuerySession = errors.New("query session is required")
)
