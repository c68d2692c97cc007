package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownQuery is returned by fetch for a name no query carries.
	ErrUnknownQuery = errors.New("unknown query")
	// ErrNoSuchIndex is returned for a query index outside the engine.
	ErrNoSuchIndex = errors.New("query index out of range")
)

// CyclicDependencyError reports a query whose resolution was re-entered
// while it was still in progress.
type CyclicDependencyError struct {
	Query string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("query %q: recursive queries are not allowed", e.Query)
}
