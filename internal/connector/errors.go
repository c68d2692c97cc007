package connector

import (
	"fmt"
	"strings"
)

// Error is a failed call to the data source.
type Error struct {
	// Op is the connector operation, e.g. "query" or "describe".
	Op string
	// Target is the query text or object name the operation was called with.
	Target string
	// Status is the HTTP status code when the failure came from a response.
	Status int
	// Code is the remote error code, e.g. "INVALID_FIELD".
	Code string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Target != "" {
		fmt.Fprintf(&b, " %q", e.Target)
	}
	b.WriteString(" failed")
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, ": %s", e.Code)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
