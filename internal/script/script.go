// Package script evaluates the small program attached to a query that
// computes its placeholder values.
//
// A script only ever receives one capability, an Accessor that returns the
// records of another named query. It cannot read files, the environment or
// the network. The Evaluator interface keeps the language swappable; HCL is
// the implementation shipped with soqlgrid.
package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/soqlgrid/internal/record"
)

// Accessor is the single capability injected into a script.
type Accessor interface {
	// Fetch returns the records of the named query. Unless forceRefresh is
	// set, an already resolved query answers from its stored records.
	Fetch(ctx context.Context, queryName string, forceRefresh bool) ([]record.Record, error)
}

// Evaluator runs a script and returns a value for every requested name.
type Evaluator interface {
	Evaluate(ctx context.Context, source string, names []string, acc Accessor) (map[string]any, error)
}

// Error is a failed script evaluation. When the failure was caused by a
// fetch of another query, Cause holds that query's error unchanged.
type Error struct {
	// Name is the value being computed when evaluation failed, if any.
	Name  string
	Err   error
	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("script error")
	if e.Name != "" {
		fmt.Fprintf(&b, " computing [%s]", e.Name)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the evaluation failure and the fetch error behind it.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}
