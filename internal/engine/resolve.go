package engine

import (
	"context"
	"fmt"

	"github.com/specialistvlad/soqlgrid/internal/ctxlog"
	"github.com/specialistvlad/soqlgrid/internal/record"
	"github.com/specialistvlad/soqlgrid/internal/soql"
)

// outcome is the terminal result of one resolution attempt.
type outcome struct {
	records []record.Record
	text    string
	err     error
}

// run performs one attempt: placeholders, script, substitution, wildcard
// expansion and the connector call. A panic anywhere becomes the error of
// the attempt so the store is still finalized.
func (e *Engine) run(ctx context.Context, st *Store) (res outcome) {
	logger := ctxlog.FromContext(ctx)
	q := st.query

	defer func() {
		if r := recover(); r != nil {
			res.records = nil
			res.err = fmt.Errorf("resolving query %q: panic: %v", q.Name, r)
		}
	}()

	res.text = q.SOQL
	vars, err := soql.Placeholders(q.SOQL)
	if err != nil {
		res.err = err
		return res
	}

	if names := soql.Names(vars); len(names) > 0 {
		logger.Debug("Evaluating script.", "placeholders", names)
		values, err := e.evaluator.Evaluate(ctx, q.Script, names, &accessor{engine: e})
		if err != nil {
			res.err = err
			return res
		}
		filled, err := soql.Fill(q.SOQL, vars, values)
		if err != nil {
			res.err = err
			return res
		}
		res.text = filled
	}

	expanded, err := e.expander.Expand(ctx, res.text)
	if err != nil {
		res.err = err
		return res
	}
	res.text = expanded
	logger.Debug("Sending query.", "soql", res.text)

	result, err := e.conn.Query(ctx, res.text)
	if err != nil {
		res.err = err
		return res
	}
	res.records = record.Normalize(result)
	if res.records == nil {
		res.records = []record.Record{}
	}
	return res
}

// accessor is the one capability scripts get: reading other queries of the
// same engine by name.
type accessor struct {
	engine *Engine
}

// Fetch returns the records of the first query named name.
func (a *accessor) Fetch(ctx context.Context, name string, forceRefresh bool) ([]record.Record, error) {
	e := a.engine
	index, ok := e.IndexOf(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, name)
	}
	st := e.stores[index]

	e.mu.Lock()
	cached := st.upToDate && st.err == nil && !forceRefresh
	records := st.records
	e.mu.Unlock()
	if cached {
		ctxlog.FromContext(ctx).Debug("Dependency answered from store.", "dependency", name)
		return records, nil
	}

	if forceRefresh {
		e.Invalidate(index)
	}
	return e.Resolve(ctx, index)
}
