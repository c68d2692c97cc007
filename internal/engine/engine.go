package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/soqlgrid/internal/config"
	"github.com/specialistvlad/soqlgrid/internal/connector"
	"github.com/specialistvlad/soqlgrid/internal/ctxlog"
	"github.com/specialistvlad/soqlgrid/internal/record"
	"github.com/specialistvlad/soqlgrid/internal/script"
	"github.com/specialistvlad/soqlgrid/internal/soql"
)

// Engine resolves the queries of one connection against one connector.
type Engine struct {
	conn      connector.Connector
	evaluator script.Evaluator
	expander  *soql.Expander
	stores    []*Store

	// mu guards the fields of every store. It is never held across a
	// script evaluation or a connector call.
	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithEvaluator replaces the default HCL script evaluator.
func WithEvaluator(ev script.Evaluator) Option {
	return func(e *Engine) {
		e.evaluator = ev
	}
}

// New creates an engine with one pending store per query.
func New(conn connector.Connector, queries []*config.Query, opts ...Option) *Engine {
	e := &Engine{
		conn:      conn,
		evaluator: script.NewHCL(),
		expander:  soql.NewExpander(conn),
		stores:    make([]*Store, len(queries)),
	}
	for i, q := range queries {
		e.stores[i] = &Store{query: q}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Len returns the number of queries the engine knows.
func (e *Engine) Len() int {
	return len(e.stores)
}

// IndexOf returns the index of the first query named name.
func (e *Engine) IndexOf(name string) (int, bool) {
	for i, s := range e.stores {
		if s.query.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Resolve resolves the query at index and returns its records. An already
// resolved store answers from its stored outcome without any new work.
func (e *Engine) Resolve(ctx context.Context, index int) ([]record.Record, error) {
	st, err := e.store(index)
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx).With("query", st.query.Name)

	e.mu.Lock()
	if st.upToDate {
		records, err := st.records, st.err
		e.mu.Unlock()
		logger.Debug("Query answered from store.", "records", len(records), "error", err)
		return records, err
	}
	if st.inProgress {
		e.mu.Unlock()
		logger.Debug("Query re-entered while in progress.")
		return nil, &CyclicDependencyError{Query: st.query.Name}
	}
	st.inProgress = true
	st.text = ""
	e.mu.Unlock()

	logger.Info("▶️ Resolving query")
	start := time.Now()

	res := e.run(ctxlog.WithLogger(ctx, logger), st)

	e.mu.Lock()
	st.inProgress = false
	st.upToDate = true
	st.err = res.err
	st.records = res.records
	st.text = res.text
	e.mu.Unlock()

	if res.err != nil {
		logger.Info("❌ Query failed", "duration", time.Since(start), "error", res.err)
		return nil, res.err
	}
	logger.Info("✅ Query resolved", "records", len(res.records), "duration", time.Since(start))
	return res.records, nil
}

// ResolveAsync resolves the query at index on a separate goroutine and
// calls done exactly once with the outcome.
func (e *Engine) ResolveAsync(ctx context.Context, index int, done func(err error, records []record.Record)) {
	go func() {
		records, err := e.Resolve(ctx, index)
		done(err, records)
	}()
}

// ResolveByName resolves the first query named name.
func (e *Engine) ResolveByName(ctx context.Context, name string) ([]record.Record, error) {
	i, ok := e.IndexOf(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, name)
	}
	return e.Resolve(ctx, i)
}

// Invalidate marks the store at index as out of date so the next Resolve
// runs the query again. It does nothing to a store in progress.
func (e *Engine) Invalidate(index int) {
	st, err := e.store(index)
	if err != nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !st.inProgress {
		st.upToDate = false
	}
}

// InvalidateAll invalidates every store that is not in progress.
func (e *Engine) InvalidateAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, st := range e.stores {
		if !st.inProgress {
			st.upToDate = false
		}
	}
}

// Snapshot returns a copy of the store at index.
func (e *Engine) Snapshot(index int) StoreSnapshot {
	st, err := e.store(index)
	if err != nil {
		return StoreSnapshot{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return StoreSnapshot{
		Query:      st.query.Name,
		State:      st.state(),
		UpToDate:   st.upToDate,
		InProgress: st.inProgress,
		Err:        st.err,
		Records:    st.records,
		Text:       st.text,
	}
}

func (e *Engine) store(index int) (*Store, error) {
	if index < 0 || index >= len(e.stores) {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchIndex, index)
	}
	return e.stores[index], nil
}
