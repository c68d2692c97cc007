package app

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/soqlgrid/internal/engine"
	"github.com/specialistvlad/soqlgrid/internal/render"
	"github.com/specialistvlad/soqlgrid/internal/watch"
)

// RunQuery resolves the named query of a connection, dependencies
// included, and writes its records.
func (a *App) RunQuery(ctx context.Context, connRef, query string) error {
	ctx = a.context(ctx)
	conn, err := a.connection(connRef)
	if err != nil {
		return err
	}
	if _, ok := conn.Query(query); !ok {
		return fmt.Errorf("connection %q: %w: %q", conn.DisplayName, engine.ErrUnknownQuery, query)
	}

	session, err := a.registry.Session(ctx, conn)
	if err != nil {
		return err
	}

	eng := engine.New(session, conn.Queries, engine.WithEvaluator(a.evaluator))
	start := time.Now()
	records, err := eng.ResolveByName(ctx, query)
	if err != nil {
		return err
	}
	a.logger.Debug("Query finished.", "query", query, "records", len(records), "duration", time.Since(start))
	return render.Records(a.outW, a.format(), records)
}

// Watch runs the query once and again after every change to the
// connection files, until ctx is done. Each run reloads the files and
// starts from a fresh engine, so no result carries over.
func (a *App) Watch(ctx context.Context, connRef, query string, debounce time.Duration) error {
	ctx = a.context(ctx)
	w := watch.New(a.config.ConfigPaths, func(ctx context.Context) error {
		if err := a.Reload(ctx); err != nil {
			return err
		}
		return a.RunQuery(ctx, connRef, query)
	})
	if debounce > 0 {
		w.Debounce = debounce
	}
	a.logger.Info("👀 Watching connection files", "paths", a.config.ConfigPaths)
	return w.Run(ctx)
}
