package depgraph

import (
	"context"

	"github.com/specialistvlad/soqlgrid/internal/config"
	"github.com/specialistvlad/soqlgrid/internal/ctxlog"
	"github.com/specialistvlad/soqlgrid/internal/script"
)

// Query is the static view of one query.
type Query struct {
	Name      string
	DependsOn []string
	// Dynamic is set when the script fetches a computed query name.
	Dynamic bool
	// Err is set when the script does not parse.
	Err error
}

// UnknownRef is a fetch of a name no query carries.
type UnknownRef struct {
	Query string
	Ref   string
}

// Report is the outcome of Check.
type Report struct {
	Queries  []Query
	Unknown  []UnknownRef
	Shadowed []string
	Cycles   []Cycle
	// Order lists queries with dependencies first; empty when there are cycles.
	Order []string
}

// OK reports whether nothing was found that would fail at runtime.
func (r *Report) OK() bool {
	if len(r.Unknown) > 0 || len(r.Cycles) > 0 {
		return false
	}
	for _, q := range r.Queries {
		if q.Err != nil {
			return false
		}
	}
	return true
}

// Check analyzes the scripts of queries and builds their dependency graph.
// Only the first query of a given name is reachable, so later duplicates
// are listed as shadowed and left out of the graph.
func Check(ctx context.Context, queries []*config.Query) *Report {
	logger := ctxlog.FromContext(ctx)
	report := &Report{}
	g := New()

	var reachable []Query
	for _, q := range queries {
		if _, ok := g.nodes[q.Name]; ok {
			report.Shadowed = append(report.Shadowed, q.Name)
			continue
		}
		g.AddNode(q.Name)

		entry := Query{Name: q.Name}
		deps, err := script.Analyze(q.Script)
		if err != nil {
			entry.Err = err
		}
		entry.DependsOn = deps.Queries
		entry.Dynamic = deps.Dynamic
		reachable = append(reachable, entry)
	}

	for _, q := range reachable {
		for _, ref := range q.DependsOn {
			if _, ok := g.nodes[ref]; !ok {
				report.Unknown = append(report.Unknown, UnknownRef{Query: q.Name, Ref: ref})
				continue
			}
			if err := g.AddEdge(q.Name, ref); err != nil {
				logger.Warn("Failed to add dependency edge.", "query", q.Name, "ref", ref, "error", err)
			}
		}
	}

	report.Queries = reachable
	report.Cycles = g.Cycles()
	if order, err := g.Order(); err == nil {
		report.Order = order
	}

	logger.Debug("Dependency check finished.",
		"queries", len(reachable), "unknown_refs", len(report.Unknown),
		"cycles", len(report.Cycles), "shadowed", len(report.Shadowed))
	return report
}
