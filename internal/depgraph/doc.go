// Package depgraph checks the static dependencies between the queries of a
// connection before anything runs.
//
// Edges come from the literal names passed to fetch() in each query's
// script. The check reports references to queries that do not exist,
// shadowed duplicate names, and cycles. Fetches with computed names are
// invisible here; the engine still catches those cycles at runtime.
package depgraph
