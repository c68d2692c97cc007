// Package engine resolves compound SOQL queries.
//
// A query is a template containing [placeholder] and Object.* tokens plus a
// script computing the placeholder values. Scripts may fetch the records of
// other queries of the same connection, so resolving one query can walk a
// chain of others. The Engine owns one Store per query and guarantees that
// each store is resolved at most once until it is invalidated.
//
// Cycles are caught at runtime: a store that is asked to resolve while its
// own resolution is still running fails with a CyclicDependencyError.
package engine
