// Package registry keeps the live sessions of a soqlgrid process, one per
// connection UUID.
//
// A Registry is created explicitly by the application, passed to whoever
// needs a session, and torn down with Close, which logs every session out.
package registry
