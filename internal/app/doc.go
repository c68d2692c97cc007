// Package app contains soqlgrid's application logic. It owns the logger,
// the loaded connection model and the session registry, and exposes the
// operations the CLI calls, decoupled from any specific entrypoint.
package app
