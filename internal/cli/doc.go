// Package cli builds soqlgrid's command tree, validates user input, and
// maps failures to process exit codes. It translates flags into an
// app.Config and hands each command to the matching App operation.
package cli
