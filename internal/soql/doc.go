// Package soql holds the text-level half of compound query resolution:
// lexing templates while respecting string literals and comments, capturing
// [placeholder] and Object.* tokens, quoting Go values as SOQL literals,
// substituting them back into a template, and expanding wildcards into
// explicit field lists through a schema describer.
//
// All offsets are byte offsets into the exact string that was scanned. A span
// is only valid against that string, which is why every rewrite in this
// package walks spans from the last one to the first.
package soql
