// Package hcl loads soqlgrid connection files written in HCL into the
// format-agnostic config.Model, and writes generated ids back into those
// files without disturbing the rest of their content.
package hcl
