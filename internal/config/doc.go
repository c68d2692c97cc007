// Package config defines the format-agnostic model of soqlgrid's connection
// files: connections, their credentials, and the named queries that belong
// to each of them.
//
// The model is the single source of truth for the engine, the registry and
// the CLI. Concrete loaders, such as the HCL one, live in separate packages.
package config
