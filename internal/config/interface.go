package config

import "context"

// Loader is the interface for a format-specific connection file loader.
type Loader interface {
	// Load reads the given files or directories and translates them into
	// the format-agnostic model. The returned model is already validated.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
