package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/soqlgrid/internal/config"
	"github.com/specialistvlad/soqlgrid/internal/ctxlog"
	"github.com/specialistvlad/soqlgrid/internal/fsutil"
	"github.com/specialistvlad/soqlgrid/internal/schema"
	"github.com/zclconf/go-cty/cty/function"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	// LookupEnv backs the env() function. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a loader reading the process environment.
func NewLoader() *Loader {
	return &Loader{LookupEnv: os.LookupEnv}
}

// Load parses every .hcl file found under paths, in order, and returns the
// merged, validated model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	evalCtx := &hcl.EvalContext{
		Functions: map[string]function.Function{"env": envFunc(lookup)},
	}

	parser := hclparse.NewParser()
	model := &config.Model{}
	for _, path := range files {
		hclFile, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
		}

		var root schema.File
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
		}

		for _, conn := range root.Connections {
			model.Connections = append(model.Connections, translateConnection(conn, path))
		}
	}

	stamps := config.Validate(model)
	logger.Debug("HCL loading complete.", "connections", len(model.Connections), "generated_ids", len(stamps))
	return model, nil
}

// translateConnection converts the HCL schema into the agnostic model.
func translateConnection(s *schema.Connection, source string) *config.Connection {
	conn := &config.Connection{
		UUID:         s.UUID,
		DisplayName:  s.DisplayName,
		LoginURL:     s.LoginURL,
		Username:     s.Username,
		Password:     s.Password,
		Token:        s.Token,
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		APIVersion:   s.APIVersion,
		SourceFile:   source,
	}
	for _, q := range s.Queries {
		conn.Queries = append(conn.Queries, &config.Query{
			UUID:   q.UUID,
			Name:   q.Name,
			SOQL:   q.SOQL,
			Script: q.Script,
		})
	}
	return conn
}
