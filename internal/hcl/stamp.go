package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/soqlgrid/internal/config"
	"github.com/specialistvlad/soqlgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// StampIDs writes the UUIDs of the model's connections and queries into
// every source file whose blocks lack a uuid attribute. Everything else in
// the files is preserved. It returns the number of attributes added.
func StampIDs(ctx context.Context, model *config.Model) (int, error) {
	logger := ctxlog.FromContext(ctx)

	byFile := make(map[string][]*config.Connection)
	var order []string
	for _, conn := range model.Connections {
		if conn.SourceFile == "" {
			continue
		}
		if _, ok := byFile[conn.SourceFile]; !ok {
			order = append(order, conn.SourceFile)
		}
		byFile[conn.SourceFile] = append(byFile[conn.SourceFile], conn)
	}

	total := 0
	for _, path := range order {
		n, err := stampFile(path, byFile[path])
		if err != nil {
			return total, err
		}
		if n > 0 {
			logger.Info("✅ Stamped ids", "path", path, "added", n)
		}
		total += n
	}
	return total, nil
}

// stampFile matches connection blocks to conns by position, which is the
// order the loader produced them in.
func stampFile(path string, conns []*config.Connection) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	f, diags := hclwrite.ParseConfig(src, path, hcl.InitialPos)
	if diags.HasErrors() {
		return 0, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	added := 0
	i := 0
	for _, block := range f.Body().Blocks() {
		if block.Type() != "connection" {
			continue
		}
		if i >= len(conns) {
			return 0, fmt.Errorf("%s changed since it was loaded", path)
		}
		conn := conns[i]
		i++
		added += setMissingUUID(block.Body(), conn.UUID)

		j := 0
		for _, qb := range block.Body().Blocks() {
			if qb.Type() != "query" {
				continue
			}
			if j >= len(conn.Queries) {
				return 0, fmt.Errorf("%s changed since it was loaded", path)
			}
			added += setMissingUUID(qb.Body(), conn.Queries[j].UUID)
			j++
		}
	}

	if added == 0 {
		return 0, nil
	}
	if err := os.WriteFile(path, f.Bytes(), info.Mode().Perm()); err != nil {
		return 0, err
	}
	return added, nil
}

func setMissingUUID(body *hclwrite.Body, id string) int {
	if id == "" || body.GetAttribute("uuid") != nil {
		return 0
	}
	body.SetAttributeValue("uuid", cty.StringVal(id))
	return 1
}
