package script

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/soqlgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// HCL evaluates scripts written in HCL native syntax. A script is a flat
// body of attributes:
//
//	ids   = [for a in fetch("Accounts") : a.Id]
//	since = datetime(timeadd("2024-01-01T00:00:00Z", "-24h"))
//
// Attributes are evaluated only when needed and may refer to each other by
// bare name.
type HCL struct {
	// Now is the clock behind now(). Defaults to time.Now.
	Now func() time.Time
}

var _ Evaluator = (*HCL)(nil)

// NewHCL returns an HCL evaluator using the wall clock.
func NewHCL() *HCL {
	return &HCL{Now: time.Now}
}

// Evaluate computes every name in names from source.
func (h *HCL) Evaluate(ctx context.Context, source string, names []string, acc Accessor) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx)

	file, diags := hclsyntax.ParseConfig([]byte(source), "script.hcl", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, &Error{Err: diags}
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, &Error{Err: diags}
	}

	now := h.Now
	if now == nil {
		now = time.Now
	}
	run := &evaluation{
		attrs:    attrs,
		values:   make(map[string]cty.Value, len(attrs)),
		visiting: make(map[string]bool),
	}
	run.funcs = functions(ctx, acc, now, func(err error) {
		if run.fetchErr == nil {
			run.fetchErr = err
		}
	})

	out := make(map[string]any, len(names))
	for _, name := range names {
		if _, ok := attrs[name]; !ok {
			return nil, &Error{Name: name, Err: fmt.Errorf("script does not define %q", name)}
		}
		val, err := run.value(name)
		if err != nil {
			return nil, &Error{Name: name, Err: err, Cause: run.fetchErr}
		}
		goVal, err := FromCty(val)
		if err != nil {
			return nil, &Error{Name: name, Err: err}
		}
		logger.Debug("Script value computed.", "name", name, "type", val.Type().FriendlyName())
		out[name] = goVal
	}
	return out, nil
}

// evaluation holds the lazily filled attribute values of one Evaluate call.
type evaluation struct {
	attrs    hcl.Attributes
	funcs    map[string]function.Function
	values   map[string]cty.Value
	visiting map[string]bool
	fetchErr error
}

func (e *evaluation) value(name string) (cty.Value, error) {
	if v, ok := e.values[name]; ok {
		return v, nil
	}
	if e.visiting[name] {
		return cty.NilVal, fmt.Errorf("attribute %q refers to itself", name)
	}
	e.visiting[name] = true
	defer delete(e.visiting, name)

	attr := e.attrs[name]
	vars := make(map[string]cty.Value)
	for _, traversal := range attr.Expr.Variables() {
		root := traversal.RootName()
		if _, ok := e.attrs[root]; !ok {
			// left for HCL to report as an unknown variable
			continue
		}
		if _, done := vars[root]; done {
			continue
		}
		v, err := e.value(root)
		if err != nil {
			return cty.NilVal, err
		}
		vars[root] = v
	}

	val, diags := attr.Expr.Value(&hcl.EvalContext{Variables: vars, Functions: e.funcs})
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	e.values[name] = val
	return val, nil
}
