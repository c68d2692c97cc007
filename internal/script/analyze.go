package script

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Dependencies is what a script statically reveals about the queries it reads.
type Dependencies struct {
	// Queries are the literal first arguments of fetch calls, deduplicated
	// in order of appearance.
	Queries []string
	// Dynamic is set when some fetch call names its query with a computed
	// expression that cannot be resolved without running the script.
	Dynamic bool
}

// Analyze parses source and collects the queries it fetches without
// evaluating anything. An empty source has no dependencies.
func Analyze(source string) (Dependencies, error) {
	var deps Dependencies
	file, diags := hclsyntax.ParseConfig([]byte(source), "script.hcl", hcl.InitialPos)
	if diags.HasErrors() {
		return deps, &Error{Err: diags}
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return deps, &Error{Err: diags}
	}

	// source order keeps the result deterministic
	sorted := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		sorted = append(sorted, attr)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Range.Start.Byte < sorted[j].Range.Start.Byte
	})

	seen := make(map[string]struct{})
	for _, attr := range sorted {
		if expr, ok := attr.Expr.(hclsyntax.Expression); ok {
			walkForFetches(expr, &deps, seen)
		}
	}
	return deps, nil
}

// walkForFetches recursively walks the AST looking for fetch calls.
func walkForFetches(expr hclsyntax.Expression, deps *Dependencies, seen map[string]struct{}) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		if e.Name == "fetch" && len(e.Args) > 0 {
			recordFetch(e.Args[0], deps, seen)
		}
		for _, arg := range e.Args {
			walkForFetches(arg, deps, seen)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFetches(e.LHS, deps, seen)
		walkForFetches(e.RHS, deps, seen)
	case *hclsyntax.ConditionalExpr:
		walkForFetches(e.Condition, deps, seen)
		walkForFetches(e.TrueResult, deps, seen)
		walkForFetches(e.FalseResult, deps, seen)
	case *hclsyntax.UnaryOpExpr:
		walkForFetches(e.Val, deps, seen)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			walkForFetches(part, deps, seen)
		}
	case *hclsyntax.TemplateWrapExpr:
		walkForFetches(e.Wrapped, deps, seen)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			walkForFetches(item, deps, seen)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			walkForFetches(item.KeyExpr, deps, seen)
			walkForFetches(item.ValueExpr, deps, seen)
		}
	case *hclsyntax.ObjectConsKeyExpr:
		walkForFetches(e.Wrapped, deps, seen)
	case *hclsyntax.ForExpr:
		walkForFetches(e.CollExpr, deps, seen)
		walkForFetches(e.KeyExpr, deps, seen)
		walkForFetches(e.ValExpr, deps, seen)
		walkForFetches(e.CondExpr, deps, seen)
	case *hclsyntax.IndexExpr:
		walkForFetches(e.Collection, deps, seen)
		walkForFetches(e.Key, deps, seen)
	case *hclsyntax.RelativeTraversalExpr:
		walkForFetches(e.Source, deps, seen)
	case *hclsyntax.SplatExpr:
		walkForFetches(e.Source, deps, seen)
		walkForFetches(e.Each, deps, seen)
	case *hclsyntax.ParenthesesExpr:
		walkForFetches(e.Expression, deps, seen)
	}
}

func recordFetch(arg hclsyntax.Expression, deps *Dependencies, seen map[string]struct{}) {
	// Only constant arguments evaluate without a context.
	val, diags := arg.Value(nil)
	if diags.HasErrors() || !val.IsKnown() || val.IsNull() || val.Type() != cty.String {
		deps.Dynamic = true
		return
	}
	name := val.AsString()
	if _, ok := seen[name]; ok {
		return
	}
	seen[name] = struct{}{}
	deps.Queries = append(deps.Queries, name)
}
