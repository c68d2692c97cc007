package hcl

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/gocty"
)

// envFunc reads an environment variable through lookup. A second argument
// is used as the default when the variable is unset.
func envFunc(lookup func(string) (string, bool)) function.Function {
	return function.New(&function.Spec{
		Description: "Returns the value of an environment variable.",
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		VarParam: &function.Parameter{Name: "default", Type: cty.String},
		Type:     function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			var name string
			if err := gocty.FromCtyValue(args[0], &name); err != nil {
				return cty.NilVal, err
			}
			if len(args) > 2 {
				return cty.NilVal, fmt.Errorf("env takes at most two arguments, got %d", len(args))
			}
			if v, ok := lookup(name); ok {
				return gocty.ToCtyValue(v, retType)
			}
			if len(args) == 2 {
				return args[1], nil
			}
			return cty.NilVal, fmt.Errorf("environment variable %q is not set", name)
		},
	})
}
