package script

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// safeFunctions is the fixed stdlib subset scripts may call. None of these
// touch files, the environment or the network.
var safeFunctions = map[string]function.Function{
	"abs":        stdlib.AbsoluteFunc,
	"ceil":       stdlib.CeilFunc,
	"coalesce":   stdlib.CoalesceFunc,
	"compact":    stdlib.CompactFunc,
	"concat":     stdlib.ConcatFunc,
	"contains":   stdlib.ContainsFunc,
	"distinct":   stdlib.DistinctFunc,
	"element":    stdlib.ElementFunc,
	"flatten":    stdlib.FlattenFunc,
	"floor":      stdlib.FloorFunc,
	"format":     stdlib.FormatFunc,
	"formatdate": stdlib.FormatDateFunc,
	"join":       stdlib.JoinFunc,
	"jsondecode": stdlib.JSONDecodeFunc,
	"jsonencode": stdlib.JSONEncodeFunc,
	"keys":       stdlib.KeysFunc,
	"length":     stdlib.LengthFunc,
	"lookup":     stdlib.LookupFunc,
	"lower":      stdlib.LowerFunc,
	"max":        stdlib.MaxFunc,
	"merge":      stdlib.MergeFunc,
	"min":        stdlib.MinFunc,
	"range":      stdlib.RangeFunc,
	"replace":    stdlib.ReplaceFunc,
	"reverse":    stdlib.ReverseListFunc,
	"slice":      stdlib.SliceFunc,
	"sort":       stdlib.SortFunc,
	"split":      stdlib.SplitFunc,
	"substr":     stdlib.SubstrFunc,
	"timeadd":    stdlib.TimeAddFunc,
	"trimspace":  stdlib.TrimSpaceFunc,
	"upper":      stdlib.UpperFunc,
	"values":     stdlib.ValuesFunc,
}

// FunctionNames lists every function a script can call, sorted.
func FunctionNames() []string {
	names := make([]string, 0, len(safeFunctions)+3)
	for name := range safeFunctions {
		names = append(names, name)
	}
	names = append(names, "datetime", "fetch", "now")
	sort.Strings(names)
	return names
}

// functions builds the function table for one evaluation. Fetch failures
// are reported through onFetchErr so the caller can keep the original error.
func functions(ctx context.Context, acc Accessor, now func() time.Time, onFetchErr func(error)) map[string]function.Function {
	funcs := make(map[string]function.Function, len(safeFunctions)+3)
	for name, fn := range safeFunctions {
		funcs[name] = fn
	}
	funcs["fetch"] = fetchFunc(ctx, acc, onFetchErr)
	funcs["datetime"] = datetimeFunc
	funcs["now"] = function.New(&function.Spec{
		Description: "Returns the current time as a datetime.",
		Type:        function.StaticReturnType(TimeType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			return TimeVal(now().UTC()), nil
		},
	})
	return funcs
}

func fetchFunc(ctx context.Context, acc Accessor, onFetchErr func(error)) function.Function {
	return function.New(&function.Spec{
		Description: "Returns the records of another named query.",
		Params: []function.Parameter{
			{Name: "query", Type: cty.String},
		},
		VarParam: &function.Parameter{Name: "force_refresh", Type: cty.Bool},
		Type:     function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			if len(args) > 2 {
				return cty.NilVal, fmt.Errorf("fetch takes at most two arguments, got %d", len(args))
			}
			force := len(args) == 2 && args[1].True()

			records, err := acc.Fetch(ctx, args[0].AsString(), force)
			if err != nil {
				onFetchErr(err)
				return cty.NilVal, err
			}
			return RecordsToCty(records)
		},
	})
}

var datetimeFunc = function.New(&function.Spec{
	Description: "Parses an RFC 3339 timestamp into a datetime.",
	Params: []function.Parameter{
		{Name: "timestamp", Type: cty.String},
	},
	Type: function.StaticReturnType(TimeType),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		t, err := time.Parse(time.RFC3339Nano, args[0].AsString())
		if err != nil {
			return cty.NilVal, fmt.Errorf("invalid timestamp: %w", err)
		}
		return TimeVal(t), nil
	},
})
