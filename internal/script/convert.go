package script

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"time"

	"github.com/specialistvlad/soqlgrid/internal/record"
	"github.com/zclconf/go-cty/cty"
)

// TimeType is the capsule type behind datetime() and now(). Values of this
// type quote as SOQL datetime literals.
var TimeType = cty.Capsule("datetime", reflect.TypeOf(time.Time{}))

// TimeVal wraps a time.Time in the datetime capsule type.
func TimeVal(t time.Time) cty.Value {
	return cty.CapsuleVal(TimeType, &t)
}

// RecordsToCty converts records into a tuple of objects, the shape fetch()
// hands to scripts. Dotted keys stay intact and are read with r["Owner.Name"].
func RecordsToCty(records []record.Record) (cty.Value, error) {
	if len(records) == 0 {
		return cty.EmptyTupleVal, nil
	}
	vals := make([]cty.Value, len(records))
	for i, r := range records {
		v, err := ToCty(r)
		if err != nil {
			return cty.NilVal, fmt.Errorf("record %d: %w", i, err)
		}
		vals[i] = v
	}
	return cty.TupleVal(vals), nil
}

// ToCty converts a decoded Go value into a cty.Value.
func ToCty(v any) (cty.Value, error) {
	switch val := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return val, nil
	case string:
		return cty.StringVal(val), nil
	case bool:
		return cty.BoolVal(val), nil
	case float64:
		return cty.NumberFloatVal(val), nil
	case float32:
		return cty.NumberFloatVal(float64(val)), nil
	case int:
		return cty.NumberIntVal(int64(val)), nil
	case int64:
		return cty.NumberIntVal(val), nil
	case int32:
		return cty.NumberIntVal(int64(val)), nil
	case json.Number:
		return cty.ParseNumberVal(val.String())
	case time.Time:
		return TimeVal(val), nil
	case []record.Record:
		return RecordsToCty(val)
	case []any:
		if len(val) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(val))
		for i, e := range val {
			ev, err := ToCty(e)
			if err != nil {
				return cty.NilVal, err
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		if len(val) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(val))
		for k, e := range val {
			ev, err := ToCty(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("field %q: %w", k, err)
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	}
	return cty.NilVal, fmt.Errorf("unsupported value type %T", v)
}

// FromCty converts a cty.Value back into plain Go values: string, int64 or
// float64, bool, nil, []any, map[string]any and time.Time.
func FromCty(val cty.Value) (any, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		return fromNumber(val.AsBigFloat()), nil
	case ty.Equals(TimeType):
		return *(val.EncapsulatedValue().(*time.Time)), nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			gv, err := FromCty(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = gv
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			gv, err := FromCty(v)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
}

func fromNumber(bf *big.Float) any {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
	}
	f, _ := bf.Float64()
	return f
}
