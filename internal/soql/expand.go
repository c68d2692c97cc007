package soql

import (
	"context"
	"strings"

	"github.com/specialistvlad/soqlgrid/internal/connector"
	"github.com/specialistvlad/soqlgrid/internal/ctxlog"
)

// Describer is the part of a connector the expander needs.
type Describer interface {
	DescribeObject(ctx context.Context, name string) (*connector.ObjectDescription, error)
}

// SchemaFieldCache maps an upper-cased object name to its field names. It
// lives for a single expansion so repeated wildcards on one object cost a
// single describe call.
type SchemaFieldCache map[string][]string

// Expander replaces Object.* tokens with the object's explicit field list.
type Expander struct {
	Describer Describer
}

// NewExpander creates an expander backed by the given describer.
func NewExpander(d Describer) *Expander {
	return &Expander{Describer: d}
}

// Expand rewrites every wildcard in text, last to first, then cleans the
// result. The object name is kept as written for the expanded fields; the
// cache lookup is case-insensitive.
func (e *Expander) Expand(ctx context.Context, text string) (string, error) {
	logger := ctxlog.FromContext(ctx)

	refs, err := Wildcards(text)
	if err != nil {
		return "", err
	}
	if len(refs) > 0 {
		logger.Debug("Expanding wildcards.", "count", len(refs))
	}

	cache := make(SchemaFieldCache)
	for i := len(refs) - 1; i >= 0; i-- {
		ref := refs[i]
		fields, err := e.fields(ctx, cache, ref.Object)
		if err != nil {
			return "", err
		}
		qualified := make([]string, len(fields))
		for j, f := range fields {
			qualified[j] = ref.Object + "." + f
		}
		text = text[:ref.Start] + strings.Join(qualified, ",") + text[ref.End:]
	}

	return Clean(text)
}

func (e *Expander) fields(ctx context.Context, cache SchemaFieldCache, object string) ([]string, error) {
	key := strings.ToUpper(object)
	if fields, ok := cache[key]; ok {
		return fields, nil
	}

	ctxlog.FromContext(ctx).Debug("Describing object for wildcard.", "object", object)
	desc, err := e.Describer.DescribeObject(ctx, object)
	if err != nil {
		return nil, err
	}
	fields := make([]string, len(desc.Fields))
	for i, f := range desc.Fields {
		fields[i] = f.Name
	}
	cache[key] = fields
	return fields, nil
}
