package soql

import (
	"strings"
	"unicode"
)

// CapturedVariable is one [name] occurrence within the template it was
// captured from.
type CapturedVariable struct {
	Name  string
	Start int
	End   int
}

// WildcardRef is one Object.* occurrence within the text it was captured from.
type WildcardRef struct {
	Object string
	Start  int
	End    int
}

// Placeholders returns every [identifier] outside string literals and
// comments, in document order. Repeated names are kept; each occurrence
// carries its own span.
func Placeholders(template string) ([]CapturedVariable, error) {
	tokens, err := Lex(template)
	if err != nil {
		return nil, err
	}
	var vars []CapturedVariable
	for _, t := range tokens {
		if t.Kind != Placeholder {
			continue
		}
		vars = append(vars, CapturedVariable{
			Name:  t.Text[1 : len(t.Text)-1],
			Start: t.Start,
			End:   t.End,
		})
	}
	return vars, nil
}

// Names returns the distinct variable names in order of first occurrence.
func Names(vars []CapturedVariable) []string {
	seen := make(map[string]struct{}, len(vars))
	names := make([]string, 0, len(vars))
	for _, v := range vars {
		if _, ok := seen[v.Name]; ok {
			continue
		}
		seen[v.Name] = struct{}{}
		names = append(names, v.Name)
	}
	return names
}

// Wildcards returns every Object.* token outside string literals and
// comments, in document order.
func Wildcards(text string) ([]WildcardRef, error) {
	tokens, err := Lex(text)
	if err != nil {
		return nil, err
	}
	var refs []WildcardRef
	for _, t := range tokens {
		if t.Kind != Wildcard {
			continue
		}
		object := strings.TrimRightFunc(t.Text[:strings.IndexByte(t.Text, '.')], unicode.IsSpace)
		refs = append(refs, WildcardRef{Object: object, Start: t.Start, End: t.End})
	}
	return refs, nil
}

// Clean strips comments and collapses every whitespace run outside string
// literals into a single blank, trimming both ends. Literal text is left
// verbatim.
func Clean(text string) (string, error) {
	tokens, err := Lex(text)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.Grow(len(text))
	blank := false
	for _, t := range tokens {
		if t.Kind == Whitespace || t.Kind.IsComment() {
			blank = true
			continue
		}
		if blank && b.Len() > 0 {
			b.WriteByte(' ')
		}
		blank = false
		b.WriteString(t.Text)
	}
	return b.String(), nil
}
