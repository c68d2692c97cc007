package soql

import (
	"fmt"
	"sort"
)

// Fill substitutes every captured span in template with the quoted value of
// its variable. Spans are replaced from the rightmost to the leftmost so the
// offsets of the ones still pending stay valid. A name with no value quotes
// as null.
func Fill(template string, vars []CapturedVariable, values map[string]any) (string, error) {
	ordered := make([]CapturedVariable, len(vars))
	copy(ordered, vars)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start > ordered[j].Start })

	out := template
	for _, v := range ordered {
		if v.Start < 0 || v.End > len(out) || v.Start > v.End {
			return "", fmt.Errorf("placeholder [%s] span %d:%d is outside the template", v.Name, v.Start, v.End)
		}
		literal, err := Quote(values[v.Name])
		if err != nil {
			return "", fmt.Errorf("placeholder [%s]: %w", v.Name, err)
		}
		out = out[:v.Start] + literal + out[v.End:]
	}
	return out, nil
}
