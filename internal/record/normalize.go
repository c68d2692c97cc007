// Package record flattens nested query results into flat records keyed by
// dotted field paths.
package record

import (
	"sort"
	"strings"

	"github.com/specialistvlad/soqlgrid/internal/connector"
)

// Record is one flat result row. Values are scalars, or []Record for a
// nested sub-query result.
type Record = map[string]any

const (
	// attributesKey marks a relationship record and carries its type.
	attributesKey = "attributes"
	// recordsKey marks a paginated sub-query result.
	recordsKey = "records"
)

type pair struct {
	path  []string
	value any
}

// Normalize flattens every record of a query result.
func Normalize(result *connector.QueryResult) []Record {
	if result == nil {
		return nil
	}
	return normalizeRows(result.Records)
}

// NormalizeMap flattens a sub-query result that is still in its raw map
// form, i.e. a map carrying a "records" list.
func NormalizeMap(result map[string]any) []Record {
	raw, _ := result[recordsKey].([]any)
	rows := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			rows = append(rows, m)
		}
	}
	return normalizeRows(rows)
}

func normalizeRows(rows []map[string]any) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, flatten(row))
	}
	return out
}

// flatten walks a record breadth first. Relationship records push their
// own pairs back onto the queue under the extended path.
func flatten(row map[string]any) Record {
	flat := make(Record, len(row))
	queue := make([]pair, 0, len(row))
	for _, key := range sortedKeys(row) {
		queue = append(queue, pair{path: []string{key}, value: row[key]})
	}

	for i := 0; i < len(queue); i++ {
		p := queue[i]
		if m, ok := p.value.(map[string]any); ok {
			if _, isResult := m[recordsKey]; isResult {
				flat[strings.Join(p.path, ".")] = NormalizeMap(m)
				continue
			}
			if _, isRelation := m[attributesKey]; isRelation {
				for _, key := range sortedKeys(m) {
					if key == attributesKey {
						continue
					}
					path := append(append([]string(nil), p.path...), key)
					queue = append(queue, pair{path: path, value: m[key]})
				}
				continue
			}
		}
		if p.path[len(p.path)-1] == attributesKey {
			continue
		}
		flat[strings.Join(p.path, ".")] = p.value
	}
	return flat
}

// Columns returns the union of keys across records with Id first and the
// rest in lexical order.
func Columns(records []Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i] == "Id" || cols[j] == "Id" {
			return cols[i] == "Id"
		}
		return cols[i] < cols[j]
	})
	return cols
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
