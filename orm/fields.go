package orm

import (
	"bytes"
	"encoding/json"

	"github.com/samber/lo"
)

// ValidFields keeps the requested names that are exposed columns.
func ValidFields(cols Columns, fields []string) []string {
	return lo.Uniq(lo.Filter(fields, func(f string, _ int) bool {
		return cols.Has(f)
	}))
}

// Project keeps only the requested fields of every serialised item. Unknown
// names are dropped; when none is left the items are returned untouched.
func Project[T any](items []T, cols Columns, fields []string) (any, error) {
	keep := ValidFields(cols, fields)
	if len(keep) == 0 {
		return items, nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		var m map[string]any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, lo.PickByKeys(m, keep))
	}
	return out, nil
}
