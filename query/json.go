package query

import (
	"bytes"
	"encoding/json"
)

// Marshal encodes v as compact JSON without escaping <, > and &, which
// appear in comparison operators and string values.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

type sortJSON struct {
	Field string        `json:"field"`
	Order SortDirection `json:"order"`
}

type selectJSON struct {
	Fields []string   `json:"fields"`
	Object string     `json:"object"`
	Filter FilterNode `json:"filter,omitempty"`
	Sorts  []sortJSON `json:"sorts,omitempty"`
}

// MarshalJSON encodes s in the shape of the export API "select"
// object. filter and sorts are omitted when unused.
func (s *SelectSpec) MarshalJSON() ([]byte, error) {
	out := selectJSON{
		Fields: s.Columns(),
		Object: s.Object,
		Filter: s.Filter,
	}
	if s.Sorts != nil {
		out.Sorts = make([]sortJSON, len(s.Sorts))
		for i, sort := range s.Sorts {
			out.Sorts[i] = sortJSON{Field: sort.Field.String(), Order: sort.Direction}
		}
	}
	return Marshal(out)
}

// MarshalJSON encodes {"field": ..., "operator": ..., "value": ...}
func (c *Comparison) MarshalJSON() ([]byte, error) {
	return Marshal(struct {
		Field    string    `json:"field"`
		Operator CompareOp `json:"operator"`
		Value    Literal   `json:"value"`
	}{c.Field.String(), c.Op, c.Value})
}

// MarshalJSON encodes {"<op>": [left, right]}
func (l *Logical) MarshalJSON() ([]byte, error) {
	return Marshal(map[LogicalOp][]FilterNode{
		l.Op: {l.Left, l.Right},
	})
}
