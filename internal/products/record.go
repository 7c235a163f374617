package products

import (
	"bytes"
	"encoding/json"
)

// Record is one row: column names in result order and their values.
type Record struct {
	columns []string
	values  []Value
}

// NewRecord pairs columns with values. Both slices must have equal length.
func NewRecord(columns []string, values []Value) Record {
	if len(columns) != len(values) {
		panic("products: column/value count mismatch")
	}
	return Record{columns: columns, values: values}
}

func (r Record) Len() int { return len(r.columns) }

func (r Record) Columns() []string {
	return append([]string(nil), r.columns...)
}

func (r Record) Values() []Value {
	return append([]Value(nil), r.values...)
}

// Get returns the value for the first column named name.
func (r Record) Get(name string) (Value, bool) {
	for i, c := range r.columns {
		if c == name {
			return r.values[i], true
		}
	}
	return Value{}, false
}

// Map returns the record as plain Go values keyed by column name.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		out[c] = r.values[i].Any()
	}
	return out
}

// MarshalJSON writes a JSON object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := r.values[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Result is the ordered set of records produced by one query.
type Result []Record

// MarshalJSON never produces null; an empty result is [].
func (r Result) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Record(r))
}

// Columns returns the shared column list, or nil for an empty result.
func (r Result) Columns() []string {
	if len(r) == 0 {
		return nil
	}
	return r[0].Columns()
}
