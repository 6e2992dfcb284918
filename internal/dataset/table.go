// Package dataset holds the named tables handed to exporters and the
// assembler that builds them from a dashboard's results.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Table is a uniform-shape record set: every row has one value per column.
type Table struct {
	Columns []string
	Rows    [][]any
}

func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds a row. It panics when the row width differs from the columns.
func (t *Table) Append(values ...any) {
	if len(values) != len(t.Columns) {
		panic(fmt.Sprintf("dataset: row has %d values for %d columns", len(values), len(t.Columns)))
	}
	t.Rows = append(t.Rows, values)
}

func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Strings renders row i with Format.
func (t *Table) Strings(i int) []string {
	out := make([]string, len(t.Columns))
	for j, v := range t.Rows[i] {
		out[j] = Format(v)
	}
	return out
}

// MarshalJSON writes the rows as an array of objects, keys in column order.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, v := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(t.Columns[j])
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(jsonValue(v))
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", t.Columns[j], err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func jsonValue(v any) any {
	if ts, ok := v.(time.Time); ok {
		return ts.UTC().Format(time.RFC3339)
	}
	return v
}

// Format renders a cell for text outputs.
func Format(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.UTC().Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(v)
	}
}
