package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"
)

// TableFormatter formats data as an aligned text table.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format renders data as a table. Slices of structs become one row per
// element; a single struct or a map becomes a key-value listing.
// Anything else falls back to indented JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	if t, ok := data.(*Table); ok {
		return t.render(w, f.NoHeaders)
	}

	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	var table *Table
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		table = sliceTable(v, f.Wide)
	case reflect.Struct:
		table = kvTable(v)
	case reflect.Map:
		table = mapTable(v)
	}
	if table == nil {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}

	return table.render(w, f.NoHeaders)
}

// columns picks the visible struct fields. The `table:"-"` tag hides a
// field; `table:"wide"` hides it unless wide mode is on.
func columns(t reflect.Type, wide bool) (headers []string, indices []int) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("table")
		if tag == "-" || (tag == "wide" && !wide) {
			continue
		}
		headers = append(headers, headerName(field))
		indices = append(indices, i)
	}
	return headers, indices
}

// headerName derives the column header from the json tag when present.
func headerName(field reflect.StructField) string {
	name := field.Name
	if jsonTag := field.Tag.Get("json"); jsonTag != "" {
		if base := strings.Split(jsonTag, ",")[0]; base != "" && base != "-" {
			name = base
		}
	}
	return strings.ToUpper(name)
}

func sliceTable(v reflect.Value, wide bool) *Table {
	table := &Table{}
	if v.Len() == 0 {
		return table
	}

	first := reflect.Indirect(v.Index(0))
	if first.Kind() != reflect.Struct {
		return nil
	}

	headers, indices := columns(first.Type(), wide)
	table.Headers = headers

	for i := 0; i < v.Len(); i++ {
		elem := reflect.Indirect(v.Index(i))
		row := make([]string, 0, len(indices))
		for _, idx := range indices {
			row = append(row, cell(elem.Field(idx)))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func kvTable(v reflect.Value) *Table {
	table := &Table{Headers: []string{"FIELD", "VALUE"}}
	headers, indices := columns(v.Type(), true)
	for i, idx := range indices {
		table.AddRow(strings.ToLower(headers[i]), cell(v.Field(idx)))
	}
	return table
}

func mapTable(v reflect.Value) *Table {
	table := &Table{Headers: []string{"KEY", "VALUE"}}
	iter := v.MapRange()
	for iter.Next() {
		table.AddRow(cell(iter.Key()), cell(iter.Value()))
	}
	return table
}

// cell formats one value for a table cell. Empty values render as "-".
func cell(v reflect.Value) string {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.String:
		if v.String() == "" {
			return "-"
		}
		return v.String()
	case reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		pairs := make([]string, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			pairs = append(pairs, fmt.Sprintf("%v=%v", iter.Key(), iter.Value()))
		}
		return strings.Join(pairs, ",")
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("[%d items]", v.Len())
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Table is prebuilt tabular data for commands that want full control
// over columns.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	return t.render(w, false)
}

func (t *Table) render(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}
