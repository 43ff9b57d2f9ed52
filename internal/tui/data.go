package tui

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
)

const (
	maxColumns  = 6
	maxColWidth = 28
	sampleRows  = 20
)

// Dataset is a backend payload flattened for display.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// Flatten turns a JSON payload into a table. Arrays of objects become one
// row per element; a plain object is shown as key/value pairs, unless it
// wraps an array of objects, which is then shown instead.
func Flatten(body []byte) (Dataset, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return Dataset{}, fmt.Errorf("unexpected response: %w", err)
	}

	switch v := payload.(type) {
	case []any:
		return flattenList(v), nil
	case map[string]any:
		if list, ok := innerList(v); ok {
			return flattenList(list), nil
		}
		return flattenObject(v), nil
	default:
		return Dataset{Columns: []string{"value"}, Rows: [][]string{{formatCell(v)}}}, nil
	}
}

// innerList finds the first (by key) array-of-objects field.
func innerList(obj map[string]any) ([]any, bool) {
	keys := sortedKeys(obj)
	for _, k := range keys {
		if list, ok := obj[k].([]any); ok && len(list) > 0 {
			if _, isObj := list[0].(map[string]any); isObj {
				return list, true
			}
		}
	}
	return nil, false
}

func flattenList(list []any) Dataset {
	seen := map[string]bool{}
	var columns []string
	for i, item := range list {
		if i >= sampleRows {
			break
		}
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for _, k := range sortedKeys(obj) {
			if !seen[k] && isScalar(obj[k]) {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	columns = orderColumns(columns)

	if len(columns) == 0 {
		ds := Dataset{Columns: []string{"value"}}
		for _, item := range list {
			ds.Rows = append(ds.Rows, []string{formatCell(item)})
		}
		return ds
	}

	ds := Dataset{Columns: columns}
	for _, item := range list {
		obj, _ := item.(map[string]any)
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = formatCell(obj[c])
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

func flattenObject(obj map[string]any) Dataset {
	ds := Dataset{Columns: []string{"field", "value"}}
	for _, k := range sortedKeys(obj) {
		ds.Rows = append(ds.Rows, []string{k, formatCell(obj[k])})
	}
	return ds
}

// orderColumns puts identifying columns first and caps the count.
func orderColumns(cols []string) []string {
	rank := func(c string) int {
		switch strings.ToLower(c) {
		case "id", "_id":
			return 0
		case "name", "patientname", "title":
			return 1
		case "status":
			return 2
		}
		return 3
	}
	sort.SliceStable(cols, func(i, j int) bool { return rank(cols[i]) < rank(cols[j]) })
	if len(cols) > maxColumns {
		cols = cols[:maxColumns]
	}
	return cols
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, float64, bool, nil:
		return true
	}
	return false
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.Trunc(x) != x {
			return fmt.Sprintf("%.2f", x)
		}
		// Integral values past 2^53 are not exact and overflow int64.
		if math.Abs(x) < 1<<53 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case []any:
		return fmt.Sprintf("[%d items]", len(x))
	case map[string]any:
		return "{…}"
	}
	return fmt.Sprint(v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Table builds a bubbles table sized to the data.
func (d Dataset) Table(height int) table.Model {
	widths := make([]int, len(d.Columns))
	for i, c := range d.Columns {
		widths[i] = len(c)
	}
	for _, r := range d.Rows {
		for i, cell := range r {
			if l := len([]rune(cell)); l > widths[i] {
				widths[i] = l
			}
		}
	}

	cols := make([]table.Column, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = table.Column{Title: c, Width: min(widths[i], maxColWidth)}
	}
	rows := make([]table.Row, len(d.Rows))
	for i, r := range d.Rows {
		rows[i] = table.Row(r)
	}

	if height <= 0 {
		height = 10
	}
	return table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(height, len(rows)+1)),
	)
}
