package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		columns []string
		rows    [][]string
	}{
		{
			name:    "array of objects",
			body:    `[{"name":"Ward A","beds":12,"id":"w1"},{"name":"Ward B","beds":8,"id":"w2"}]`,
			columns: []string{"id", "name", "beds"},
			rows:    [][]string{{"w1", "Ward A", "12"}, {"w2", "Ward B", "8"}},
		},
		{
			name:    "object wrapping a list",
			body:    `{"total":1,"bills":[{"id":"b1","amount":120.5,"paid":false}]}`,
			columns: []string{"id", "amount", "paid"},
			rows:    [][]string{{"b1", "120.50", "no"}},
		},
		{
			name:    "plain object",
			body:    `{"patients":42,"doctors":7,"departments":["a","b"]}`,
			columns: []string{"field", "value"},
			rows:    [][]string{{"departments", "[2 items]"}, {"doctors", "7"}, {"patients", "42"}},
		},
		{
			name:    "list of scalars",
			body:    `["x","y"]`,
			columns: []string{"value"},
			rows:    [][]string{{"x"}, {"y"}},
		},
		{
			name:    "scalar",
			body:    `"ok"`,
			columns: []string{"value"},
			rows:    [][]string{{"ok"}},
		},
		{
			name:    "missing fields become blank",
			body:    `[{"id":"1","status":"open"},{"id":"2"}]`,
			columns: []string{"id", "status"},
			rows:    [][]string{{"1", "open"}, {"2", ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Flatten([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.columns, ds.Columns)
			assert.Equal(t, tt.rows, ds.Rows)
		})
	}
}

func TestFormatCellNumbers(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12, "12"},
		{-3, "-3"},
		{120.5, "120.50"},
		{1e20, "1e+20"},
		{-1e300, "-1e+300"},
		{1 << 52, "4503599627370496"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCell(tt.in), "formatCell(%v)", tt.in)
	}
}

func TestFlattenLargeNumbers(t *testing.T) {
	ds, err := Flatten([]byte(`[{"id":"x","count":1e20}]`))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x", "1e+20"}}, ds.Rows)
}

func TestFlattenRejectsInvalidJSON(t *testing.T) {
	_, err := Flatten([]byte("<html>"))
	assert.ErrorContains(t, err, "unexpected response")
}

func TestFlattenCapsColumns(t *testing.T) {
	ds, err := Flatten([]byte(`[{"a":1,"b":2,"c":3,"d":4,"e":5,"f":6,"g":7,"h":8}]`))
	require.NoError(t, err)
	assert.Len(t, ds.Columns, maxColumns)
}

func TestDatasetTable(t *testing.T) {
	ds := Dataset{
		Columns: []string{"id", "note"},
		Rows:    [][]string{{"1", "a very long note that keeps going well past the column cap"}},
	}
	tbl := ds.Table(10)

	cols := tbl.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, 2, cols[0].Width)
	assert.Equal(t, maxColWidth, cols[1].Width)
	assert.Len(t, tbl.Rows(), 1)
}
