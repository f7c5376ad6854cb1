package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Table renders rows in aligned columns under a header
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, headers []string, noColor bool) *Table {
	return &Table{
		writer:  w,
		headers: headers,
		noColor: noColor,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Render renders the table to the writer
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	head := Color(t.noColor, color.Bold, color.FgCyan)
	for i, header := range t.headers {
		head.Fprint(t.writer, cell(header, widths[i], i == len(t.headers)-1))
	}
	fmt.Fprintln(t.writer)

	gray := Color(t.noColor, color.FgHiBlack)
	rules := make([]string, len(widths))
	for i, width := range widths {
		rules[i] = strings.Repeat("─", width)
	}
	gray.Fprintln(t.writer, strings.Join(rules, "  "))

	for _, row := range t.rows {
		n := min(len(row), len(widths))
		for i := 0; i < n; i++ {
			fmt.Fprint(t.writer, cell(row[i], widths[i], i == n-1))
		}
		fmt.Fprintln(t.writer)
	}
}

// cell pads s to width; the last column is not padded
func cell(s string, width int, last bool) string {
	if last {
		return s
	}
	if pad := width - utf8.RuneCountInString(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s + "  "
}

// KeyValueTable renders aligned "key: value" lines
type KeyValueTable struct {
	writer  io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow adds a key-value pair
func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// Render renders the key-value table
func (t *KeyValueTable) Render() {
	width := 0
	for _, k := range t.keys {
		width = max(width, utf8.RuneCountInString(k)+1)
	}

	cyan := Color(t.noColor, color.FgCyan)
	for i, k := range t.keys {
		label := k + ":"
		cyan.Fprint(t.writer, label+strings.Repeat(" ", width-utf8.RuneCountInString(label)))
		fmt.Fprintf(t.writer, " %s\n", t.values[i])
	}
}

// Divider renders a horizontal divider line
func Divider(w io.Writer, width int, noColor bool) {
	if width == 0 {
		width = 80
	}
	Color(noColor, color.FgHiBlack).Fprintln(w, strings.Repeat("─", width))
}

// Header renders a styled header underlined by a divider
func Header(w io.Writer, title string, noColor bool) {
	Color(noColor, color.Bold, color.FgCyan).Fprintln(w, title)
	Divider(w, utf8.RuneCountInString(title), noColor)
}
