// Package ui provides console output for the hypershell CLI
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// level pairs a status glyph with the style it is rendered in
type level struct {
	glyph string
	style lipgloss.Style
}

var (
	levelSuccess = level{"✓", lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)}
	levelError   = level{"✗", lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)}
	levelWarning = level{"!", lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)}
	levelInfo    = level{"ℹ", lipgloss.NewStyle().Foreground(lipgloss.Color("12"))}

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// UI writes styled messages to the console. Errors and warnings go to the error stream
// so that stdout stays parseable.
type UI struct {
	out io.Writer
	err io.Writer
}

// New creates a UI on the given writers
func New(out, err io.Writer) *UI {
	return &UI{out: out, err: err}
}

func (l level) print(w io.Writer, msg string) {
	fmt.Fprintln(w, l.style.Render(l.glyph+" "+msg))
}

func (ui *UI) Success(msg string) { levelSuccess.print(ui.out, msg) }
func (ui *UI) Info(msg string)    { levelInfo.print(ui.out, msg) }
func (ui *UI) Error(msg string)   { levelError.print(ui.err, msg) }
func (ui *UI) Warning(msg string) { levelWarning.print(ui.err, msg) }

// Subtle prints a muted line
func (ui *UI) Subtle(msg string) {
	fmt.Fprintln(ui.out, mutedStyle.Render(msg))
}

func (ui *UI) Println(msg string) {
	fmt.Fprintln(ui.out, msg)
}

func (ui *UI) Header(title string) {
	fmt.Fprintln(ui.out, titleStyle.Render(title))
}

// KeyValue prints an indented key-value pair
func (ui *UI) KeyValue(key, value string) {
	fmt.Fprintf(ui.out, "  %s: %s\n", mutedStyle.Render(key), value)
}

// JSON prints v as indented JSON, unstyled so the output stays machine readable
func (ui *UI) JSON(v any) error {
	enc := json.NewEncoder(ui.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table buffers rows and prints them column aligned
type Table struct {
	ui      *UI
	headers []string
	rows    [][]string
}

func (ui *UI) NewTable(headers ...string) *Table {
	return &Table{ui: ui, headers: headers}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := columnWidths(t.headers, t.rows)
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}

	t.ui.Println(titleStyle.Render(alignRow(t.headers, widths)))
	t.ui.Println(mutedStyle.Render(strings.Join(rule, "─┼─")))
	for _, row := range t.rows {
		t.ui.Println(alignRow(row, widths))
	}
}

// columnWidths returns the display width of the widest cell in each column
func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for _, row := range append([][]string{headers}, rows...) {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	return widths
}

func alignRow(cells []string, widths []int) string {
	padded := make([]string, len(widths))
	for i, w := range widths {
		padded[i] = padRight(cells[i], w)
	}
	return strings.Join(padded, " │ ")
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
