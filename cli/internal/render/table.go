package render

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
	JSON                 // Indented JSON documents
)

// ParseMode accepts table | markdown | json.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table", "ascii":
		return ASCII, nil
	case "markdown", "md":
		return Markdown, nil
	case "json":
		return JSON, nil
	}
	return 0, fmt.Errorf("render: unknown output %q: want table|markdown|json", s)
}

// TableBuilder builds one table and renders it in the Mode set at creation.
type TableBuilder interface {
	// Title sets an optional caption rendered above the table.
	Title(title string)
	// Header sets the column headers.
	Header(cols ...string)
	// Row appends a data row.
	Row(vals ...any)
	// AlignRight right-aligns the given 1-based columns.
	AlignRight(cols ...int)
	// String renders the table.
	String() string
}

// NewTable returns a TableBuilder that renders in the given Mode.
// JSON has no table form and renders as ASCII.
func NewTable(m Mode) TableBuilder {
	w := table.NewWriter()
	if m != Markdown {
		w.SetStyle(table.StyleLight)
	}
	return &prettyAdapter{writer: w, mode: m}
}

// prettyAdapter wraps go-pretty/v6/table.Writer behind the TableBuilder interface.
type prettyAdapter struct {
	writer table.Writer
	mode   Mode
	title  string
}

func (a *prettyAdapter) Title(title string) { a.title = title }

func (a *prettyAdapter) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	a.writer.AppendHeader(row)
}

func (a *prettyAdapter) Row(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	a.writer.AppendRow(row)
}

func (a *prettyAdapter) AlignRight(cols ...int) {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		cfgs[i] = table.ColumnConfig{Number: c, Align: text.AlignRight}
	}
	a.writer.SetColumnConfigs(cfgs)
}

func (a *prettyAdapter) String() string {
	var body string
	switch a.mode {
	case Markdown:
		body = a.writer.RenderMarkdown()
		if a.title != "" {
			return "### " + a.title + "\n\n" + body
		}
	default:
		body = a.writer.Render()
		if a.title != "" {
			return a.title + "\n" + body
		}
	}
	return body
}
