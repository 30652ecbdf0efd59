package common

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// NewTable returns a table writer that renders to w.
func NewTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if len(header) > 0 {
		t.AppendHeader(table.Row(header))
	}
	return t
}
