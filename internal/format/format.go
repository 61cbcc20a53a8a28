// Package format renders metric tables for terminals and markdown documents.
package format

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"deskinsight/internal/domain"
)

type Mode int

const (
	ASCII Mode = iota
	Markdown
)

// Table is a header plus rows, rendered in the Mode it was created with.
type Table struct {
	writer table.Writer
	mode   Mode
}

func NewTable(m Mode, title string) *Table {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
		w.SetTitle(title)
	}
	return &Table{writer: w, mode: m}
}

func (t *Table) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	t.writer.AppendHeader(row)
}

func (t *Table) Row(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	t.writer.AppendRow(row)
}

// AlignRight right-aligns the given 1-based columns.
func (t *Table) AlignRight(cols ...int) {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		cfgs[i] = table.ColumnConfig{Number: c, Align: text.AlignRight}
	}
	t.writer.SetColumnConfigs(cfgs)
}

func (t *Table) String() string {
	if t.mode == Markdown {
		return t.writer.RenderMarkdown()
	}
	return t.writer.Render()
}

// Days formats an optional average with two decimals, "-" when absent.
func Days(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func TopClients(m Mode, rows []domain.ClientIncidentCount) string {
	t := NewTable(m, "Top clients by incidents")
	t.Header("#", "Client", "Incidents")
	for i, r := range rows {
		t.Row(i+1, r.Client, r.IncidentCount)
	}
	t.AlignRight(1, 3)
	return t.String()
}

// ResolutionTimes renders a resolution ranking; subject names the key column.
func ResolutionTimes(m Mode, title, subject string, rows []domain.ResolutionTime) string {
	t := NewTable(m, title)
	t.Header("#", subject, "Avg resolution (days)", "Closed tickets")
	for i, r := range rows {
		avg := r.AvgDays
		t.Row(i+1, r.Name, Days(&avg), r.Tickets)
	}
	t.AlignRight(1, 3, 4)
	return t.String()
}
