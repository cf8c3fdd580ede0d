package treeview

import (
	"fmt"
	"io"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/titpetric/verdict/colors"
	"github.com/titpetric/verdict/model"
	"github.com/titpetric/verdict/report"
)

// Display writes report trees and summary tables to a writer.
type Display struct {
	mu         sync.Mutex
	out        io.Writer
	isTerminal bool
	renderer   *Renderer
}

// NewDisplay creates a display writing to out.
func NewDisplay(out io.Writer) *Display {
	return &Display{
		out:        out,
		isTerminal: colors.IsTerminal(out),
		renderer:   NewRenderer(),
	}
}

// IsTerminal returns whether the output is a TTY.
func (d *Display) IsTerminal() bool {
	return d.isTerminal
}

// Renderer returns the tree renderer, for adjusting its settings.
func (d *Display) Renderer() *Renderer {
	return d.renderer
}

// RenderTree prints a tree.
func (d *Display) RenderTree(root *Node) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fmt.Fprint(d.out, d.renderer.Render(root))
}

// RenderStats prints the per-level counters of a run.
func (d *Display) RenderStats(snap *report.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := table.NewWriter()
	t.SetOutputMirror(d.out)
	t.SetTitle(fmt.Sprintf("%s (%s)", snap.Heading, snap.Duration))
	t.AppendHeader(table.Row{"Level", "Total", "Passed", "Failed", "Skipped"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Total", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
	})

	levels := []struct {
		name    string
		counter model.Counter
	}{
		{"Containers", snap.Stats.Containers},
		{"Tests", snap.Stats.Tests},
		{"Steps", snap.Stats.Steps},
	}
	for _, level := range levels {
		c := level.counter
		t.AppendRow(table.Row{level.name, c.Total, c.Passed, c.Failed, c.Skipped})
	}

	s := snap.Stats.Summary
	t.AppendFooter(table.Row{"Result " + snap.Stats.Result().Label(), s.Total, s.Passed, s.Failed, s.Skipped})

	if d.isTerminal {
		t.SetStyle(resultStyle(snap.Stats.Result()))
	} else {
		t.SetStyle(table.StyleLight)
	}
	t.Render()
}

// RenderTable prints the report table, if the snapshot has one.
func (d *Display) RenderTable(snap *report.Snapshot) {
	if snap.Table == nil || len(snap.Table.Columns) == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	t := table.NewWriter()
	t.SetOutputMirror(d.out)

	header := make(table.Row, 0, len(snap.Table.Columns))
	for _, col := range snap.Table.Columns {
		header = append(header, col)
	}
	t.AppendHeader(header)

	for _, rec := range snap.Table.Rows {
		row := make(table.Row, 0, rec.Len())
		for pair := rec.Oldest(); pair != nil; pair = pair.Next() {
			row = append(row, pair.Value)
		}
		t.AppendRow(row)
	}

	t.SetStyle(table.StyleLight)
	t.Render()
}

func resultStyle(status model.Status) table.Style {
	switch status {
	case model.StatusPass:
		return table.StyleColoredBlackOnGreenWhite
	case model.StatusSkip:
		return table.StyleColoredBlackOnYellowWhite
	}
	return table.StyleColoredBlackOnRedWhite
}
