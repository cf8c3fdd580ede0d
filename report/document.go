package report

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"

	"github.com/titpetric/verdict/config"
	"github.com/titpetric/verdict/model"
	"github.com/titpetric/verdict/table"
)

// Document supplies the bytes around the artifact object. Head is
// written when the report opens and must leave the output inside an
// element that can hold the artifact object. Body is written after the
// object is terminated and closes that element.
type Document interface {
	Head() (string, error)
	Body(*Snapshot) (string, error)
}

// HTMLDocument renders a minimal HTML page: the artifact object sits in a
// JSON script element, followed by the snapshot as a second JSON island
// and a plain summary.
type HTMLDocument struct {
	cfg  *config.Config
	head *texttemplate.Template
	body *template.Template
}

// NewHTMLDocument creates an HTML document for cfg.
func NewHTMLDocument(cfg *config.Config) *HTMLDocument {
	funcs := template.FuncMap{
		"icon": func(s model.Status) string {
			return statusIcon(s, cfg.UseEmojis)
		},
		"time":  cfg.TimeStyle.Format,
		"cells": recordCells,
	}
	return &HTMLDocument{
		cfg:  cfg,
		head: texttemplate.Must(texttemplate.New("head").Parse(headTemplate)),
		body: template.Must(template.New("body").Funcs(funcs).Parse(bodyTemplate)),
	}
}

// Head implements Document. The head ends inside an open script
// element, which html/template refuses to render, so it is a text
// template and escapes its values explicitly.
func (d *HTMLDocument) Head() (string, error) {
	var buf bytes.Buffer
	if err := d.head.Execute(&buf, d.cfg); err != nil {
		return "", fmt.Errorf("render report head: %w", err)
	}
	return buf.String(), nil
}

type chartView struct {
	Kind    model.Chart
	Title   string
	Counter model.Counter
}

type bodyView struct {
	*Snapshot
	Config *config.Config
	Charts []chartView
}

// Body implements Document.
func (d *HTMLDocument) Body(snap *Snapshot) (string, error) {
	view := bodyView{
		Snapshot: snap,
		Config:   d.cfg,
	}
	for _, kind := range d.cfg.Charts.Order {
		cv := chartView{Kind: kind}
		switch kind {
		case model.ChartContainer:
			cv.Title, cv.Counter = d.cfg.Charts.ContainerTitle, snap.Stats.Containers
		case model.ChartTest:
			cv.Title, cv.Counter = d.cfg.Charts.TestTitle, snap.Stats.Tests
		case model.ChartStep:
			cv.Title, cv.Counter = d.cfg.Charts.StepTitle, snap.Stats.Steps
		}
		view.Charts = append(view.Charts, cv)
	}

	var buf bytes.Buffer
	if err := d.body.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// recordCells lists the values of a finalized record in column order.
func recordCells(rec table.Record) []string {
	cells := make([]string, 0, rec.Len())
	for pair := rec.Oldest(); pair != nil; pair = pair.Next() {
		cells = append(cells, pair.Value)
	}
	return cells
}

func statusIcon(s model.Status, emoji bool) string {
	if !emoji {
		return s.Label()
	}
	switch s {
	case model.StatusPass:
		return "✅"
	case model.StatusFail:
		return "❌"
	case model.StatusSkip:
		return "⏭️"
	}
	return "ℹ️"
}

const headTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{html .Heading}}</title>
{{- if .Offline}}
<style>
body { font-family: sans-serif; margin: 2em; }
.pass { color: #2e7d32; } .fail { color: #c62828; } .skip { color: #f9a825; }
table { border-collapse: collapse; } td, th { padding: 0.25em 0.75em; border-bottom: 1px solid #ddd; }
</style>
{{- end}}
</head>
<body>
 <script id="screenshot-data" type="application/json">
`

const bodyTemplate = `  </script>
 <script id="report-data" type="application/json">{{.Snapshot}}</script>
 <main>
  <h1>{{.Heading}}</h1>
  <p class="summary">Total {{.Stats.Summary.Total}}, passed {{.Stats.Summary.Passed}}, failed {{.Stats.Summary.Failed}}, skipped {{.Stats.Summary.Skipped}}, duration {{.Duration}}</p>
  <dl class="meta">
   <dt>Executor</dt><dd>{{.Meta.Executor}}</dd>
   <dt>Date</dt><dd>{{.Meta.Date}}</dd>
   {{- with .Meta.Build}}<dt>Build</dt><dd>{{.}}</dd>{{end}}
   {{- with .Meta.Environment}}<dt>Environment</dt><dd>{{.}}</dd>{{end}}
   {{- with .Meta.BranchName}}<dt>Branch</dt><dd>{{.}}</dd>{{end}}
   {{- with .Meta.CommitHash}}<dt>Commit</dt><dd>{{.}}</dd>{{end}}
   {{- range $k, $v := .Meta.CustomFields}}<dt>{{$k}}</dt><dd>{{$v}}</dd>{{end}}
   {{- with .Meta.ChangeLogSummary}}<dt>Changes</dt><dd>{{.}}</dd>{{end}}
  </dl>
  {{- range .Charts}}
  <section class="chart" data-chart="{{.Kind}}">
   <h2>{{.Title}}</h2>
   <p>{{.Counter.Passed}} passed, {{.Counter.Failed}} failed, {{.Counter.Skipped}} skipped of {{.Counter.Total}}</p>
  </section>
  {{- end}}
  <table class="status">
   <tr><th>Name</th><th>Status</th>{{if .Config.ShowCategory}}<th>Category</th>{{end}}{{if .Config.ShowEndTime}}<th>End</th>{{end}}{{if .Config.ShowDuration}}<th>Duration</th>{{end}}</tr>
   {{- range .Containers}}{{range .Tests}}
   <tr class="{{.Status}}"><td>{{.Name}}</td><td>{{icon .Status}}</td>{{if $.Config.ShowCategory}}<td>{{range $i, $c := .Categories}}{{if $i}}, {{end}}{{$c}}{{end}}</td>{{end}}{{if $.Config.ShowEndTime}}<td>{{time .End}}</td>{{end}}{{if $.Config.ShowDuration}}<td>{{.Duration}}</td>{{end}}</tr>
   {{- end}}{{end}}
  </table>
  {{- with .Table}}
  <table class="custom">
   <tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
   {{- range .Rows}}
   <tr>{{range cells .}}<td>{{.}}</td>{{end}}</tr>
   {{- end}}
  </table>
  {{- end}}
 </main>
{{- if not .Config.Offline}}
 <script>if (!navigator.onLine) { console.warn("offline, some features may not work"); }</script>
{{- end}}
</body>
</html>
`
