package report

import (
	"time"

	"github.com/titpetric/verdict/model"
	"github.com/titpetric/verdict/table"
)

// Snapshot is a read-only copy of a report.
type Snapshot struct {
	Heading    string              `json:"heading" yaml:"heading"`
	Start      time.Time           `json:"start" yaml:"start"`
	End        time.Time           `json:"end" yaml:"end"`
	Duration   string              `json:"duration" yaml:"duration"`
	Meta       model.MetaInfo      `json:"meta" yaml:"meta"`
	Stats      model.ReportStats   `json:"stats" yaml:"stats"`
	Containers []ContainerSnapshot `json:"containers" yaml:"containers"`
	Table      *TableSnapshot      `json:"table,omitempty" yaml:"table,omitempty"`
}

// ContainerSnapshot is a copy of a container and its tests.
type ContainerSnapshot struct {
	model.Details `yaml:",inline"`
	Default       bool           `json:"default,omitempty" yaml:"default,omitempty"`
	Tests         []TestSnapshot `json:"tests" yaml:"tests"`
}

// TestSnapshot is a copy of a test and its steps.
type TestSnapshot struct {
	model.Details `yaml:",inline"`
	Steps         []StepSnapshot `json:"steps" yaml:"steps"`
}

// StepSnapshot is a copy of a step and its log entries.
type StepSnapshot struct {
	model.Details   `yaml:",inline"`
	Keyword         model.Keyword `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	ScreenshotID    int           `json:"screenshot_id,omitempty" yaml:"screenshot_id,omitempty"`
	ScreenshotTitle string        `json:"screenshot_title,omitempty" yaml:"screenshot_title,omitempty"`
	Logs            []LogEntry    `json:"logs,omitempty" yaml:"logs,omitempty"`
}

// TableSnapshot holds the finalized report table.
type TableSnapshot struct {
	Columns []string       `json:"columns" yaml:"columns"`
	Rows    []table.Record `json:"rows" yaml:"rows"`
}

// Snapshot finalizes durations, aggregates statuses and copies the report.
// The table, if any, is finalized by the first call.
func (r *Report) Snapshot() *Snapshot {
	end := time.Now()
	containers := r.Containers()
	finalizeDurations(containers)

	snap := &Snapshot{
		Heading:    r.cfg.Heading,
		Start:      r.start,
		End:        end,
		Duration:   model.FormatDuration(end.Sub(r.start)),
		Meta:       r.cfg.Meta.WithDefaults(r.start),
		Stats:      Aggregate(containers),
		Containers: make([]ContainerSnapshot, 0, len(containers)),
	}

	for _, c := range containers {
		snap.Containers = append(snap.Containers, c.snapshot())
	}

	if t := r.currentTable(); t != nil {
		snap.Table = &TableSnapshot{
			Columns: t.Columns(),
			Rows:    t.Finalize(),
		}
	}
	return snap
}

func (c *Container) snapshot() ContainerSnapshot {
	tests := c.Tests()
	out := ContainerSnapshot{
		Details: c.Details(),
		Default: c.isDefault,
		Tests:   make([]TestSnapshot, 0, len(tests)),
	}
	for _, t := range tests {
		out.Tests = append(out.Tests, t.snapshot())
	}
	return out
}

func (t *Test) snapshot() TestSnapshot {
	steps := t.Steps()
	out := TestSnapshot{
		Details: t.Details(),
		Steps:   make([]StepSnapshot, 0, len(steps)),
	}
	for _, s := range steps {
		out.Steps = append(out.Steps, s.snapshot())
	}
	return out
}

func (s *Step) snapshot() StepSnapshot {
	id, title := s.Screenshot()
	return StepSnapshot{
		Details:         s.Details(),
		Keyword:         s.keyword,
		ScreenshotID:    id,
		ScreenshotTitle: title,
		Logs:            s.Logs(),
	}
}
