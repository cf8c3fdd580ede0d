package model

import (
	"sync"
	"time"
)

// Details is a point-in-time copy of an ExecutionDetails.
type Details struct {
	Name       string    `json:"name" yaml:"name"`
	Categories []string  `json:"categories,omitempty" yaml:"categories,omitempty"`
	Start      time.Time `json:"start" yaml:"start"`
	End        time.Time `json:"end" yaml:"end"`
	Duration   string    `json:"duration,omitempty" yaml:"duration,omitempty"`
	Status     Status    `json:"status" yaml:"status"`
}

// Elapsed returns End - Start, clamped at zero.
func (d Details) Elapsed() time.Duration {
	if d.End.Before(d.Start) {
		return 0
	}
	return d.End.Sub(d.Start)
}

// ExecutionDetails holds the timing and outcome of a single node.
// Every accessor takes the node's own lock.
type ExecutionDetails struct {
	mu         sync.Mutex
	name       string
	categories []string
	start      time.Time
	end        time.Time
	duration   string
	status     Status
}

// NewExecutionDetails creates details started and ended at now.
func NewExecutionDetails(name string, categories ...string) *ExecutionDetails {
	now := time.Now()
	cats := make([]string, len(categories))
	copy(cats, categories)
	return &ExecutionDetails{
		name:       name,
		categories: cats,
		start:      now,
		end:        now,
	}
}

// Name returns the node name.
func (d *ExecutionDetails) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

// Categories returns a copy of the node categories.
func (d *ExecutionDetails) Categories() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	cats := make([]string, len(d.categories))
	copy(cats, d.categories)
	return cats
}

// Status returns the current escalated status.
func (d *ExecutionDetails) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// SetStatus escalates the status and moves the end time to now.
// Writes of a lower priority are accepted but have no effect on the status.
func (d *ExecutionDetails) SetStatus(status Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = Escalate(d.status, status)
	d.end = time.Now()
}

// Start returns the start time.
func (d *ExecutionDetails) Start() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.start
}

// SetStart overrides the start time.
func (d *ExecutionDetails) SetStart(t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.start = t
}

// End returns the end time.
func (d *ExecutionDetails) End() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.end
}

// Touch moves the end time to now.
func (d *ExecutionDetails) Touch() {
	d.SetEnd(time.Now())
}

// SetEnd overrides the end time.
func (d *ExecutionDetails) SetEnd(t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.end = t
}

// Duration returns the formatted duration, empty until SetDuration runs.
func (d *ExecutionDetails) Duration() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.duration
}

// SetDuration formats end - start into the duration field.
func (d *ExecutionDetails) SetDuration() {
	d.mu.Lock()
	defer d.mu.Unlock()
	elapsed := d.end.Sub(d.start)
	if elapsed < 0 {
		elapsed = 0
	}
	d.duration = FormatDuration(elapsed)
}

// Snapshot returns every field under a single lock.
func (d *ExecutionDetails) Snapshot() Details {
	d.mu.Lock()
	defer d.mu.Unlock()
	cats := make([]string, len(d.categories))
	copy(cats, d.categories)
	return Details{
		Name:       d.name,
		Categories: cats,
		Start:      d.start,
		End:        d.end,
		Duration:   d.duration,
		Status:     d.status,
	}
}
