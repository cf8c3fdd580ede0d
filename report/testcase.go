package report

import (
	"sync"
	"time"

	"github.com/titpetric/verdict/artifact"
	"github.com/titpetric/verdict/model"
)

// Test is a single test case with an ordered list of steps.
type Test struct {
	container *Container
	details   *model.ExecutionDetails

	mu    sync.Mutex
	steps []*Step
}

func newTest(c *Container, name string, categories []string) *Test {
	return &Test{
		container: c,
		details:   model.NewExecutionDetails(name, categories...),
		steps:     make([]*Step, 0),
	}
}

// SetStatus escalates the test status and writes the same status to the
// container, which escalates on its own.
func (t *Test) SetStatus(status model.Status) {
	t.details.SetStatus(status)
	t.container.details.SetStatus(status)
}

// CreateStep appends a step without a keyword.
func (t *Test) CreateStep(description string) *Step {
	return t.CreateKeywordStep(model.KeywordNone, description)
}

// CreateKeywordStep appends a step declared with a Gherkin keyword.
func (t *Test) CreateKeywordStep(keyword model.Keyword, description string) *Step {
	s := newStep(t, keyword, description)

	t.mu.Lock()
	t.steps = append(t.steps, s)
	t.mu.Unlock()

	t.touch()
	return s
}

// AddStep records a finished step in one call: the step starts where the
// test last ended, gets status and optional screenshot, and the status
// propagates to the test and container. The step is returned even when
// the screenshot could not be encoded.
func (t *Test) AddStep(status model.Status, keyword model.Keyword, message string, shot *artifact.Screenshot) (*Step, error) {
	earlier := t.details.End()

	s := t.CreateKeywordStep(keyword, message)
	s.details.SetStart(earlier)
	s.details.SetStatus(status)
	err := s.attach(shot)

	t.SetStatus(status)
	now := time.Now()
	s.details.SetEnd(now)
	t.details.SetEnd(now)
	return s, err
}

// LogStep adds a finished step without a keyword.
func (t *Test) LogStep(status model.Status, message string, shot *artifact.Screenshot) (*Step, error) {
	return t.AddStep(status, model.KeywordNone, message, shot)
}

// PassStep adds a passed step.
func (t *Test) PassStep(message string, shot *artifact.Screenshot) (*Step, error) {
	return t.LogStep(model.StatusPass, message, shot)
}

// FailStep adds a failed step.
func (t *Test) FailStep(message string, shot *artifact.Screenshot) (*Step, error) {
	return t.LogStep(model.StatusFail, message, shot)
}

// SkipStep adds a skipped step.
func (t *Test) SkipStep(message string, shot *artifact.Screenshot) (*Step, error) {
	return t.LogStep(model.StatusSkip, message, shot)
}

// Log records status on the test without adding a step.
func (t *Test) Log(status model.Status) {
	t.SetStatus(status)
}

// Pass marks the test passed.
func (t *Test) Pass() { t.Log(model.StatusPass) }

// Fail marks the test failed.
func (t *Test) Fail() { t.Log(model.StatusFail) }

// Skip marks the test skipped.
func (t *Test) Skip() { t.Log(model.StatusSkip) }

// Steps returns a copy of the steps in creation order.
func (t *Test) Steps() []*Step {
	t.mu.Lock()
	defer t.mu.Unlock()
	steps := make([]*Step, len(t.steps))
	copy(steps, t.steps)
	return steps
}

// Name returns the test name.
func (t *Test) Name() string {
	return t.details.Name()
}

// Status returns the escalated status.
func (t *Test) Status() model.Status {
	return t.details.Status()
}

// Details returns a point-in-time copy of the test details.
func (t *Test) Details() model.Details {
	return t.details.Snapshot()
}

// Container returns the container the test belongs to.
func (t *Test) Container() *Container {
	return t.container
}

// SetTimes overrides the start and end of the test, for results replayed
// from a recorded clock.
func (t *Test) SetTimes(start, end time.Time) {
	t.details.SetStart(start)
	t.details.SetEnd(end)
}

func (t *Test) touch() {
	now := time.Now()
	t.details.SetEnd(now)
	t.container.details.SetEnd(now)
}
