package report

import (
	"sync"
	"time"

	"github.com/titpetric/verdict/model"
)

// Container groups tests. Its status is the escalation of every status
// its tests ever recorded.
type Container struct {
	report    *Report
	details   *model.ExecutionDetails
	isDefault bool

	mu    sync.Mutex
	tests []*Test
}

func newContainer(r *Report, name string, categories []string) *Container {
	return &Container{
		report:  r,
		details: model.NewExecutionDetails(name, categories...),
		tests:   make([]*Test, 0),
	}
}

// CreateTest appends a new test to the container. Safe for concurrent use.
func (c *Container) CreateTest(name string, categories ...string) *Test {
	t := newTest(c, name, categories)

	c.mu.Lock()
	c.tests = append(c.tests, t)
	c.mu.Unlock()

	c.details.Touch()
	return t
}

// Tests returns a copy of the tests in creation order.
func (c *Container) Tests() []*Test {
	c.mu.Lock()
	defer c.mu.Unlock()
	tests := make([]*Test, len(c.tests))
	copy(tests, c.tests)
	return tests
}

// Name returns the container name.
func (c *Container) Name() string {
	return c.details.Name()
}

// Status returns the escalated status.
func (c *Container) Status() model.Status {
	return c.details.Status()
}

// Details returns a point-in-time copy of the container details.
func (c *Container) Details() model.Details {
	return c.details.Snapshot()
}

// IsDefault reports whether this is the container Report.CreateTest uses.
func (c *Container) IsDefault() bool {
	return c.isDefault
}

// SetTimes overrides the start and end of the container.
func (c *Container) SetTimes(start, end time.Time) {
	c.details.SetStart(start)
	c.details.SetEnd(end)
}
