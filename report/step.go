package report

import (
	"strings"
	"sync"
	"time"

	"github.com/titpetric/verdict/artifact"
	"github.com/titpetric/verdict/model"
)

// LogEntry is an immutable message recorded on a step.
type LogEntry struct {
	Timestamp       string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Message         string `json:"message,omitempty" yaml:"message,omitempty"`
	ScreenshotID    int    `json:"screenshot_id,omitempty" yaml:"screenshot_id,omitempty"`
	ScreenshotTitle string `json:"screenshot_title,omitempty" yaml:"screenshot_title,omitempty"`
}

// Step is a single step of a test.
type Step struct {
	test    *Test
	keyword model.Keyword
	details *model.ExecutionDetails

	mu              sync.Mutex
	logs            []LogEntry
	screenshotID    int
	screenshotTitle string
}

func newStep(t *Test, keyword model.Keyword, description string) *Step {
	return &Step{
		test:    t,
		keyword: keyword,
		details: model.NewExecutionDetails(description),
		logs:    make([]LogEntry, 0),
	}
}

// SetStatus escalates the step status and propagates it to the test.
func (s *Step) SetStatus(status model.Status) {
	s.details.SetStatus(status)
	s.test.SetStatus(status)
}

// Log records status, attaches the optional screenshot to the step and
// appends message as an untimestamped entry when it is not blank. The
// status is recorded even if the screenshot fails to encode.
func (s *Step) Log(status model.Status, message string, shot *artifact.Screenshot) error {
	s.details.SetStatus(status)
	err := s.attach(shot)
	s.test.SetStatus(status)

	if strings.TrimSpace(message) != "" {
		s.append(LogEntry{Message: message})
	}
	return err
}

// Pass logs a passed status.
func (s *Step) Pass(message string, shot *artifact.Screenshot) error {
	return s.Log(model.StatusPass, message, shot)
}

// Fail logs a failed status.
func (s *Step) Fail(message string, shot *artifact.Screenshot) error {
	return s.Log(model.StatusFail, message, shot)
}

// Skip logs a skipped status.
func (s *Step) Skip(message string, shot *artifact.Screenshot) error {
	return s.Log(model.StatusSkip, message, shot)
}

// Write appends a log entry, optionally timestamped and carrying a
// screenshot, without touching any status.
func (s *Step) Write(message string, shot *artifact.Screenshot, timestamp bool) error {
	entry := LogEntry{Message: message}
	if timestamp {
		entry.Timestamp = model.LogTimestamp(time.Now())
	}
	if shot != nil {
		id, err := s.test.container.report.submit(shot)
		if err != nil {
			return err
		}
		entry.ScreenshotID = id
		entry.ScreenshotTitle = shot.Title()
	}

	s.append(entry)
	s.test.details.Touch()
	return nil
}

func (s *Step) attach(shot *artifact.Screenshot) error {
	if shot == nil {
		return nil
	}
	id, err := s.test.container.report.submit(shot)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.screenshotID = id
	s.screenshotTitle = shot.Title()
	return nil
}

func (s *Step) append(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
}

// Logs returns a copy of the log entries.
func (s *Step) Logs() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	logs := make([]LogEntry, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// Screenshot returns the id and title of the step screenshot. An id of 0
// means the step has none.
func (s *Step) Screenshot() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screenshotID, s.screenshotTitle
}

// Keyword returns the Gherkin keyword.
func (s *Step) Keyword() model.Keyword {
	return s.keyword
}

// Description returns the step description.
func (s *Step) Description() string {
	return s.details.Name()
}

// Status returns the escalated status.
func (s *Step) Status() model.Status {
	return s.details.Status()
}

// Details returns a point-in-time copy of the step details.
func (s *Step) Details() model.Details {
	return s.details.Snapshot()
}

// SetTimes overrides the start and end of the step.
func (s *Step) SetTimes(start, end time.Time) {
	s.details.SetStart(start)
	s.details.SetEnd(end)
}

// Test returns the test the step belongs to.
func (s *Step) Test() *Test {
	return s.test
}
