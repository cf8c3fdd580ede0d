// Package eventlog writes a YAML run log: run metadata, the report state
// tree, one event per test and a summary.
package eventlog

import (
	"bytes"
	"cmp"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	ulid "github.com/oklog/ulid/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/titpetric/verdict/model"
	"github.com/titpetric/verdict/report"
)

// Logger collects test events and writes the final log.
type Logger struct {
	mu       sync.Mutex
	filePath string
	metadata RunMetadata
	events   []*Event
	debug    bool
}

// NewLogger creates a new run logger.
// If filePath is empty, returns nil (no logging occurs).
func NewLogger(filePath, reportPath string, inputs []string, debug bool) *Logger {
	if filePath == "" {
		return nil
	}

	metadata := RunMetadata{
		RunID:      ulid.Make().String(),
		CreatedAt:  time.Now(),
		Report:     reportPath,
		Inputs:     inputs,
		Git:        CaptureGitInfo(),
		ModulePath: CaptureModulePath(),
	}

	return &Logger{
		filePath: filePath,
		metadata: metadata,
		debug:    debug,
	}
}

// RunID returns the ulid of the run.
func (l *Logger) RunID() string {
	if l == nil {
		return ""
	}
	return l.metadata.RunID
}

// LogTest logs a single finished test.
func (l *Logger) LogTest(result Result, id, name string, start, duration float64, steps int, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	event := &Event{
		ID:       id,
		Name:     name,
		Result:   result,
		Start:    start,
		Duration: duration,
		Steps:    steps,
	}
	if result == ResultFail {
		event.Error = message
	}
	if l.debug {
		event.GoroutineID = getGoroutineID()
	}
	l.events = append(l.events, event)
}

// Record logs every test of snap and stores the report metadata.
func (l *Logger) Record(snap *report.Snapshot) {
	if l == nil || snap == nil {
		return
	}

	l.mu.Lock()
	l.metadata.Meta = snap.Meta
	l.mu.Unlock()

	for _, c := range snap.Containers {
		for _, t := range c.Tests {
			l.LogTest(
				statusToResult(t.Status),
				testID(c.Name, t.Name),
				t.Name,
				offset(snap.Start, t.Start),
				t.Elapsed().Seconds(),
				len(t.Steps),
				lastMessage(t),
			)
		}
	}
}

// Write writes the final run log to the file.
func (l *Logger) Write(state *StateNode, summary *RunSummary) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	log := &Log{
		Metadata: l.metadata,
		State:    state,
		Events:   sortedEvents(l.events),
		Summary:  summary,
	}

	data, err := yaml.Marshal(log)
	if err != nil {
		return err
	}

	if err := os.WriteFile(l.filePath, data, 0o644); err != nil {
		return model.WrapError(model.ErrCodePath, "cannot write run log", err).WithContext("path", l.filePath)
	}
	return nil
}

// WriteSnapshot records snap and writes the complete log.
func (l *Logger) WriteSnapshot(snap *report.Snapshot) error {
	if l == nil {
		return nil
	}
	l.Record(snap)
	return l.Write(SnapshotToStateNode(snap), NewRunSummary(snap, CaptureRuntimeStats()))
}

// Events returns a copy of the logged events.
func (l *Logger) Events() []*Event {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.events)
}

// sortedEvents orders events by start offset, then ID. Inputs are
// ingested concurrently, so recording order is not stable.
func sortedEvents(events []*Event) []*Event {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b *Event) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return sorted
}

// testID joins container and test names, container::test.
func testID(container, test string) string {
	return container + "::" + test
}

// lastMessage returns the last logged message of a test.
func lastMessage(t report.TestSnapshot) string {
	for i := len(t.Steps) - 1; i >= 0; i-- {
		logs := t.Steps[i].Logs
		for j := len(logs) - 1; j >= 0; j-- {
			if msg := strings.TrimSpace(logs[j].Message); msg != "" {
				return msg
			}
		}
	}
	return ""
}

// getGoroutineID extracts the goroutine ID from the runtime stack.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Stack output starts with "goroutine <id> ["
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, _ := strconv.ParseUint(string(fields[1]), 10, 64)
	return id
}
