// Package ingest replays go test -json output into a report: packages
// become containers, top-level tests become tests, subtests become steps
// and output lines become step log entries.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/titpetric/verdict/artifact"
	"github.com/titpetric/verdict/model"
	"github.com/titpetric/verdict/report"
)

// PackageTestName names the test recorded for a package that failed
// without any failing test, such as a build failure.
const PackageTestName = "(package)"

// maxLineSize bounds a single go test -json line.
const maxLineSize = 4 << 20

// screenshotPattern matches output lines of the form
// "screenshot: <path> [title]".
var screenshotPattern = regexp.MustCompile(`(?:^|\s)screenshot:\s+(\S+)(?:\s+(.*\S))?\s*$`)

// Ingester feeds test events into a report. It is safe for concurrent
// use; events for the same package may arrive from several inputs.
type Ingester struct {
	report *report.Report
	log    *slog.Logger
	events *EventLogger

	mu       sync.Mutex
	packages map[string]*packageState
	order    []string
	skipped  int
}

type packageState struct {
	name      string
	container *report.Container
	start     time.Time
	end       time.Time
	failed    bool
	output    []string
	tests     map[string]*testState
}

type testState struct {
	test  *report.Test
	start time.Time
	main  *report.Step
	steps map[string]*stepState
}

type stepState struct {
	step  *report.Step
	start time.Time
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets the logger for malformed input and screenshot failures.
func WithLogger(log *slog.Logger) Option {
	return func(i *Ingester) {
		if log != nil {
			i.log = log
		}
	}
}

// WithEventLogger records every event to el.
func WithEventLogger(el *EventLogger) Option {
	return func(i *Ingester) {
		i.events = el
	}
}

// New creates an ingester writing into r.
func New(r *report.Report, opts ...Option) *Ingester {
	i := &Ingester{
		report:   r,
		log:      slog.Default(),
		packages: make(map[string]*packageState),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ReadFiles ingests every path concurrently and finishes the run. A path
// of "-" reads standard input.
func (i *Ingester) ReadFiles(ctx context.Context, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		g.Go(func() error {
			return i.ReadFile(ctx, path)
		})
	}
	err := g.Wait()
	i.Finish()
	return err
}

// ReadFile ingests a single go test -json file.
func (i *Ingester) ReadFile(ctx context.Context, path string) error {
	if path == "-" {
		return i.Read(ctx, os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return model.WrapError(model.ErrCodePath, "cannot open test output", err).WithContext("path", path)
	}
	defer f.Close()

	if err := i.Read(ctx, f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Read ingests go test -json lines from r. Lines that are not test
// events are skipped.
func (i *Ingester) Read(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		event, err := parseTestEvent(line)
		if err != nil {
			i.mu.Lock()
			i.skipped++
			i.mu.Unlock()
			i.log.Debug("skipping non-json line", slog.String("line", string(line)))
			continue
		}
		i.Handle(event)
	}
	return scanner.Err()
}

// Skipped returns the number of input lines that were not test events.
func (i *Ingester) Skipped() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.skipped
}

// Handle applies a single event to the report. The ingester lock covers
// the package and test state only; output lines, which may encode a
// screenshot, are written to their step after it is released.
func (i *Ingester) Handle(event TestEvent) {
	if step, output := i.apply(event); step != nil {
		i.output(step, output)
	}
}

// apply updates the ingest state for event and returns the step an
// output line belongs to, if any.
func (i *Ingester) apply(event TestEvent) (*report.Step, string) {
	if event.Package == "" {
		return nil, ""
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	ps := i.pkg(event)

	if event.Test == "" {
		i.handlePackage(ps, event)
		return nil, ""
	}

	name, sub := event.Split()
	ts := i.test(ps, name, event.Time)

	if sub == "" {
		return i.handleTest(ps, ts, event), event.Output
	}

	ss := ts.step(sub, event.Time)
	switch event.Action {
	case ActionRun:
		i.events.LogRun(event.Package, event.Test)
	case ActionOutput:
		i.events.LogOutput(event.Package, event.Test, event.Output)
		return ss.step, event.Output
	case ActionPass, ActionFail, ActionSkip:
		i.logTerminal(event)
		status := event.Status()
		if status == model.StatusFail {
			ps.failed = true
		}
		_ = ss.step.Log(status, "", nil)
		if start, end, ok := span(ss.start, event); ok {
			ss.step.SetTimes(start, end)
		}
	}
	return nil, ""
}

func (i *Ingester) handlePackage(ps *packageState, event TestEvent) {
	switch event.Action {
	case ActionOutput:
		line := strings.TrimRight(event.Output, "\r\n")
		if !isFraming(line) && !isPackageSummary(line) {
			ps.output = append(ps.output, strings.TrimSpace(line))
		}
	case ActionFail:
		if ps.failed {
			return
		}
		// nothing inside the package failed, so the package itself did
		message := strings.Join(ps.output, "\n")
		if message == "" {
			message = "package failed"
		}
		test := i.container(ps).CreateTest(PackageTestName)
		_ = test.CreateStep(ps.name).Fail(message, nil)
		ps.failed = true
		i.events.LogFail(event.Package, "", event.Elapsed)
	}
}

// handleTest applies a top-level test event. Output events return the
// step the line belongs to.
func (i *Ingester) handleTest(ps *packageState, ts *testState, event TestEvent) *report.Step {
	switch event.Action {
	case ActionRun:
		i.events.LogRun(event.Package, event.Test)
	case ActionOutput:
		i.events.LogOutput(event.Package, event.Test, event.Output)
		if isFraming(event.Output) {
			return nil
		}
		if ts.main == nil {
			ts.main = ts.test.CreateStep(ts.test.Name())
		}
		return ts.main
	case ActionPass, ActionFail, ActionSkip:
		i.logTerminal(event)
		status := event.Status()
		if status == model.StatusFail {
			ps.failed = true
		}
		ts.test.Log(status)
		if ts.main != nil {
			_ = ts.main.Log(status, "", nil)
		}
		if start, end, ok := span(ts.start, event); ok {
			ts.test.SetTimes(start, end)
			if ts.main != nil {
				ts.main.SetTimes(start, end)
			}
		}
	}
	return nil
}

func (i *Ingester) logTerminal(event TestEvent) {
	switch event.Action {
	case ActionPass:
		i.events.LogPass(event.Package, event.Test, event.Elapsed)
	case ActionFail:
		i.events.LogFail(event.Package, event.Test, event.Elapsed)
	case ActionSkip:
		i.events.LogSkip(event.Package, event.Test)
	}
}

// output records an output line on step, attaching a screenshot when the
// line carries a screenshot marker.
func (i *Ingester) output(step *report.Step, output string) {
	line := strings.TrimSpace(output)
	if isFraming(line) {
		return
	}

	var shot *artifact.Screenshot
	if m := screenshotPattern.FindStringSubmatch(line); m != nil {
		var err error
		shot, err = artifact.FromFile(m[1], m[2])
		if err != nil {
			i.log.Warn("cannot attach screenshot", slog.String("path", m[1]), slog.Any("error", err))
			shot = nil
		}
	}

	if err := step.Write(line, shot, false); err != nil {
		i.log.Warn("cannot encode screenshot", slog.String("step", step.Description()), slog.Any("error", err))
		_ = step.Write(line, nil, false)
	}
}

// Finish sets the container timings from the observed event times. It
// must be called after every input has been read.
func (i *Ingester) Finish() {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, name := range i.order {
		ps := i.packages[name]
		if ps.container == nil || ps.start.IsZero() {
			continue
		}
		ps.container.SetTimes(ps.start, ps.end)
	}
}

func (i *Ingester) pkg(event TestEvent) *packageState {
	ps, ok := i.packages[event.Package]
	if !ok {
		ps = &packageState{
			name:  event.Package,
			tests: make(map[string]*testState),
		}
		i.packages[event.Package] = ps
		i.order = append(i.order, event.Package)
	}

	if t := event.Time; !t.IsZero() {
		if ps.start.IsZero() || t.Before(ps.start) {
			ps.start = t
		}
		if t.After(ps.end) {
			ps.end = t
		}
	}
	return ps
}

// container registers the package container on first use, so packages
// without tests leave no empty container behind.
func (i *Ingester) container(ps *packageState) *report.Container {
	if ps.container == nil {
		ps.container = i.report.CreateContainer(ps.name)
	}
	return ps.container
}

func (i *Ingester) test(ps *packageState, name string, at time.Time) *testState {
	ts, ok := ps.tests[name]
	if !ok {
		ts = &testState{
			test:  i.container(ps).CreateTest(name),
			start: at,
			steps: make(map[string]*stepState),
		}
		ps.tests[name] = ts
	}
	return ts
}

func (ts *testState) step(name string, at time.Time) *stepState {
	ss, ok := ts.steps[name]
	if !ok {
		ss = &stepState{
			step:  ts.test.CreateStep(name),
			start: at,
		}
		ts.steps[name] = ss
	}
	return ss
}

// span returns the recorded start and end of a finished event. The start
// falls back to the end minus the reported elapsed time.
func span(start time.Time, event TestEvent) (time.Time, time.Time, bool) {
	end := event.Time
	if end.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	if start.IsZero() || start.After(end) {
		start = end.Add(-event.ElapsedDuration())
	}
	return start, end, true
}

// isPackageSummary matches the per-package result lines of go test.
func isPackageSummary(line string) bool {
	return strings.HasPrefix(line, "ok  \t") ||
		strings.HasPrefix(line, "FAIL\t") ||
		strings.HasPrefix(line, "?   \t")
}
