package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titpetric/verdict/model"
	"github.com/titpetric/verdict/report"
)

const sampleOutput = `{"Time":"2025-09-23T10:00:00Z","Action":"start","Package":"example.com/app"}
{"Time":"2025-09-23T10:00:00Z","Action":"run","Package":"example.com/app","Test":"TestLogin"}
{"Time":"2025-09-23T10:00:00Z","Action":"output","Package":"example.com/app","Test":"TestLogin","Output":"=== RUN   TestLogin\n"}
{"Time":"2025-09-23T10:00:00Z","Action":"output","Package":"example.com/app","Test":"TestLogin","Output":"    login_test.go:10: opening page\n"}
{"Time":"2025-09-23T10:00:00Z","Action":"run","Package":"example.com/app","Test":"TestLogin/valid"}
{"Time":"2025-09-23T10:00:00Z","Action":"output","Package":"example.com/app","Test":"TestLogin/valid","Output":"    login_test.go:20: user accepted\n"}
{"Time":"2025-09-23T10:00:01Z","Action":"pass","Package":"example.com/app","Test":"TestLogin/valid","Elapsed":1}
{"Time":"2025-09-23T10:00:01Z","Action":"run","Package":"example.com/app","Test":"TestLogin/invalid"}
{"Time":"2025-09-23T10:00:02Z","Action":"skip","Package":"example.com/app","Test":"TestLogin/invalid","Elapsed":1}
{"Time":"2025-09-23T10:00:02Z","Action":"output","Package":"example.com/app","Test":"TestLogin","Output":"--- PASS: TestLogin (2.00s)\n"}
{"Time":"2025-09-23T10:00:02Z","Action":"pass","Package":"example.com/app","Test":"TestLogin","Elapsed":2}
{"Time":"2025-09-23T10:00:02Z","Action":"run","Package":"example.com/app","Test":"TestLogout"}
{"Time":"2025-09-23T10:00:03Z","Action":"output","Package":"example.com/app","Test":"TestLogout","Output":"    logout_test.go:5: session still active\n"}
{"Time":"2025-09-23T10:00:03Z","Action":"fail","Package":"example.com/app","Test":"TestLogout","Elapsed":1}
not json at all
{"Time":"2025-09-23T10:00:03Z","Action":"output","Package":"example.com/app","Output":"FAIL\texample.com/app\t3.000s\n"}
{"Time":"2025-09-23T10:00:03Z","Action":"fail","Package":"example.com/app","Elapsed":3}
{"Time":"2025-09-23T10:00:00Z","Action":"start","Package":"example.com/empty"}
{"Time":"2025-09-23T10:00:00Z","Action":"output","Package":"example.com/empty","Output":"?   \texample.com/empty\t[no test files]\n"}
{"Time":"2025-09-23T10:00:00Z","Action":"skip","Package":"example.com/empty","Elapsed":0}
`

func newTestReport(t *testing.T) *report.Report {
	t.Helper()
	r, err := report.New(filepath.Join(t.TempDir(), "report.html"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRead(t *testing.T) {
	r := newTestReport(t)
	var events bytes.Buffer
	in := New(r, WithEventLogger(NewEventLoggerWriter(&events)))

	require.NoError(t, in.Read(context.Background(), strings.NewReader(sampleOutput)))
	in.Finish()

	assert.Equal(t, 1, in.Skipped())

	containers := r.Containers()
	require.Len(t, containers, 1, "packages without tests add no container")
	c := containers[0]
	assert.Equal(t, "example.com/app", c.Name())
	assert.Equal(t, model.StatusFail, c.Status())

	start := time.Date(2025, 9, 23, 10, 0, 0, 0, time.UTC)
	assert.True(t, start.Equal(c.Details().Start))
	assert.True(t, start.Add(3*time.Second).Equal(c.Details().End))

	tests := c.Tests()
	require.Len(t, tests, 2)

	login := tests[0]
	assert.Equal(t, "TestLogin", login.Name())
	assert.Equal(t, model.StatusSkip, login.Status())
	assert.Equal(t, 2*time.Second, login.Details().Elapsed())

	steps := login.Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, "TestLogin", steps[0].Description())
	assert.Equal(t, "valid", steps[1].Description())
	assert.Equal(t, "invalid", steps[2].Description())
	assert.Equal(t, model.StatusPass, steps[1].Status())
	assert.Equal(t, model.StatusSkip, steps[2].Status())

	mainLogs := steps[0].Logs()
	require.Len(t, mainLogs, 1)
	assert.Equal(t, "login_test.go:10: opening page", mainLogs[0].Message)

	validLogs := steps[1].Logs()
	require.Len(t, validLogs, 1)
	assert.Equal(t, "login_test.go:20: user accepted", validLogs[0].Message)

	logout := tests[1]
	assert.Equal(t, model.StatusFail, logout.Status())

	log := events.String()
	assert.Contains(t, log, "msg=RUN")
	assert.Contains(t, log, "msg=PASS")
	assert.Contains(t, log, "msg=FAIL")
	assert.Contains(t, log, "msg=SKIP")
	assert.Contains(t, log, "id=example.com/app::TestLogin/valid")
}

func TestRead_PackageFailure(t *testing.T) {
	r := newTestReport(t)
	in := New(r)

	input := `{"Action":"output","Package":"example.com/broken","Output":"# example.com/broken\n"}
{"Action":"output","Package":"example.com/broken","Output":"broken.go:3:1: syntax error\n"}
{"Action":"output","Package":"example.com/broken","Output":"FAIL\texample.com/broken [build failed]\n"}
{"Action":"fail","Package":"example.com/broken"}
`
	require.NoError(t, in.Read(context.Background(), strings.NewReader(input)))

	containers := r.Containers()
	require.Len(t, containers, 1)
	tests := containers[0].Tests()
	require.Len(t, tests, 1)
	assert.Equal(t, PackageTestName, tests[0].Name())
	assert.Equal(t, model.StatusFail, tests[0].Status())

	steps := tests[0].Steps()
	require.Len(t, steps, 1)
	logs := steps[0].Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, "# example.com/broken\nbroken.go:3:1: syntax error", logs[0].Message)
}

func TestRead_Screenshot(t *testing.T) {
	dir := t.TempDir()
	shotPath := filepath.Join(dir, "home.png")
	require.NoError(t, os.WriteFile(shotPath, []byte("fake image bytes"), 0o644))

	r := newTestReport(t)
	in := New(r)

	lines := []TestEvent{
		{Action: ActionRun, Package: "ui", Test: "TestHome"},
		{Action: ActionOutput, Package: "ui", Test: "TestHome", Output: "    home_test.go:9: screenshot: " + shotPath + " Home page\n"},
		{Action: ActionOutput, Package: "ui", Test: "TestHome", Output: "    home_test.go:10: screenshot: " + filepath.Join(dir, "missing.png") + "\n"},
		{Action: ActionPass, Package: "ui", Test: "TestHome"},
	}
	var input bytes.Buffer
	enc := json.NewEncoder(&input)
	for _, line := range lines {
		require.NoError(t, enc.Encode(line))
	}

	require.NoError(t, in.Read(context.Background(), &input))

	steps := r.Containers()[0].Tests()[0].Steps()
	require.Len(t, steps, 1)

	logs := steps[0].Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, 1, logs[0].ScreenshotID)
	assert.Equal(t, "Home page", logs[0].ScreenshotTitle)
	assert.Zero(t, logs[1].ScreenshotID, "missing files are logged without a screenshot")
}

func TestHandle_ConcurrentScreenshots(t *testing.T) {
	dir := t.TempDir()
	shotPath := filepath.Join(dir, "shot.png")
	require.NoError(t, os.WriteFile(shotPath, []byte("fake image bytes"), 0o644))

	r := newTestReport(t)
	in := New(r)

	const packages, shots = 8, 10

	var wg sync.WaitGroup
	for p := range packages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pkg := fmt.Sprintf("pkg%d", p)
			in.Handle(TestEvent{Action: ActionRun, Package: pkg, Test: "TestShots"})
			for n := range shots {
				in.Handle(TestEvent{
					Action:  ActionOutput,
					Package: pkg,
					Test:    "TestShots/capture",
					Output:  fmt.Sprintf("screenshot: %s frame %d\n", shotPath, n),
				})
			}
			in.Handle(TestEvent{Action: ActionPass, Package: pkg, Test: "TestShots"})
		}()
	}
	wg.Wait()
	in.Finish()

	seen := map[int]bool{}
	containers := r.Containers()
	require.Len(t, containers, packages)
	for _, c := range containers {
		steps := c.Tests()[0].Steps()
		require.Len(t, steps, 1)
		logs := steps[0].Logs()
		require.Len(t, logs, shots)
		for n, entry := range logs {
			assert.Equal(t, fmt.Sprintf("frame %d", n), entry.ScreenshotTitle)
			seen[entry.ScreenshotID] = true
		}
	}
	assert.Len(t, seen, packages*shots)
	for id := 1; id <= packages*shots; id++ {
		assert.True(t, seen[id], "screenshot id %d", id)
	}
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, pkg := range []string{"a", "b", "c"} {
		path := filepath.Join(dir, pkg+".json")
		content := `{"Action":"run","Package":"` + pkg + `","Test":"TestX"}
{"Action":"pass","Package":"` + pkg + `","Test":"TestX"}
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths = append(paths, path)
	}

	r := newTestReport(t)
	require.NoError(t, New(r).ReadFiles(t.Context(), paths))

	containers := r.Containers()
	require.Len(t, containers, 3)
	for _, c := range containers {
		assert.Equal(t, model.StatusPass, c.Status())
	}
}

func TestReadFiles_Missing(t *testing.T) {
	r := newTestReport(t)
	err := New(r).ReadFiles(t.Context(), []string{filepath.Join(t.TempDir(), "nope.json")})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPath)
}

func TestRead_Canceled(t *testing.T) {
	r := newTestReport(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(r).Read(ctx, strings.NewReader(sampleOutput))
	assert.ErrorIs(t, err, context.Canceled)
}
