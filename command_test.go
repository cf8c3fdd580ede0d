package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEvents = `{"Time":"2026-10-18T10:00:00Z","Action":"start","Package":"example.com/app"}
{"Time":"2026-10-18T10:00:00Z","Action":"run","Package":"example.com/app","Test":"TestLogin"}
{"Time":"2026-10-18T10:00:00Z","Action":"output","Package":"example.com/app","Test":"TestLogin","Output":"=== RUN   TestLogin\n"}
{"Time":"2026-10-18T10:00:01Z","Action":"pass","Package":"example.com/app","Test":"TestLogin","Elapsed":1}
{"Time":"2026-10-18T10:00:01Z","Action":"run","Package":"example.com/app","Test":"TestLogout"}
{"Time":"2026-10-18T10:00:01Z","Action":"output","Package":"example.com/app","Test":"TestLogout","Output":"    app_test.go:12: session still active\n"}
{"Time":"2026-10-18T10:00:02Z","Action":"fail","Package":"example.com/app","Test":"TestLogout","Elapsed":1}
{"Time":"2026-10-18T10:00:02Z","Action":"fail","Package":"example.com/app","Elapsed":2}
`

// inTempDir changes into a fresh directory so config discovery finds nothing.
func inTempDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})
	return dir
}

func writeEvents(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "events.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleEvents), 0o644))
	return path
}

func TestRun_WritesReportAndLogs(t *testing.T) {
	dir := inTempDir(t)
	input := writeEvents(t, dir)

	opts := &Options{
		Output:   filepath.Join(dir, "out", "report.html"),
		Log:      filepath.Join(dir, "run.yml"),
		EventLog: filepath.Join(dir, "events.log"),
		Metrics:  filepath.Join(dir, "verdict.prom"),
	}

	var out bytes.Buffer
	err := Run(t.Context(), opts, []string{input}, &out)
	require.NoError(t, err)

	html, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	assert.Contains(t, string(html), "TestLogout")
	assert.True(t, strings.HasSuffix(string(html), "</html>\n"))

	runLog, err := os.ReadFile(opts.Log)
	require.NoError(t, err)
	assert.Contains(t, string(runLog), "TestLogin")

	events, err := os.ReadFile(opts.EventLog)
	require.NoError(t, err)
	assert.Contains(t, string(events), "FAIL")

	assert.FileExists(t, opts.Metrics)

	console := out.String()
	assert.Contains(t, console, "TestLogout")
	assert.Contains(t, console, opts.Output)
}

func TestRun_Quiet(t *testing.T) {
	dir := inTempDir(t)
	input := writeEvents(t, dir)

	var out bytes.Buffer
	err := Run(t.Context(), &Options{Output: "report.html", Quiet: true}, []string{input}, &out)
	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.FileExists(t, filepath.Join(dir, "report.html"))
}

func TestRun_GateFails(t *testing.T) {
	dir := inTempDir(t)
	input := writeEvents(t, dir)

	opts := &Options{Output: "report.html", FailOn: "failed_tests > 0", Quiet: true}
	err := Run(t.Context(), opts, []string{input}, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGateFailed)
	assert.Contains(t, err.Error(), "failed_tests > 0")

	// The report is still written when the gate fails.
	assert.FileExists(t, filepath.Join(dir, "report.html"))
}

func TestRun_GatePasses(t *testing.T) {
	dir := inTempDir(t)
	input := writeEvents(t, dir)

	opts := &Options{Output: "report.html", FailOn: "failed_tests > 5", Quiet: true}
	require.NoError(t, Run(t.Context(), opts, []string{input}, &bytes.Buffer{}))
}

func TestRun_ConfigGate(t *testing.T) {
	dir := inTempDir(t)
	input := writeEvents(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".verdict.yml"), []byte("heading: Nightly\ngate: result == \"fail\"\n"), 0o644))

	err := Run(t.Context(), &Options{Output: "report.html", Quiet: true}, []string{input}, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrGateFailed)

	html, err := os.ReadFile(filepath.Join(dir, "report.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Nightly")
}

func TestRun_InvalidGate(t *testing.T) {
	dir := inTempDir(t)
	input := writeEvents(t, dir)

	err := Run(t.Context(), &Options{Output: "report.html", FailOn: "failed_tests >", Quiet: true}, []string{input}, &bytes.Buffer{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGateFailed)
	assert.NoFileExists(t, filepath.Join(dir, "report.html"))
}

func TestRun_InvalidPublishTarget(t *testing.T) {
	dir := inTempDir(t)
	input := writeEvents(t, dir)

	err := Run(t.Context(), &Options{Output: "report.html", Publish: "ftp://bucket", Quiet: true}, []string{input}, &bytes.Buffer{})
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "report.html"))
}

func TestRun_MissingInput(t *testing.T) {
	dir := inTempDir(t)

	err := Run(t.Context(), &Options{Output: "report.html", Quiet: true}, []string{filepath.Join(dir, "missing.json")}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestCommand_Version(t *testing.T) {
	inTempDir(t)

	cmd := NewCommand()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cmd.Bind(fs)

	err := fs.Parse([]string{"-v"})
	require.NoError(t, err)

	err = cmd.Run(t.Context(), fs.Args())
	require.NoError(t, err)
}

func TestPrintVersionInfo(t *testing.T) {
	var buf bytes.Buffer
	printVersionInfo(&buf)
	assert.Contains(t, buf.String(), "verdict")
	assert.Contains(t, buf.String(), "Version:     "+Version)
}
