package eventlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/titpetric/verdict/model"
	"github.com/titpetric/verdict/report"
)

func newSnapshot(t *testing.T) *report.Snapshot {
	t.Helper()

	r, err := report.New(filepath.Join(t.TempDir(), "report.html"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	api := r.CreateContainer("api", "smoke")
	login := api.CreateTest("login")
	_, err = login.PassStep("open page", nil)
	require.NoError(t, err)
	step, err := login.AddStep(model.StatusPass, model.KeywordThen, "user is greeted", nil)
	require.NoError(t, err)
	require.NoError(t, step.Write("hello", nil, true))

	logout := api.CreateTest("logout")
	broken := logout.CreateStep("click logout")
	require.NoError(t, broken.Fail("session still active", nil))

	r.CreateContainer("ui").CreateTest("theme").Skip()

	return r.Snapshot()
}

func TestNewLogger_NilWhenEmpty(t *testing.T) {
	logger := NewLogger("", "report.html", nil, false)
	assert.Nil(t, logger)
}

func TestNewLogger_CreatesLogger(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "run.yml"), "report.html", []string{"a.json"}, false)
	require.NotNil(t, logger)
	assert.NotEmpty(t, logger.RunID())
	assert.Len(t, logger.RunID(), 26)
	assert.Equal(t, "report.html", logger.metadata.Report)
	assert.Equal(t, []string{"a.json"}, logger.metadata.Inputs)
}

func TestLogger_LogTest(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "run.yml"), "", nil, false)
	require.NotNil(t, logger)

	logger.LogTest(ResultPass, "api::login", "login", 0.5, 0.1, 2, "ignored for passing tests")
	logger.LogTest(ResultFail, "api::logout", "logout", 1.0, 0.15, 1, "session still active")

	events := logger.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "api::login", events[0].ID)
	assert.Equal(t, ResultPass, events[0].Result)
	assert.Equal(t, 0.5, events[0].Start)
	assert.Equal(t, 2, events[0].Steps)
	assert.Empty(t, events[0].Error)

	assert.Equal(t, ResultFail, events[1].Result)
	assert.Equal(t, 0.15, events[1].Duration)
	assert.Equal(t, "session still active", events[1].Error)
}

func TestLogger_NilSafe(t *testing.T) {
	var logger *Logger

	logger.LogTest(ResultPass, "id", "name", 0, 1, 0, "")
	logger.Record(nil)
	assert.Nil(t, logger.Events())
	assert.Equal(t, "", logger.RunID())
	assert.NoError(t, logger.Write(nil, nil))
	assert.NoError(t, logger.WriteSnapshot(nil))
}

func TestLogger_Record(t *testing.T) {
	snap := newSnapshot(t)
	logger := NewLogger(filepath.Join(t.TempDir(), "run.yml"), "", nil, false)
	require.NotNil(t, logger)

	logger.Record(snap)

	events := logger.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "api::login", events[0].ID)
	assert.Equal(t, 2, events[0].Steps)
	assert.Equal(t, "api::logout", events[1].ID)
	assert.Equal(t, ResultFail, events[1].Result)
	assert.Equal(t, "session still active", events[1].Error)
	assert.Equal(t, "ui::theme", events[2].ID)
	assert.Equal(t, ResultSkipped, events[2].Result)
	assert.Equal(t, model.DefaultExecutor, logger.metadata.Meta.Executor)
}

func TestLogger_WriteSnapshot(t *testing.T) {
	snap := newSnapshot(t)
	path := filepath.Join(t.TempDir(), "run.yml")

	logger := NewLogger(path, "report.html", nil, false)
	require.NotNil(t, logger)
	require.NoError(t, logger.WriteSnapshot(snap))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var log Log
	require.NoError(t, yaml.Unmarshal(data, &log))

	assert.Equal(t, logger.RunID(), log.Metadata.RunID)
	assert.Equal(t, "report.html", log.Metadata.Report)
	assert.Equal(t, KindReport, log.State.Kind)
	assert.Len(t, log.State.Children, 2)
	assert.Len(t, log.Events, 3)
	require.NotNil(t, log.Summary)
	assert.Equal(t, ResultFail, log.Summary.Result)
	assert.Equal(t, model.Counter{Total: 3, Passed: 1, Failed: 1, Skipped: 1}, log.Summary.Tests)
	assert.Equal(t, model.Counter{Total: 2, Failed: 1, Skipped: 1}, log.Summary.Containers)
}

func TestLogger_WriteError(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "missing", "dir", "run.yml"), "", nil, false)
	require.NotNil(t, logger)

	err := logger.Write(nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPath)
}

func TestLogger_DebugGoroutineID(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "run.yml"), "", nil, true)
	require.NotNil(t, logger)

	logger.LogTest(ResultPass, "c::t", "t", 0.1, 0.1, 0, "")

	events := logger.Events()
	require.Len(t, events, 1)
	assert.Greater(t, events[0].GoroutineID, uint64(0))
}

func TestLogger_NoGoroutineIDWithoutDebug(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "run.yml"), "", nil, false)
	require.NotNil(t, logger)

	logger.LogTest(ResultPass, "c::t", "t", 0.1, 0.1, 0, "")

	events := logger.Events()
	require.Len(t, events, 1)
	assert.Equal(t, uint64(0), events[0].GoroutineID)
}

func TestWrite_SortsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yml")
	logger := NewLogger(path, "", nil, false)
	require.NotNil(t, logger)

	logger.LogTest(ResultPass, "b::late", "late", 2, 0.1, 0, "")
	logger.LogTest(ResultPass, "b::early", "early", 1, 0.1, 0, "")
	logger.LogTest(ResultPass, "a::early", "early", 1, 0.1, 0, "")
	require.NoError(t, logger.Write(nil, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var log Log
	require.NoError(t, yaml.Unmarshal(data, &log))
	require.Len(t, log.Events, 3)
	assert.Equal(t, "a::early", log.Events[0].ID)
	assert.Equal(t, "b::early", log.Events[1].ID)
	assert.Equal(t, "b::late", log.Events[2].ID)

	assert.Equal(t, "b::late", logger.Events()[0].ID, "recording order is kept in memory")
}

func TestGetGoroutineID(t *testing.T) {
	id := getGoroutineID()
	assert.Greater(t, id, uint64(0))
}
