package ingest

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/titpetric/verdict/model"
)

// Actions emitted by go test -json.
const (
	ActionStart  = "start"
	ActionRun    = "run"
	ActionPause  = "pause"
	ActionCont   = "cont"
	ActionPass   = "pass"
	ActionBench  = "bench"
	ActionFail   = "fail"
	ActionOutput = "output"
	ActionSkip   = "skip"
)

// TestEvent is a single line of go test -json output.
type TestEvent struct {
	Time    time.Time
	Action  string
	Package string
	Test    string
	Elapsed float64
	Output  string
}

func parseTestEvent(line []byte) (TestEvent, error) {
	var event TestEvent
	if err := json.Unmarshal(line, &event); err != nil {
		return event, err
	}
	return event, nil
}

// Status maps a terminal action to a status. Other actions map to
// model.StatusNone.
func (e TestEvent) Status() model.Status {
	switch e.Action {
	case ActionPass, ActionBench:
		return model.StatusPass
	case ActionFail:
		return model.StatusFail
	case ActionSkip:
		return model.StatusSkip
	}
	return model.StatusNone
}

// Split returns the top-level test name and the subtest path below it.
func (e TestEvent) Split() (string, string) {
	test, sub, _ := strings.Cut(e.Test, "/")
	return test, sub
}

// ElapsedDuration returns Elapsed as a duration.
func (e TestEvent) ElapsedDuration() time.Duration {
	return time.Duration(e.Elapsed * float64(time.Second))
}

// framing lines that go test prints around every test
var framingPrefixes = []string{
	"=== RUN",
	"=== PAUSE",
	"=== CONT",
	"=== NAME",
	"--- PASS",
	"--- FAIL",
	"--- SKIP",
}

func isFraming(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed == "PASS" || trimmed == "FAIL" {
		return true
	}
	for _, prefix := range framingPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
