package eventlog

import (
	"runtime"
	"time"

	"github.com/titpetric/verdict/model"
	"github.com/titpetric/verdict/report"
)

// Node kinds of the state tree.
const (
	KindReport    = "report"
	KindContainer = "container"
	KindTest      = "test"
	KindStep      = "step"
)

// statusToResult converts a status to a Result.
func statusToResult(status model.Status) Result {
	switch status {
	case model.StatusPass:
		return ResultPass
	case model.StatusFail:
		return ResultFail
	case model.StatusSkip:
		return ResultSkipped
	default:
		return ""
	}
}

func newStateNode(kind string, d model.Details, runStart time.Time) *StateNode {
	return &StateNode{
		Name:       d.Name,
		Kind:       kind,
		Status:     d.Status.Label(),
		Result:     statusToResult(d.Status),
		Categories: d.Categories,
		Start:      offset(runStart, d.Start),
		Duration:   d.Elapsed().Seconds(),
	}
}

// SnapshotToStateNode converts a report snapshot into a state tree rooted
// at the report.
func SnapshotToStateNode(snap *report.Snapshot) *StateNode {
	if snap == nil {
		return nil
	}

	root := &StateNode{
		Name:     snap.Heading,
		Kind:     KindReport,
		Status:   snap.Stats.Result().Label(),
		Result:   statusToResult(snap.Stats.Result()),
		Duration: snap.End.Sub(snap.Start).Seconds(),
	}

	if len(snap.Containers) > 0 {
		root.Children = make([]*StateNode, 0, len(snap.Containers))
	}
	for _, c := range snap.Containers {
		cn := newStateNode(KindContainer, c.Details, snap.Start)
		for _, t := range c.Tests {
			tn := newStateNode(KindTest, t.Details, snap.Start)
			for _, s := range t.Steps {
				sn := newStateNode(KindStep, s.Details, snap.Start)
				if s.Keyword != model.KeywordNone {
					sn.Keyword = s.Keyword.String()
				}
				sn.Screenshot = s.ScreenshotID
				sn.Logs = len(s.Logs)
				tn.Children = append(tn.Children, sn)
			}
			cn.Children = append(cn.Children, tn)
		}
		root.Children = append(root.Children, cn)
	}
	return root
}

// CountSteps counts leaf nodes by result in a StateNode tree.
func CountSteps(node *StateNode) (total, passed, failed, skipped int) {
	if node == nil {
		return
	}

	// leaves are the finest grained results recorded
	if len(node.Children) == 0 && node.Kind != KindReport {
		total++
		switch node.Result {
		case ResultPass:
			passed++
		case ResultFail:
			failed++
		case ResultSkipped:
			skipped++
		}
	}

	for _, child := range node.Children {
		t, p, f, s := CountSteps(child)
		total += t
		passed += p
		failed += f
		skipped += s
	}

	return
}

// RuntimeStats holds memory and goroutine statistics.
type RuntimeStats struct {
	MemoryAlloc uint64
	Goroutines  int
}

// CaptureRuntimeStats captures current memory allocation and goroutine count.
func CaptureRuntimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeStats{
		MemoryAlloc: m.Alloc,
		Goroutines:  runtime.NumGoroutine(),
	}
}

// NewRunSummary builds the summary section from a snapshot.
func NewRunSummary(snap *report.Snapshot, rt RuntimeStats) *RunSummary {
	if snap == nil {
		return nil
	}
	return &RunSummary{
		Duration:    snap.End.Sub(snap.Start).Seconds(),
		Summary:     snap.Stats.Summary,
		Containers:  snap.Stats.Containers,
		Tests:       snap.Stats.Tests,
		Steps:       snap.Stats.Steps,
		Result:      statusToResult(snap.Stats.Result()),
		MemoryAlloc: rt.MemoryAlloc,
		Goroutines:  rt.Goroutines,
	}
}

func offset(runStart, t time.Time) float64 {
	if t.Before(runStart) {
		return 0
	}
	return t.Sub(runStart).Seconds()
}
