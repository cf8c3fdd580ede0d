package treeview

import (
	"github.com/titpetric/verdict/model"
	"github.com/titpetric/verdict/report"
)

// BuildOptions control which levels end up in the tree.
type BuildOptions struct {
	// Steps includes the steps of every test.
	Steps bool
	// FailedOnly drops passed and skipped tests.
	FailedOnly bool
}

// Build constructs a tree from a report snapshot. The default container
// is flattened so its tests hang directly off the root.
func Build(snap *report.Snapshot, opts BuildOptions) *Node {
	root := NewNode(snap.Heading, KindReport, snap.Stats.Result())
	root.Duration = snap.Duration

	for _, c := range snap.Containers {
		parent := root
		if !c.Default || len(snap.Containers) > 1 {
			parent = NewNode(c.Name, KindContainer, c.Status)
			parent.Duration = c.Duration
		}

		for _, t := range c.Tests {
			if opts.FailedOnly && t.Status != model.StatusFail {
				continue
			}
			parent.AddChild(buildTest(t, opts))
		}

		if parent != root && (parent.HasChildren() || !opts.FailedOnly) {
			root.AddChild(parent)
		}
	}
	return root
}

func buildTest(t report.TestSnapshot, opts BuildOptions) *Node {
	node := NewNode(t.Name, KindTest, t.Status)
	node.Duration = t.Duration
	if !opts.Steps {
		return node
	}

	for _, s := range t.Steps {
		step := NewNode(s.Name, KindStep, s.Status)
		step.Duration = s.Duration
		step.Keyword = s.Keyword
		if s.ScreenshotID != 0 {
			step.Screenshot = s.ScreenshotTitle
			if step.Screenshot == "" {
				step.Screenshot = "screenshot"
			}
		}
		node.AddChild(step)
	}
	return node
}
