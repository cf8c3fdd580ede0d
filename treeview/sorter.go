package treeview

import (
	"slices"

	"github.com/titpetric/verdict/model"
)

// sortChildrenByStatus reorders children so failures appear first.
// Order: Failed, Skipped, Passed, Pending. The sort is stable, so nodes
// with the same status keep their recorded order.
func sortChildrenByStatus(children []*Node) []*Node {
	sorted := slices.Clone(children)
	slices.SortStableFunc(sorted, func(a, b *Node) int {
		return statusPriority(b.Status) - statusPriority(a.Status)
	})
	return sorted
}

// statusPriority returns a priority number for sorting (higher = comes first)
func statusPriority(status model.Status) int {
	switch status {
	case model.StatusFail:
		return 3
	case model.StatusSkip:
		return 2
	case model.StatusPass:
		return 1
	default:
		return 0
	}
}
