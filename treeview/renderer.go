package treeview

import (
	"strings"

	"github.com/titpetric/verdict/colors"
	"github.com/titpetric/verdict/model"
)

// Renderer handles rendering of tree nodes to strings with proper formatting
type Renderer struct {
	// SortByStatus lists failed children before the others.
	SortByStatus bool
	// ShowDuration appends the node duration.
	ShowDuration bool
}

// NewRenderer creates a new tree renderer
func NewRenderer() *Renderer {
	return &Renderer{
		SortByStatus: true,
		ShowDuration: true,
	}
}

// Render converts a tree to its string representation.
func (r *Renderer) Render(root *Node) string {
	var sb strings.Builder

	badge, name := statusBadge(root)
	sb.WriteString(name)
	if badge != "" {
		sb.WriteString(" " + badge)
	}
	r.writeDuration(&sb, root)
	sb.WriteString("\n")

	children := r.children(root)
	for i, child := range children {
		r.renderNode(&sb, child, "", i == len(children)-1)
	}
	return sb.String()
}

func (r *Renderer) children(node *Node) []*Node {
	if r.SortByStatus {
		return sortChildrenByStatus(node.Children)
	}
	return node.Children
}

func (r *Renderer) writeDuration(sb *strings.Builder, node *Node) {
	if r.ShowDuration && node.Duration != "" {
		sb.WriteString(" " + colors.Gray("("+node.Duration+")"))
	}
}

// renderNode renders a single node and its children.
func (r *Renderer) renderNode(sb *strings.Builder, node *Node, prefix string, isLast bool) {
	branch := "├─ "
	if isLast {
		branch = "└─ "
	}

	badge, label := statusBadge(node)

	sb.WriteString(prefix + branch + label)
	if badge != "" {
		sb.WriteString(" " + badge)
	}
	if node.Screenshot != "" {
		sb.WriteString(" " + colors.BrightCyan("["+node.Screenshot+"]"))
	}
	r.writeDuration(sb, node)
	sb.WriteString("\n")

	children := r.children(node)
	if len(children) == 0 {
		return
	}

	continuation := "│  "
	if isLast {
		continuation = "   "
	}
	for j, child := range children {
		r.renderNode(sb, child, prefix+continuation, j == len(children)-1)
	}
}

// statusBadge returns the colored status badge and label of a node.
func statusBadge(node *Node) (string, string) {
	label := node.Label()

	switch node.Status {
	case model.StatusPass:
		return colors.BrightGreen("✓"), colors.BrightGreen(label)
	case model.StatusFail:
		return colors.BrightRed("✗"), colors.BrightRed(label)
	case model.StatusSkip:
		return colors.BrightYellow("⊘"), colors.BrightYellow(label)
	}
	if node.HasChildren() {
		return "", colors.White(label)
	}
	return colors.Gray("●"), colors.White(label)
}

// CountLines returns the number of lines the tree will render
func CountLines(root *Node) int {
	count := 1
	for _, child := range root.Children {
		count += CountLines(child)
	}
	return count
}
