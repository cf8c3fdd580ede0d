// Package treeview renders a report as a colored console tree with
// summary tables.
package treeview

import (
	"github.com/titpetric/verdict/model"
)

// Kind is the hierarchy level of a node.
type Kind int

// Node kinds.
const (
	KindReport Kind = iota
	KindContainer
	KindTest
	KindStep
)

// Node represents a node in the tree (container, test or step).
type Node struct {
	Name       string
	Kind       Kind
	Status     model.Status
	Duration   string
	Keyword    model.Keyword
	Screenshot string
	Children   []*Node
}

// NewNode creates a new tree node.
func NewNode(name string, kind Kind, status model.Status) *Node {
	return &Node{
		Name:     name,
		Kind:     kind,
		Status:   status,
		Children: make([]*Node, 0),
	}
}

// AddChild adds a child node.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// HasChildren returns true or false if the node has children.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Label returns the node name prefixed with its Gherkin keyword.
func (n *Node) Label() string {
	if n.Keyword == model.KeywordNone {
		return n.Name
	}
	return n.Keyword.String() + " " + n.Name
}
