// Package menu contains the data structures that describe a documentation
// navigation menu: a root with an ordered list of nodes, each node having a
// label, a relative locator and optional children.
package menu

import (
	"github.com/pkg/errors"
)

const (
	// PathSeparator separator for text paths in log and error messages
	PathSeparator = "/"
	// MaxDepth deepest nesting level accepted by Validate
	MaxDepth = 64
)

// ErrSkip returned from a WalkFunc skips the children of the current node
var ErrSkip = errors.New("skip children")

type (
	// Menu root of a navigation tree - has no label and no locator of its own
	Menu struct {
		Children []*Node `json:"children" yaml:"children"`
	}
	// Node one entry in the navigation tree
	Node struct {
		Text     string  `json:"text" yaml:"text"`
		URL      string  `json:"url" yaml:"url"`
		Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
	}
	// WalkFunc is called for every node with its ancestors (root-first) and its
	// depth, top level nodes have depth 0
	WalkFunc func(node *Node, ancestors []*Node, depth int) error
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// New menu with the given top level nodes
func New(children ...*Node) *Menu {
	return &Menu{Children: children}
}

// NewNode node constructor
func NewNode(text, url string, children ...*Node) *Node {
	return &Node{
		Text:     text,
		URL:      url,
		Children: children,
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Walk visits all nodes depth-first in document order
func (m *Menu) Walk(fn WalkFunc) error {
	if m == nil {
		return nil
	}
	return walk(m.Children, nil, 0, fn)
}

// Find a node by its text path from the root, nil if there is none
func (m *Menu) Find(path ...string) *Node {
	if m == nil || len(path) == 0 {
		return nil
	}
	nodes := m.Children
	var found *Node
	for _, text := range path {
		found = nil
		for _, n := range nodes {
			if n.Text == text {
				found = n
				break
			}
		}
		if found == nil {
			return nil
		}
		nodes = found.Children
	}
	return found
}

// Count number of nodes in the menu
func (m *Menu) Count() int {
	count := 0
	_ = m.Walk(func(*Node, []*Node, int) error {
		count++
		return nil
	})
	return count
}

// Clone deep copy of the menu
func (m *Menu) Clone() *Menu {
	if m == nil {
		return nil
	}
	return &Menu{Children: cloneNodes(m.Children)}
}

// IsLeaf a node without children
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Locator parsed url of the node
func (n *Node) Locator() (Locator, error) {
	return ParseLocator(n.URL)
}

// Clone deep copy of the node and its subtree
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	return &Node{
		Text:     n.Text,
		URL:      n.URL,
		Children: cloneNodes(n.Children),
	}
}

// Shallow copy of the node without its children, used for breadcrumbs
func (n *Node) Shallow() *Node {
	return &Node{Text: n.Text, URL: n.URL}
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func walk(nodes []*Node, ancestors []*Node, depth int, fn WalkFunc) error {
	for _, n := range nodes {
		err := fn(n, ancestors, depth)
		if errors.Is(err, ErrSkip) {
			continue
		} else if err != nil {
			return err
		}
		if len(n.Children) > 0 {
			// full slice expression: siblings must not share a backing array
			if err := walk(n.Children, append(ancestors[:len(ancestors):len(ancestors)], n), depth+1, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func cloneNodes(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	ret := make([]*Node, len(nodes))
	for i, n := range nodes {
		ret[i] = n.Clone()
	}
	return ret
}
