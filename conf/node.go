package conf

import (
	"iter"
	"log/slog"
	"strings"

	"github.com/ardnew/formkit/pkg"
)

// QueryResultsName is the name of the synthetic node returned by queries
// that collect more than one match.
const QueryResultsName = "<query results>"

// Node is a node of a ConfigTree. A node without children is a leaf and its
// name is its value.
//
// A node exclusively owns its children, except for the children of a
// [QueryResultsName] node, which are views into the queried tree.
type Node struct {
	name     string
	children []*Node
	aliases  *Aliases
}

// NewNode returns a node with the given name and children.
func NewNode(name string, children ...*Node) *Node {
	return &Node{name: name, children: children}
}

// Leaf returns a node without children holding value.
func Leaf(value string) *Node {
	return &Node{name: value}
}

// Name returns the name of n, which for a leaf is its value.
func (n *Node) Name() string { return n.name }

// SetName renames n.
func (n *Node) SetName(name string) { n.name = name }

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// Len returns the number of children of n.
func (n *Node) Len() int { return len(n.children) }

// Add appends children to n and returns n.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c.aliases == nil {
			c.aliases = n.aliases
		}
	}

	n.children = append(n.children, children...)

	return n
}

// AddChild appends a new child named name to n and returns the child.
func (n *Node) AddChild(name string) *Node {
	c := &Node{name: name, aliases: n.aliases}
	n.children = append(n.children, c)

	return c
}

// Child returns the i'th child of n.
func (n *Node) Child(i int) (*Node, error) {
	if i < 0 || i >= len(n.children) {
		return nil, pkg.ErrNodeNotFound.With(
			slog.String("parent", n.name),
			slog.Int("index", i),
		)
	}

	return n.children[i], nil
}

// First returns the first child of n.
func (n *Node) First() (*Node, error) { return n.Child(0) }

// Last returns the last child of n.
func (n *Node) Last() (*Node, error) { return n.Child(len(n.children) - 1) }

// All returns an iterator over the children of n.
func (n *Node) All() iter.Seq2[int, *Node] {
	return func(yield func(int, *Node) bool) {
		for i, c := range n.children {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Aliases returns the alias table consulted by lookups on n.
func (n *Node) Aliases() *Aliases {
	if n.aliases == nil {
		return LegacyAliases
	}

	return n.aliases
}

// Copy returns a deep copy of n.
func (n *Node) Copy() *Node {
	type pair struct{ src, dst *Node }

	root := &Node{name: n.name, aliases: n.aliases}
	stack := []pair{{n, root}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(p.src.children) == 0 {
			continue
		}

		p.dst.children = make([]*Node, len(p.src.children))
		for i, c := range p.src.children {
			d := &Node{name: c.name, aliases: c.aliases}
			p.dst.children[i] = d
			stack = append(stack, pair{c, d})
		}
	}

	return root
}

// String returns the value of a leaf, or the depth-first concatenation of
// all descendant leaf values of an interior node.
func (n *Node) String() string {
	if n.IsLeaf() {
		return n.name
	}

	var sb strings.Builder

	for leaf := range n.leaves() {
		sb.WriteString(leaf.name)
	}

	return sb.String()
}

// leaves yields the descendant leaves of n in depth-first order.
func (n *Node) leaves() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		stack := []*Node{n}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if top.IsLeaf() {
				if top != n && !yield(top) {
					return
				}

				continue
			}

			for i := len(top.children) - 1; i >= 0; i-- {
				stack = append(stack, top.children[i])
			}
		}
	}
}
