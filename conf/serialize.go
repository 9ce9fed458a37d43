package conf

import (
	"strings"
)

// SerializeOption configures [Node.Serialize].
type SerializeOption func(*serializer)

// EscapeAll escapes every rune that is not a letter or digit.
func EscapeAll() SerializeOption {
	return func(s *serializer) { s.all = true }
}

// ChildrenOnly writes the children of the node without the node itself.
func ChildrenOnly() SerializeOption {
	return func(s *serializer) { s.childrenOnly = true }
}

// Quote sets the string delimiter, which must be ' or ".
func Quote(r rune) SerializeOption {
	return func(s *serializer) {
		if r == '\'' || r == '"' {
			s.quote = string(r)
		}
	}
}

const indentUnit = "  "

type serializer struct {
	sb           strings.Builder
	quote        string
	all          bool
	childrenOnly bool
}

// Serialize returns ConfigTree text that parses back to an equivalent tree.
//
// Nodes whose children are all leaves, or all KEY "value" pairs, are written
// on one line. Other nodes put each child on its own indented line. Interior
// nodes whose names are not valid keys are written as anonymous nodes.
func (n *Node) Serialize(opts ...SerializeOption) string {
	s := &serializer{quote: `"`}
	for _, opt := range opts {
		opt(s)
	}

	if !s.childrenOnly {
		s.node(n, 0)

		return s.sb.String()
	}

	for i, c := range n.children {
		if i > 0 {
			s.sb.WriteByte('\n')
		}

		s.node(c, 0)
	}

	return s.sb.String()
}

func (s *serializer) str(v string) {
	s.sb.WriteString(s.quote)
	s.sb.WriteString(strings.ReplaceAll(Escape(v, s.all), s.quote, s.quote+s.quote))
	s.sb.WriteString(s.quote)
}

func (s *serializer) node(n *Node, depth int) {
	if n.IsLeaf() {
		s.str(n.name)

		return
	}

	if IsKey(n.name) {
		s.sb.WriteString(n.name)

		if len(n.children) == 1 && n.children[0].IsLeaf() {
			s.sb.WriteByte(' ')
			s.str(n.children[0].name)

			return
		}
	}

	s.sb.WriteByte('(')

	if flat(n) {
		for i, c := range n.children {
			if i > 0 {
				s.sb.WriteByte(' ')
			}

			s.node(c, depth+1)
		}

		s.sb.WriteByte(')')

		return
	}

	inner := strings.Repeat(indentUnit, depth+1)

	for _, c := range n.children {
		s.sb.WriteByte('\n')
		s.sb.WriteString(inner)
		s.node(c, depth+1)
	}

	s.sb.WriteByte('\n')
	s.sb.WriteString(strings.Repeat(indentUnit, depth))
	s.sb.WriteByte(')')
}

// flat reports whether the children of n are all leaves (a value list) or all
// KEY "value" pairs (a key/value list).
func flat(n *Node) bool {
	leaves, pairs := true, true

	for _, c := range n.children {
		if !c.IsLeaf() {
			leaves = false
		}

		if len(c.children) != 1 || !c.children[0].IsLeaf() || !IsKey(c.name) {
			pairs = false
		}

		if !leaves && !pairs {
			return false
		}
	}

	return true
}
