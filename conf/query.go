package conf

import (
	"log/slog"
	"math"

	"github.com/ardnew/formkit/pkg"
)

// QueryOption bounds the levels searched by a query. Level 1 holds the
// children of the queried node.
type QueryOption func(*levels)

type levels struct {
	min, max int
}

// MaxLevel stops the search after level n.
func MaxLevel(n int) QueryOption {
	return func(l *levels) { l.max = n }
}

// MinLevel ignores matches above level n.
func MinLevel(n int) QueryOption {
	return func(l *levels) { l.min = n }
}

func makeLevels(opts ...QueryOption) levels {
	l := levels{min: 1, max: math.MaxInt}
	for _, opt := range opts {
		opt(&l)
	}

	return l
}

// Get returns the shallowest descendants of n named name. A single match is
// returned directly; several matches are returned as the children of a
// [QueryResultsName] node. If nothing matches, the alias of name is tried
// before failing with [pkg.ErrNodeNotFound].
func (n *Node) Get(name string, opts ...QueryOption) (*Node, error) {
	return n.get(name, false, opts...)
}

// GetByChild is like [Node.Get] but returns the parents of the matches.
func (n *Node) GetByChild(name string, opts ...QueryOption) (*Node, error) {
	return n.get(name, true, opts...)
}

// Query is like [Node.Get] but always returns a [QueryResultsName] node,
// which has no children if nothing matched.
func (n *Node) Query(name string, opts ...QueryOption) *Node {
	return n.results(n.search(name, false, makeLevels(opts...)))
}

// QueryByChild is like [Node.Query] but returns the parents of the matches.
func (n *Node) QueryByChild(name string, opts ...QueryOption) *Node {
	return n.results(n.search(name, true, makeLevels(opts...)))
}

// QueryAll returns every descendant named name up to level maxLevel, or their
// parents if byParent is set. Unlike [Node.Query] it does not stop at the
// first level holding a match. A maxLevel <= 0 searches all levels.
func (n *Node) QueryAll(name string, maxLevel int, byParent bool) *Node {
	if maxLevel <= 0 {
		maxLevel = math.MaxInt
	}

	var out []*Node

	seen := map[*Node]bool{}
	collect := func(found []match) {
		for _, m := range found {
			r := m.node
			if byParent {
				r = m.parent
			}

			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}

	collect(n.scan(name, levels{min: 1, max: maxLevel}, true))

	if len(out) == 0 {
		if alias, ok := n.Aliases().Lookup(name); ok {
			collect(n.scan(alias, levels{min: 1, max: maxLevel}, true))
		}
	}

	return n.results(out)
}

func (n *Node) get(name string, byParent bool, opts ...QueryOption) (*Node, error) {
	found := n.search(name, byParent, makeLevels(opts...))

	switch len(found) {
	case 0:
		return nil, pkg.ErrNodeNotFound.With(
			slog.String("name", name),
			slog.String("parent", n.name),
		)
	case 1:
		return found[0], nil
	default:
		return n.results(found), nil
	}
}

// search returns the matches of the shallowest matching level, falling back
// to the alias of name.
func (n *Node) search(name string, byParent bool, l levels) []*Node {
	found := n.scan(name, l, false)
	if len(found) == 0 {
		if alias, ok := n.Aliases().Lookup(name); ok {
			found = n.scan(alias, l, false)
		}
	}

	out := make([]*Node, 0, len(found))
	seen := map[*Node]bool{}

	for _, m := range found {
		r := m.node
		if byParent {
			r = m.parent
		}

		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}

	return out
}

type match struct {
	node, parent *Node
}

// scan walks the descendants of n breadth-first. Unless all is set it stops
// after the first level in range that holds a match.
func (n *Node) scan(name string, l levels, all bool) []match {
	var found []match

	level := []match{}
	for _, c := range n.children {
		level = append(level, match{c, n})
	}

	for depth := 1; len(level) > 0 && depth <= l.max; depth++ {
		if depth >= l.min {
			for _, m := range level {
				if m.node.name == name {
					found = append(found, m)
				}
			}

			if len(found) > 0 && !all {
				return found
			}
		}

		var next []match

		for _, m := range level {
			for _, c := range m.node.children {
				next = append(next, match{c, m.node})
			}
		}

		level = next
	}

	return found
}

func (n *Node) results(nodes []*Node) *Node {
	return &Node{name: QueryResultsName, children: nodes, aliases: n.aliases}
}
