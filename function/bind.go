package function

import (
	"slices"

	"github.com/ardnew/formkit/conf"
)

type binding struct {
	name string
	fn   Function
}

// boundValues overlays the SET results of a BIND on the caller's values.
type boundValues struct {
	set   map[string]string
	outer Values
}

func (b boundValues) Lookup(name string) (string, bool) {
	if s, ok := b.set[name]; ok {
		return s, true
	}

	if b.outer == nil {
		return "", false
	}

	return b.outer.Lookup(name)
}

// BIND(FUNCTION "name" SET("param" f)...) evaluates a library function, or an
// inline FUNCTION(f), with some of its parameters bound to other functions.
// A SET value that is a bare string renames the parameter.
func buildBind(c *compiler, n *conf.Node) (Function, error) {
	var (
		inner Function
		binds []binding
	)

	for _, child := range n.All() {
		switch {
		case isClause(child, "FUNCTION"):
			if inner != nil {
				return nil, c.errorf(n, "BIND with more than one FUNCTION")
			}

			f, err := c.bindTarget(n, child)
			if err != nil {
				return nil, err
			}

			inner = f

		case isClause(child, "SET"):
			b, err := c.binding(n, child)
			if err != nil {
				return nil, err
			}

			binds = append(binds, b)

		default:
			return nil, c.errorf(n, "unexpected %q in BIND", child.Name())
		}
	}

	if inner == nil {
		return nil, c.errorf(n, "BIND without FUNCTION")
	}

	args := []Function{inner}
	bound := make([]string, 0, len(binds))

	for _, b := range binds {
		args = append(args, b.fn)
		bound = append(bound, b.name)
	}

	f := &fn{kind: KindBind, args: args}

	for _, p := range inner.Parameters() {
		if !slices.Contains(bound, p) {
			f.params = append(f.params, p)
		}
	}

	for _, a := range args {
		if a != inner {
			f.params = union(f.params, a.Parameters())
		}

		f.dialogs = union(f.dialogs, a.DialogRefs())
	}

	f.eval = func(v Values) Result {
		set := make(map[string]string, len(binds))

		for _, b := range binds {
			s, ok := b.fn.Eval(v).Value()
			if !ok {
				return Fail()
			}

			set[b.name] = s
		}

		return inner.Eval(boundValues{set: set, outer: v})
	}

	return f, nil
}

func (c *compiler) bindTarget(n, clause *conf.Node) (Function, error) {
	if clause.Len() == 1 {
		name, _ := clause.First()
		if name.IsLeaf() {
			if c.lib == nil {
				return nil, c.errorf(n, "function %q referenced without a library", name.Name())
			}

			f, ok := c.lib.Get(name.Name())
			if !ok {
				return nil, c.errorf(n, "undefined function %q", name.Name())
			}

			return f, nil
		}
	}

	return c.join(clause)
}

func (c *compiler) binding(n, clause *conf.Node) (binding, error) {
	if clause.Len() < 2 {
		return binding{}, c.errorf(n, "SET requires a name and a value")
	}

	name, _ := clause.First()
	if !name.IsLeaf() {
		return binding{}, c.errorf(n, "SET name must be a string")
	}

	if clause.Len() == 2 {
		val, _ := clause.Last()
		if val.IsLeaf() {
			return binding{name: name.Name(), fn: Value(val.Name())}, nil
		}
	}

	var args []Function

	for i, child := range clause.All() {
		if i == 0 {
			continue
		}

		f, err := c.compile(child)
		if err != nil {
			return binding{}, err
		}

		args = append(args, f)
	}

	f := args[0]
	if len(args) > 1 {
		f = newCat(args)
	}

	return binding{name: name.Name(), fn: f}, nil
}
