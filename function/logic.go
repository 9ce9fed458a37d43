package function

import (
	"github.com/ardnew/formkit/conf"
)

func newAnd(args []Function) Function {
	return newFn(KindAnd, args, func(v Values) Result {
		all := true

		for _, a := range args {
			r := a.Eval(v)
			if r.IsError() {
				return Fail()
			}

			if !isTrue(r) {
				all = false
			}
		}

		return boolResult(all)
	})
}

func buildAnd(c *compiler, n *conf.Node) (Function, error) {
	args, err := c.args(n)
	if err != nil {
		return nil, err
	}

	return newAnd(args), nil
}

// OR stops at the first true operand but never skips an error before it.
func buildOr(c *compiler, n *conf.Node) (Function, error) {
	args, err := c.args(n)
	if err != nil {
		return nil, err
	}

	return newFn(KindOr, args, func(v Values) Result {
		for _, a := range args {
			r := a.Eval(v)
			if r.IsError() {
				return Fail()
			}

			if isTrue(r) {
				return Ok("true")
			}
		}

		return Ok("false")
	}), nil
}

// NOT is true iff no operand is true.
func buildNot(c *compiler, n *conf.Node) (Function, error) {
	args, err := c.args(n)
	if err != nil {
		return nil, err
	}

	return newFn(KindNot, args, func(v Values) Result {
		none := true

		for _, a := range args {
			r := a.Eval(v)
			if r.IsError() {
				return Fail()
			}

			if isTrue(r) {
				none = false
			}
		}

		return boolResult(none)
	}), nil
}

func buildIf(c *compiler, n *conf.Node) (Function, error) {
	var (
		conds           []*conf.Node
		thenNode, elseN *conf.Node
	)

	for _, child := range n.All() {
		switch {
		case isClause(child, "THEN"):
			if thenNode != nil {
				return nil, c.errorf(n, "IF with more than one THEN")
			}

			thenNode = child

		case isClause(child, "ELSE"):
			if elseN != nil {
				return nil, c.errorf(n, "IF with more than one ELSE")
			}

			elseN = child

		default:
			conds = append(conds, child)
		}
	}

	if len(conds) != 1 {
		return nil, c.errorf(n, "IF requires exactly one condition, found %d", len(conds))
	}

	cond, err := c.compile(conds[0])
	if err != nil {
		return nil, err
	}

	branch := func(b *conf.Node) (Function, error) {
		if b == nil {
			return newCat(nil), nil
		}

		return c.compile(b)
	}

	thenF, err := branch(thenNode)
	if err != nil {
		return nil, err
	}

	elseF, err := branch(elseN)
	if err != nil {
		return nil, err
	}

	return newFn(KindIf, []Function{cond, thenF, elseF}, func(v Values) Result {
		r := cond.Eval(v)
		if r.IsError() {
			return Fail()
		}

		if isTrue(r) {
			return thenF.Eval(v)
		}

		return elseF.Eval(v)
	}), nil
}

func buildStrCmp(c *compiler, n *conf.Node) (Function, error) {
	args, err := c.args(n)
	if err != nil {
		return nil, err
	}

	if len(args) < 2 {
		return nil, c.errorf(n, "STRCMP requires at least two operands")
	}

	return newFn(KindStrCmp, args, func(v Values) Result {
		first, ok := args[0].Eval(v).Value()
		if !ok {
			return Fail()
		}

		equal := true

		for _, a := range args[1:] {
			s, ok := a.Eval(v).Value()
			if !ok {
				return Fail()
			}

			if s != first {
				equal = false
			}
		}

		return boolResult(equal)
	}), nil
}

// ISERROR and ISERRORSTRING are the only functions that turn the error result
// into a value.
func buildIsError(kind Kind) builder {
	return func(c *compiler, n *conf.Node) (Function, error) {
		if n.Len() == 0 {
			return nil, c.errorf(n, "%s requires an operand", kind)
		}

		arg, err := c.join(n)
		if err != nil {
			return nil, err
		}

		return newFn(kind, []Function{arg}, func(v Values) Result {
			s, ok := arg.Eval(v).Value()

			return boolResult(!ok || (kind == KindIsErrorString && s == LegacyErrorText))
		}), nil
	}
}
