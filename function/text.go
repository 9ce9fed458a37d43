package function

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/formkit/conf"
)

func newCat(args []Function) Function {
	return newFn(KindCat, args, func(v Values) Result {
		var sb strings.Builder

		for _, a := range args {
			s, ok := a.Eval(v).Value()
			if !ok {
				return Fail()
			}

			sb.WriteString(s)
		}

		return Ok(sb.String())
	})
}

func buildCat(c *compiler, n *conf.Node) (Function, error) {
	args, err := c.args(n)
	if err != nil {
		return nil, err
	}

	return newCat(args), nil
}

func buildValue(c *compiler, n *conf.Node) (Function, error) {
	name, err := n.First()
	if err != nil || n.Len() != 1 || !name.IsLeaf() {
		return nil, c.errorf(n, "VALUE requires exactly one name")
	}

	return Value(name.Name()), nil
}

func buildLength(c *compiler, n *conf.Node) (Function, error) {
	args, err := c.args(n)
	if err != nil {
		return nil, err
	}

	cat := newCat(args)

	return newFn(KindLength, args, func(v Values) Result {
		s, ok := cat.Eval(v).Value()
		if !ok {
			return Fail()
		}

		return Ok(strconv.Itoa(utf8.RuneCountInString(s)))
	}), nil
}

// SELECT returns the first non-empty operand. The first error ends the scan
// and yields the ONERROR clause, if any.
func buildSelect(c *compiler, n *conf.Node) (Function, error) {
	var (
		args    []Function
		onError Function
	)

	for _, child := range n.All() {
		if isClause(child, "ONERROR") {
			if onError != nil {
				return nil, c.errorf(n, "SELECT with more than one ONERROR")
			}

			f, err := c.join(child)
			if err != nil {
				return nil, err
			}

			onError = f

			continue
		}

		f, err := c.compile(child)
		if err != nil {
			return nil, err
		}

		args = append(args, f)
	}

	all := args
	if onError != nil {
		all = append(append([]Function(nil), args...), onError)
	}

	return newFn(KindSelect, all, func(v Values) Result {
		for _, a := range args {
			r := a.Eval(v)
			if r.IsError() {
				if onError != nil {
					return onError.Eval(v)
				}

				return Fail()
			}

			if s, _ := r.Value(); s != "" {
				return r
			}
		}

		return Ok("")
	}), nil
}

// regex compiles the pattern operand p of n, which is evaluated once without
// values.
func (c *compiler) regex(n, p *conf.Node, anchored bool) (*regexp.Regexp, error) {
	pattern, err := c.constant(p, n, "regular expression")
	if err != nil {
		return nil, err
	}

	if anchored {
		pattern = `^(?:` + pattern + `)$`
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, c.errorf(n, "invalid regular expression: %v", err)
	}

	return re, nil
}

func operands(c *compiler, n *conf.Node, want int) ([]*conf.Node, error) {
	if n.Len() != want {
		return nil, c.errorf(n, "%s requires %d operands, found %d",
			n.Name(), want, n.Len())
	}

	out := make([]*conf.Node, 0, want)
	for _, child := range n.All() {
		out = append(out, child)
	}

	return out, nil
}

// MATCH(input regex) reports whether the whole input matches.
func buildMatch(c *compiler, n *conf.Node) (Function, error) {
	ops, err := operands(c, n, 2)
	if err != nil {
		return nil, err
	}

	input, err := c.compile(ops[0])
	if err != nil {
		return nil, err
	}

	re, err := c.regex(n, ops[1], true)
	if err != nil {
		return nil, err
	}

	return newFn(KindMatch, []Function{input}, func(v Values) Result {
		s, ok := input.Eval(v).Value()
		if !ok {
			return Fail()
		}

		return boolResult(re.MatchString(s))
	}), nil
}

// REPLACE(input regex replacement) replaces every match. Groups are referenced
// as $1 in the replacement; \$ is a literal dollar sign.
func buildReplace(c *compiler, n *conf.Node) (Function, error) {
	ops, err := operands(c, n, 3)
	if err != nil {
		return nil, err
	}

	input, err := c.compile(ops[0])
	if err != nil {
		return nil, err
	}

	re, err := c.regex(n, ops[1], false)
	if err != nil {
		return nil, err
	}

	repl, err := c.compile(ops[2])
	if err != nil {
		return nil, err
	}

	return newFn(KindReplace, []Function{input, repl}, func(v Values) Result {
		s, ok := input.Eval(v).Value()
		if !ok {
			return Fail()
		}

		r, ok := repl.Eval(v).Value()
		if !ok {
			return Fail()
		}

		return Ok(re.ReplaceAllString(s, expandTemplate(r)))
	}), nil
}

// expandTemplate converts a replacement using $n group references and
// backslash escapes to the syntax of [regexp.Regexp.Expand].
func expandTemplate(r string) string {
	var sb strings.Builder

	for i := 0; i < len(r); i++ {
		switch c := r[i]; {
		case c == '\\' && i+1 < len(r):
			i++
			if r[i] == '$' {
				sb.WriteString("$$")
			} else {
				sb.WriteByte(r[i])
			}

		case c == '$':
			j := i + 1
			for j < len(r) && r[j] >= '0' && r[j] <= '9' {
				j++
			}

			if j == i+1 {
				sb.WriteString("$$")

				continue
			}

			sb.WriteString("${" + r[i+1:j] + "}")
			i = j - 1

		default:
			sb.WriteByte(c)
		}
	}

	return sb.String()
}

// SPLIT(input regex index) returns the index'th field of input split around
// matches of regex, or "" if there is no such field. Trailing empty fields are
// dropped.
func buildSplit(c *compiler, n *conf.Node) (Function, error) {
	ops, err := operands(c, n, 3)
	if err != nil {
		return nil, err
	}

	input, err := c.compile(ops[0])
	if err != nil {
		return nil, err
	}

	re, err := c.regex(n, ops[1], false)
	if err != nil {
		return nil, err
	}

	s, err := c.constant(ops[2], n, "SPLIT index")
	if err != nil {
		return nil, err
	}

	index, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || index < 0 {
		return nil, c.errorf(n, "SPLIT index %q is not a non-negative integer", s)
	}

	return newFn(KindSplit, []Function{input}, func(v Values) Result {
		s, ok := input.Eval(v).Value()
		if !ok {
			return Fail()
		}

		fields := re.Split(s, -1)
		for len(fields) > 1 && fields[len(fields)-1] == "" {
			fields = fields[:len(fields)-1]
		}

		if index >= len(fields) {
			return Ok("")
		}

		return Ok(fields[index])
	}), nil
}
