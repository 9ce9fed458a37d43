package function

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v2"

	"github.com/ardnew/formkit/conf"
)

// Precision is the number of significant digits kept by arithmetic.
const Precision = 34

// decimalContext rounds half up to [Precision] digits. apd contexts are safe
// for concurrent use.
var decimalContext = func() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(Precision)
	ctx.Rounding = apd.RoundHalfUp

	return ctx
}()

// ParseDecimal parses s as an exact decimal. A ',' is accepted as decimal
// separator if s contains no '.'.
func ParseDecimal(s string) (*apd.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}

	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	d, _, err := apd.NewFromString(s)
	if err != nil || d.Form != apd.Finite {
		return nil, false
	}

	return d, true
}

// FormatDecimal writes d in plain notation without trailing fractional zeros,
// but with at least minScale fractional digits.
func FormatDecimal(d *apd.Decimal, minScale int) string {
	s := d.Text('f')
	if d.IsZero() {
		s = strings.TrimPrefix(s, "-")
	}

	whole, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")

	if len(frac) < minScale {
		frac += strings.Repeat("0", minScale-len(frac))
	}

	if frac == "" {
		return whole
	}

	return whole + "." + frac
}

// numbers evaluates args as decimals.
func numbers(args []Function, v Values) ([]*apd.Decimal, bool) {
	out := make([]*apd.Decimal, len(args))

	for i, a := range args {
		s, ok := a.Eval(v).Value()
		if !ok {
			return nil, false
		}

		d, ok := ParseDecimal(s)
		if !ok {
			return nil, false
		}

		out[i] = d
	}

	return out, true
}

type reducer func(d, x, y *apd.Decimal) (apd.Condition, error)

// fold combines the operands left to right with op, starting from init, or
// from the first operand if init is nil.
func fold(kind Kind, args []Function, init *apd.Decimal, op reducer) Function {
	return newFn(kind, args, func(v Values) Result {
		xs, ok := numbers(args, v)
		if !ok {
			return Fail()
		}

		acc := new(apd.Decimal)

		if init != nil {
			acc.Set(init)
		} else {
			acc.Set(xs[0])
			xs = xs[1:]
		}

		for _, x := range xs {
			if _, err := op(acc, acc, x); err != nil {
				return Fail()
			}
		}

		return Ok(FormatDecimal(acc, 0))
	})
}

func buildSum(c *compiler, n *conf.Node) (Function, error) {
	args, err := c.args(n)
	if err != nil {
		return nil, err
	}

	return fold(KindSum, args, apd.New(0, 0), decimalContext.Add), nil
}

func buildDiff(c *compiler, n *conf.Node) (Function, error) {
	args, err := c.args(n)
	if err != nil {
		return nil, err
	}

	if len(args) == 0 {
		return nil, c.errorf(n, "DIFF requires at least one operand")
	}

	return fold(KindDiff, args, nil, decimalContext.Sub), nil
}

func buildProduct(c *compiler, n *conf.Node) (Function, error) {
	args, err := c.args(n)
	if err != nil {
		return nil, err
	}

	if len(args) == 0 {
		return nil, c.errorf(n, "PRODUCT requires at least one operand")
	}

	return fold(KindProduct, args, nil, decimalContext.Mul), nil
}

// unary builds a function applying op to its single operand.
func unary(
	c *compiler,
	n *conf.Node,
	kind Kind,
	op func(x *apd.Decimal) (string, bool),
) (Function, error) {
	ops, err := operands(c, n, 1)
	if err != nil {
		return nil, err
	}

	arg, err := c.compile(ops[0])
	if err != nil {
		return nil, err
	}

	return newFn(kind, []Function{arg}, func(v Values) Result {
		xs, ok := numbers([]Function{arg}, v)
		if !ok {
			return Fail()
		}

		s, ok := op(xs[0])
		if !ok {
			return Fail()
		}

		return Ok(s)
	}), nil
}

func buildMinus(c *compiler, n *conf.Node) (Function, error) {
	return unary(c, n, KindMinus, func(x *apd.Decimal) (string, bool) {
		return FormatDecimal(new(apd.Decimal).Neg(x), 0), true
	})
}

func buildAbs(c *compiler, n *conf.Node) (Function, error) {
	return unary(c, n, KindAbs, func(x *apd.Decimal) (string, bool) {
		return FormatDecimal(new(apd.Decimal).Abs(x), 0), true
	})
}

func buildSign(c *compiler, n *conf.Node) (Function, error) {
	return unary(c, n, KindSign, func(x *apd.Decimal) (string, bool) {
		return strconv.Itoa(x.Sign()), true
	})
}

// DIVIDE(dividend [BY(divisor)] [MIN "m"] [MAX "n"]) rounds the quotient half
// up to n fractional digits and prints at least m of them. FORMAT is an alias
// used without BY to format a number.
func buildDivide(c *compiler, n *conf.Node) (Function, error) {
	var (
		dividend, divisor *conf.Node
		minScale          = 0
		maxScale          = -1
	)

	// Scales beyond Precision cannot be quantized.
	scale := func(name string, clause *conf.Node) (int, error) {
		s, err := c.constant(clause, n, name)
		if err != nil {
			return 0, err
		}

		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || v < 0 || v > Precision {
			return 0, c.errorf(n, "%s %q is not an integer in [0, %d]", name, s, Precision)
		}

		return v, nil
	}

	for _, child := range n.All() {
		var err error

		switch {
		case isClause(child, "BY"):
			if divisor != nil {
				return nil, c.errorf(n, "%s with more than one BY", n.Name())
			}

			divisor = child

		case isClause(child, "MIN"):
			minScale, err = scale(child.Name(), conf.NewNode("CAT", childrenOf(child)...))

		case isClause(child, "MAX"):
			maxScale, err = scale(child.Name(), conf.NewNode("CAT", childrenOf(child)...))

		default:
			if dividend != nil {
				return nil, c.errorf(n, "%s requires exactly one dividend", n.Name())
			}

			dividend = child
		}

		if err != nil {
			return nil, err
		}
	}

	if dividend == nil {
		return nil, c.errorf(n, "%s requires exactly one dividend", n.Name())
	}

	if divisor != nil && maxScale < 0 {
		return nil, c.errorf(n, "%s with BY requires MAX", n.Name())
	}

	if maxScale >= 0 && minScale > maxScale {
		return nil, c.errorf(n, "%s MIN %d exceeds MAX %d", n.Name(), minScale, maxScale)
	}

	num, err := c.compile(dividend)
	if err != nil {
		return nil, err
	}

	args := []Function{num}

	if divisor != nil {
		den, err := c.join(divisor)
		if err != nil {
			return nil, err
		}

		args = append(args, den)
	}

	return newFn(KindDivide, args, func(v Values) Result {
		xs, ok := numbers(args, v)
		if !ok {
			return Fail()
		}

		q := xs[0]

		if len(xs) == 2 {
			q = new(apd.Decimal)
			if _, err := decimalContext.Quo(q, xs[0], xs[1]); err != nil {
				return Fail()
			}
		}

		if maxScale >= 0 {
			r := new(apd.Decimal)
			if _, err := decimalContext.Quantize(r, q, int32(-maxScale)); err != nil {
				return Fail()
			}

			q = r
		}

		return Ok(FormatDecimal(q, minScale))
	}), nil
}

func childrenOf(n *conf.Node) []*conf.Node {
	out := make([]*conf.Node, 0, n.Len())
	for _, c := range n.All() {
		out = append(out, c)
	}

	return out
}

// buildCompare builds LT, LE, GT and GE, which hold if every adjacent pair of
// operands is ordered accordingly.
func buildCompare(kind Kind) builder {
	ordered := map[Kind]func(int) bool{
		KindLess:         func(c int) bool { return c < 0 },
		KindLessEqual:    func(c int) bool { return c <= 0 },
		KindGreater:      func(c int) bool { return c > 0 },
		KindGreaterEqual: func(c int) bool { return c >= 0 },
	}[kind]

	return func(c *compiler, n *conf.Node) (Function, error) {
		args, err := c.args(n)
		if err != nil {
			return nil, err
		}

		if len(args) < 2 {
			return nil, c.errorf(n, "%s requires at least two operands", kind)
		}

		return newFn(kind, args, func(v Values) Result {
			xs, ok := numbers(args, v)
			if !ok {
				return Fail()
			}

			for i := 1; i < len(xs); i++ {
				if !ordered(xs[i-1].Cmp(xs[i])) {
					return Ok("false")
				}
			}

			return Ok("true")
		}), nil
	}
}

// NUMCMP(a b ... [MARGIN "m"]) holds if every operand differs from the first
// by at most m.
func buildNumCmp(c *compiler, n *conf.Node) (Function, error) {
	var (
		margin = apd.New(0, 0)
		args   []Function
	)

	for _, child := range n.All() {
		if isClause(child, "MARGIN") {
			s, err := c.constant(conf.NewNode("CAT", childrenOf(child)...), n, "MARGIN")
			if err != nil {
				return nil, err
			}

			d, ok := ParseDecimal(s)
			if !ok || d.Sign() < 0 {
				return nil, c.errorf(n, "MARGIN %q is not a non-negative number", s)
			}

			margin = d

			continue
		}

		f, err := c.compile(child)
		if err != nil {
			return nil, err
		}

		args = append(args, f)
	}

	if len(args) < 2 {
		return nil, c.errorf(n, "NUMCMP requires at least two operands")
	}

	return newFn(KindNumCmp, args, func(v Values) Result {
		xs, ok := numbers(args, v)
		if !ok {
			return Fail()
		}

		diff := new(apd.Decimal)

		for _, x := range xs[1:] {
			if _, err := decimalContext.Sub(diff, x, xs[0]); err != nil {
				return Fail()
			}

			if diff.Abs(diff).Cmp(margin) > 0 {
				return Ok("false")
			}
		}

		return Ok("true")
	}), nil
}
