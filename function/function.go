package function

import (
	"slices"
	"strings"
)

// LegacyErrorText is the text that older configurations used to mark a value
// as erroneous. Only ISERRORSTRING treats it specially.
const LegacyErrorText = "!¤£!FEHLERHAFTE DATEN!¤£!"

// Values supplies the named values a function is evaluated against.
type Values interface {
	Lookup(name string) (string, bool)
}

// ValueMap is a [Values] backed by a map.
type ValueMap map[string]string

// Lookup returns the value stored under name.
func (m ValueMap) Lookup(name string) (string, bool) {
	v, ok := m[name]

	return v, ok
}

// NoValues is an empty [Values].
var NoValues Values = ValueMap(nil)

// Function is a compiled expression.
//
// The set of implementations is closed; functions are created by [Compile],
// [Const] and [Value].
type Function interface {
	// Kind returns the operation performed by the function.
	Kind() Kind
	// Parameters returns the free value names the function reads, without
	// duplicates, in order of first appearance.
	Parameters() []string
	// DialogRefs returns the names of the dialogs the function reads.
	DialogRefs() []string
	// Eval evaluates the function.
	Eval(values Values) Result
	// EvalBool reports whether Eval returns "true", ignoring case.
	EvalBool(values Values) bool

	operands() []Function
}

type fn struct {
	eval    func(Values) Result
	params  []string
	dialogs []string
	args    []Function
	kind    Kind
}

func (f *fn) Kind() Kind             { return f.kind }
func (f *fn) Parameters() []string   { return slices.Clone(f.params) }
func (f *fn) DialogRefs() []string   { return slices.Clone(f.dialogs) }
func (f *fn) Eval(v Values) Result   { return f.eval(v) }
func (f *fn) operands() []Function   { return f.args }
func (f *fn) EvalBool(v Values) bool { return isTrue(f.eval(v)) }

// newFn returns a function whose parameters and dialog references are the
// union of those of args.
func newFn(kind Kind, args []Function, eval func(Values) Result) *fn {
	f := &fn{kind: kind, args: args, eval: eval}

	for _, a := range args {
		f.params = union(f.params, a.Parameters())
		f.dialogs = union(f.dialogs, a.DialogRefs())
	}

	return f
}

func union(dst []string, src []string) []string {
	for _, s := range src {
		if !slices.Contains(dst, s) {
			dst = append(dst, s)
		}
	}

	return dst
}

func isTrue(r Result) bool {
	s, ok := r.Value()

	return ok && strings.EqualFold(s, "true")
}

// Const returns a function that always evaluates to s.
func Const(s string) Function {
	return &fn{kind: KindLiteral, eval: func(Values) Result { return Ok(s) }}
}

// True is a function that always evaluates to "true".
var True = Const("true")

// Value returns a function that looks up name, failing if it is absent.
func Value(name string) Function {
	return &fn{
		kind:   KindValue,
		params: []string{name},
		eval: func(v Values) Result {
			if v == nil {
				return Fail()
			}

			s, ok := v.Lookup(name)
			if !ok {
				return Fail()
			}

			return Ok(s)
		},
	}
}

// Walk calls visit for f and each of its operands, depth first, until visit
// returns false.
func Walk(f Function, visit func(Function) bool) {
	stack := []Function{f}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visit(top) {
			return
		}

		ops := top.operands()
		for i := len(ops) - 1; i >= 0; i-- {
			stack = append(stack, ops[i])
		}
	}
}
