package function

import (
	"fmt"
	"log/slog"

	"github.com/ardnew/formkit/conf"
	"github.com/ardnew/formkit/log"
	"github.com/ardnew/formkit/pkg"
)

// Option configures compilation.
type Option func(*compiler)

type compiler struct {
	logger  log.Logger
	lib     *Library
	dialogs *DialogLibrary
	extern  ExternLoader
	ctx     Context
}

// WithLibrary resolves BIND(FUNCTION "name") against lib.
func WithLibrary(lib *Library) Option {
	return func(c *compiler) { c.lib = lib }
}

// WithDialogs resolves DIALOG references against dialogs.
func WithDialogs(dialogs *DialogLibrary) Option {
	return func(c *compiler) { c.dialogs = dialogs }
}

// WithContext sets the per-document context that DIALOG functions use to
// select their dialog instance. DIALOG cannot be compiled without one.
func WithContext(ctx Context) Option {
	return func(c *compiler) { c.ctx = ctx }
}

// WithExtern sets the loader for EXTERN functions. The default is
// [DefaultExterns].
func WithExtern(loader ExternLoader) Option {
	return func(c *compiler) {
		if loader != nil {
			c.extern = loader
		}
	}
}

// WithLogger sets the logger used to trace compilation.
func WithLogger(logger log.Logger) Option {
	return func(c *compiler) { c.logger = logger }
}

func newCompiler(opts ...Option) *compiler {
	c := &compiler{extern: DefaultExterns}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

type builder func(c *compiler, n *conf.Node) (Function, error)

// builders maps each reserved name to its builder.
var builders map[string]builder

func init() {
	builders = map[string]builder{
		"VALUE":         buildValue,
		"AND":           buildAnd,
		"OR":            buildOr,
		"NOT":           buildNot,
		"CAT":           buildCat,
		"THEN":          buildCat,
		"ELSE":          buildCat,
		"IF":            buildIf,
		"SELECT":        buildSelect,
		"BIND":          buildBind,
		"MATCH":         buildMatch,
		"REPLACE":       buildReplace,
		"SPLIT":         buildSplit,
		"LENGTH":        buildLength,
		"DIALOG":        buildDialog,
		"EXTERN":        buildExtern,
		"SUM":           buildSum,
		"DIFF":          buildDiff,
		"PRODUCT":       buildProduct,
		"MINUS":         buildMinus,
		"ABS":           buildAbs,
		"SIGN":          buildSign,
		"DIVIDE":        buildDivide,
		"FORMAT":        buildDivide,
		"LT":            buildCompare(KindLess),
		"LE":            buildCompare(KindLessEqual),
		"GT":            buildCompare(KindGreater),
		"GE":            buildCompare(KindGreaterEqual),
		"NUMCMP":        buildNumCmp,
		"STRCMP":        buildStrCmp,
		"ISERROR":       buildIsError(KindIsError),
		"ISERRORSTRING": buildIsError(KindIsErrorString),
	}
}

// Reserved reports whether name is the name of a function kind.
func Reserved(name string) bool {
	_, ok := builders[name]

	return ok
}

// Compile compiles the expression n.
func Compile(n *conf.Node, opts ...Option) (Function, error) {
	return newCompiler(opts...).compile(n)
}

// CompileChildren compiles the children of n as operands of join, which must
// be [KindCat] or [KindAnd]. It returns nil if n has no children and the
// compiled child itself if n has exactly one.
func CompileChildren(n *conf.Node, join Kind, opts ...Option) (Function, error) {
	c := newCompiler(opts...)

	args, err := c.args(n)
	if err != nil {
		return nil, err
	}

	switch len(args) {
	case 0:
		return nil, nil
	case 1:
		return args[0], nil
	}

	switch join {
	case KindCat:
		return newCat(args), nil
	case KindAnd:
		return newAnd(args), nil
	default:
		return nil, c.errorf(n, "cannot join operands with %s", join)
	}
}

func (c *compiler) compile(n *conf.Node) (Function, error) {
	if n.IsLeaf() {
		return Const(n.Name()), nil
	}

	build, ok := builders[n.Name()]
	if !ok {
		if n.Name() == "" {
			return nil, c.errorf(n, "expression without function name")
		}

		return nil, c.errorf(n, "unknown function %q", n.Name())
	}

	f, err := build(c, n)
	if err != nil {
		return nil, err
	}

	c.logger.Trace("compiled",
		slog.String("kind", f.Kind().String()),
		slog.Any("parameters", f.Parameters()),
	)

	return f, nil
}

// args compiles every child of n.
func (c *compiler) args(n *conf.Node) ([]Function, error) {
	args := make([]Function, 0, n.Len())

	for _, child := range n.All() {
		f, err := c.compile(child)
		if err != nil {
			return nil, err
		}

		args = append(args, f)
	}

	return args, nil
}

// join compiles the children of n as operands of CAT.
func (c *compiler) join(n *conf.Node) (Function, error) {
	args, err := c.args(n)
	if err != nil {
		return nil, err
	}

	if len(args) == 1 {
		return args[0], nil
	}

	return newCat(args), nil
}

// constant evaluates n at compile time, for operands that may not depend on
// values.
func (c *compiler) constant(n, in *conf.Node, what string) (string, error) {
	f, err := c.compile(n)
	if err != nil {
		return "", err
	}

	s, ok := f.Eval(NoValues).Value()
	if !ok {
		return "", c.errorf(in, "%s must not depend on values", what)
	}

	return s, nil
}

func (c *compiler) errorf(n *conf.Node, format string, args ...any) error {
	frag := conf.Fragment(n)

	return pkg.ErrConfiguration.
		With(slog.String("fragment", frag)).
		Wrap(fmt.Errorf(format+" in %s", append(args, frag)...))
}

// isClause reports whether n is an interior node named name, such as the
// THEN of an IF.
func isClause(n *conf.Node, name string) bool {
	return !n.IsLeaf() && n.Name() == name
}
