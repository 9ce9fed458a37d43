package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/formkit/conf"
	"github.com/ardnew/formkit/function"
	"github.com/ardnew/formkit/log"
	"github.com/ardnew/formkit/pkg"
)

// Eval compiles a ConfigTree expression and evaluates it against values
// given on the command line.
type Eval struct {
	Set       []string `help:"Bind a value (name=value); may be repeated"                     short:"s" placeholder:"NAME=VALUE"`
	Functions []string `help:"Sources whose Functions sections BIND(FUNCTION ...) may name"   short:"F" placeholder:"SOURCE"`
	Bool      bool     `help:"Print the boolean interpretation of the result"                short:"b"`
	Params    bool     `help:"Print the parameters of the expression instead of evaluating" short:"P"`

	Expression string `arg:"" help:"ConfigTree expression to evaluate" name:"expression"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	f, err := e.compile(ctx)
	if err != nil {
		return err
	}

	if e.Params {
		_, err = fmt.Fprintln(stdout, strings.Join(f.Parameters(), "\n"))

		return err
	}

	vals, err := assignments(e.Set)
	if err != nil {
		return err
	}

	env := function.ValueMap(vals)

	if e.Bool {
		_, err = fmt.Fprintln(stdout, strconv.FormatBool(f.EvalBool(env)))

		return err
	}

	res := f.Eval(env)

	log.DebugContext(ctx, "evaluated",
		slog.String("kind", f.Kind().String()),
		slog.Bool("error", res.IsError()),
	)

	v, ok := res.Value()
	if !ok {
		return ErrEvaluate.With(slog.String("expression", e.Expression))
	}

	_, err = fmt.Fprintln(stdout, v)

	return err
}

func (e *Eval) compile(ctx context.Context) (function.Function, error) {
	lib, err := loadFunctions(ctx, e.Functions)
	if err != nil {
		return nil, err
	}

	root, err := conf.ParseString(ctx, "", e.Expression, parseOptions(ctx)...)
	if err != nil {
		return nil, pkg.WrapError(err).
			With(slog.String("expression", e.Expression))
	}

	f, err := function.CompileChildren(root, function.KindAnd,
		function.WithLibrary(lib),
		function.WithContext(function.Context{}),
		function.WithLogger(log.Default()),
	)
	if err != nil {
		return nil, err
	}

	if f == nil {
		return nil, pkg.ErrConfiguration.
			With(slog.String("expression", e.Expression)).
			Wrapf("empty expression")
	}

	return f, nil
}
