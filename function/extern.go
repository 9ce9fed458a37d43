package function

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/formkit/conf"
	"github.com/ardnew/formkit/pkg"
)

// GoFunc is an external function. It receives the values named by the PARAMS
// of its EXTERN.
type GoFunc func(args Values) (string, error)

// ExternLoader resolves the URL of an EXTERN function.
type ExternLoader interface {
	Load(url string, params []string) (GoFunc, error)
}

// Externs resolves two URL schemes:
//
//	go:<name>      a function registered with [Externs.Register]
//	expr:<source>  an expr-lang program; the PARAMS are its string variables
type Externs struct {
	mu    sync.RWMutex
	funcs map[string]GoFunc
}

// DefaultExterns is the loader used when none is configured.
var DefaultExterns = NewExterns()

// NewExterns returns a loader without registered functions.
func NewExterns() *Externs {
	return &Externs{funcs: map[string]GoFunc{}}
}

// Register makes f available as go:name.
func (e *Externs) Register(name string, f GoFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.funcs[name] = f
}

// Names returns the sorted names of the registered functions.
func (e *Externs) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return slices.Sorted(maps.Keys(e.funcs))
}

func (e *Externs) Load(url string, params []string) (GoFunc, error) {
	scheme, rest, ok := strings.Cut(url, ":")
	if !ok {
		return nil, pkg.ErrConfiguration.
			With(slog.String("url", url)).
			Wrapf("extern URL without scheme")
	}

	switch scheme {
	case "go":
		e.mu.RLock()
		f, ok := e.funcs[rest]
		e.mu.RUnlock()

		if !ok {
			return nil, pkg.ErrConfiguration.
				With(slog.String("url", url)).
				Wrapf("unregistered extern function %q", rest)
		}

		return f, nil

	case "expr":
		return compileExpr(rest, params)

	default:
		return nil, pkg.ErrConfiguration.
			With(slog.String("url", url)).
			Wrapf("unsupported extern scheme %q", scheme)
	}
}

func compileExpr(source string, params []string) (GoFunc, error) {
	env := make(map[string]any, len(params))
	for _, p := range params {
		env[p] = ""
	}

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, pkg.ErrConfiguration.
			With(slog.String("source", source)).
			Wrap(err)
	}

	return func(args Values) (string, error) {
		run := make(map[string]any, len(params))

		for _, p := range params {
			s, _ := args.Lookup(p)
			run[p] = s
		}

		out, err := vm.Run(program, run)
		if err != nil {
			return "", err
		}

		return formatResult(out)
	}, nil
}

func formatResult(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", fmt.Errorf("nil result")
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		return fmt.Sprintf("%v", val), nil
	}
}

// EXTERN(URL "scheme:..." PARAMS("a" "b")) calls an external function with
// the named values. A missing value, an error or a panic yields Error.
func buildExtern(c *compiler, n *conf.Node) (Function, error) {
	var (
		url    string
		params []string
	)

	for _, child := range n.All() {
		switch {
		case isClause(child, "URL"):
			s, err := c.constant(conf.NewNode("CAT", childrenOf(child)...), n, "URL")
			if err != nil {
				return nil, err
			}

			url = s

		case isClause(child, "PARAMS"):
			for _, p := range child.All() {
				if !p.IsLeaf() {
					return nil, c.errorf(n, "PARAMS must be names")
				}

				params = union(params, []string{p.Name()})
			}

		default:
			return nil, c.errorf(n, "unexpected %q in EXTERN", child.Name())
		}
	}

	if url == "" {
		return nil, c.errorf(n, "EXTERN without URL")
	}

	call, err := c.extern.Load(url, params)
	if err != nil {
		return nil, c.errorf(n, "load %s: %v", url, err)
	}

	return &fn{
		kind:   KindExtern,
		params: params,
		eval: func(v Values) (r Result) {
			args := make(ValueMap, len(params))

			for _, p := range params {
				if v == nil {
					return Fail()
				}

				s, ok := v.Lookup(p)
				if !ok {
					return Fail()
				}

				args[p] = s
			}

			defer func() {
				if recover() != nil {
					r = Fail()
				}
			}()

			s, err := call(args)
			if err != nil {
				return Fail()
			}

			return Ok(s)
		},
	}, nil
}
