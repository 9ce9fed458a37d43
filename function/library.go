package function

import (
	"log/slog"

	"github.com/ardnew/formkit/conf"
)

// Library is a registry of named functions. Lookups fall back to the parent
// library.
type Library struct {
	parent *Library
	funcs  map[string]Function
	names  []string
}

// NewLibrary returns an empty library chained to parent, which may be nil.
func NewLibrary(parent *Library) *Library {
	return &Library{parent: parent, funcs: map[string]Function{}}
}

// Add registers f under name, replacing any function of that name.
func (l *Library) Add(name string, f Function) {
	if _, ok := l.funcs[name]; !ok {
		l.names = append(l.names, name)
	}

	l.funcs[name] = f
}

// Get returns the function named name.
func (l *Library) Get(name string) (Function, bool) {
	for ; l != nil; l = l.parent {
		if f, ok := l.funcs[name]; ok {
			return f, true
		}
	}

	return nil, false
}

// Names returns the names registered in l, not in its parents, in order of
// registration.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}

	return append([]string(nil), l.names...)
}

// Len returns the number of functions registered in l.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}

	return len(l.names)
}

// ParseFunctions compiles the definitions of every Functions section of root
// into lib, or into a new library if lib is nil. Each child of a section
// defines the function named by it; several expressions are joined with AND.
// Definitions may bind the functions defined before them but may not reuse
// the name of a builtin.
func ParseFunctions(root *conf.Node, lib *Library, opts ...Option) (*Library, error) {
	if lib == nil {
		lib = NewLibrary(nil)
	}

	opts = append(opts, WithLibrary(lib))
	c := newCompiler(opts...)

	seen := map[*conf.Node]bool{}

	for _, name := range []string{"Functions", "Funktionen"} {
		for _, section := range root.QueryAll(name, 0, false).All() {
			if seen[section] {
				continue
			}

			seen[section] = true

			for _, def := range section.All() {
				if Reserved(def.Name()) {
					return nil, c.errorf(def, "function %q shadows a builtin", def.Name())
				}

				f, err := CompileChildren(def, KindAnd, opts...)
				if err != nil {
					return nil, err
				}

				if f == nil {
					return nil, c.errorf(def, "function %q without definition", def.Name())
				}

				lib.Add(def.Name(), f)
				c.logger.Debug("function defined",
					slog.String("name", def.Name()),
					slog.Any("parameters", f.Parameters()),
				)
			}
		}
	}

	return lib, nil
}
