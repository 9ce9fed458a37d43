package pkg

import (
	"fmt"
	"log/slog"
	"strings"
)

// Sentinel errors shared by the conf, function and form packages.
// Derived errors created with [Error.With] or [Error.Wrap] still match their
// sentinel with errors.Is.
var (
	// ErrSyntax is returned for malformed configuration text.
	// It is usually carried by a *conf.SyntaxError holding the location.
	ErrSyntax = NewError("syntax error")

	// ErrIO is returned when a configuration source or include cannot be
	// opened or read.
	ErrIO = NewError("read configuration source")

	// ErrConfiguration is returned for semantically invalid configuration:
	// wrong arity, unknown function, unresolved BIND target, DIALOG without
	// context, invalid regular expression, MIN greater than MAX, and so on.
	ErrConfiguration = NewError("invalid configuration")

	// ErrNodeNotFound is returned by the failing query variants when no
	// node matched.
	ErrNodeNotFound = NewError("node not found")

	// ErrUnknownField is returned by the form model for an unrecognized
	// control identifier.
	ErrUnknownField = NewError("unknown field")

	// ErrReentrant is returned when a listener calls back into the form
	// model while it is still dispatching a change.
	ErrReentrant = NewError("reentrant form model update")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	kind  *Error      // Sentinel this error derives from (nil for sentinels)
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error. An err that already is an
// Error is returned as is.
func WrapError(err error) *Error {
	if ee, ok := err.(*Error); ok { //nolint:errorlint
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e and target derive from the same sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.root() == t.root()
}

func (e *Error) root() *Error {
	if e.kind != nil {
		return e.kind
	}

	return e
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Lookup returns the value of the attribute with the given key.
func (e *Error) Lookup(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
		kind:  e.root(),
	}
}

// Wrapf creates a new Error wrapping a formatted error message.
func (e *Error) Wrapf(format string, args ...any) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
		kind:  e.root(),
	}
}
