package form

import (
	"github.com/ardnew/formkit/function"
	"github.com/ardnew/formkit/log"
)

// Option configures a [Model].
type Option func(*options)

type options struct {
	logger  log.Logger
	presets Presets
	lib     *function.Library
	dialogs *function.DialogLibrary
	extern  function.ExternLoader
	context function.Context
}

func makeOptions(opts ...Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.context == nil {
		o.context = function.Context{}
	}

	return o
}

// WithPresets sets initial control values. A preset takes priority over the
// control's AUTOFILL during construction.
func WithPresets(presets Presets) Option {
	return func(o *options) { o.presets = presets }
}

// WithFunctions resolves BIND(FUNCTION "name") against lib. Functions
// sections of the form configuration are added to a library chained to lib.
func WithFunctions(lib *function.Library) Option {
	return func(o *options) { o.lib = lib }
}

// WithDialogs resolves DIALOG references against dialogs.
func WithDialogs(dialogs *function.DialogLibrary) Option {
	return func(o *options) { o.dialogs = dialogs }
}

// WithContext sets the per-document context of DIALOG functions. Each model
// gets a fresh context by default.
func WithContext(ctx function.Context) Option {
	return func(o *options) { o.context = ctx }
}

// WithExtern sets the loader for EXTERN functions.
func WithExtern(loader function.ExternLoader) Option {
	return func(o *options) { o.extern = loader }
}

// WithLogger sets the logger used to trace construction and updates.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func (o options) compileOptions(lib *function.Library) []function.Option {
	return []function.Option{
		function.WithLibrary(lib),
		function.WithDialogs(o.dialogs),
		function.WithContext(o.context),
		function.WithExtern(o.extern),
		function.WithLogger(o.logger),
	}
}
