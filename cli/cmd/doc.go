// Package cmd implements the formkit subcommands: fmt, query, eval, form and
// init.
//
// Every command reads ConfigTree documents from a path, a URL or "-" for
// stdin, resolving relative %include directives against the document and
// then the include search path stored with [WithIncludePath].
package cmd

//nolint:gochecknoglobals
var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path of
	// the configuration file. It also names the root node of that file.
	ConfigIdentifier = "config"
)
