package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/formkit/conf"
	"github.com/ardnew/formkit/log"
)

// resolve is a [kong.ConfigurationLoader] that parses config files written in
// the ConfigTree language.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, "config"), "/path/to/config")
//
// Every top-level node called name contributes its children as flag values;
// later nodes override earlier ones. A child with a single string is a
// scalar value, a child with several strings is a list. Flag names with
// hyphens (e.g., "log-level") are written with underscores in the config file
// (e.g., "log_level"), since hyphens are not valid in keys.
//
// Example config file:
//
//	config(
//	  log_level "debug"
//	  log_format "text"
//	  include_path("/etc/formkit" "/usr/share/formkit")
//	)
//
// This configuration will be applied to Kong flags:
//
//	--log-level=debug
//	--log-format=text
//	--include-path=/etc/formkit,/usr/share/formkit
//
// Command-line flags override config file values. A file that does not parse
// is logged and ignored.
func resolve(
	ctx context.Context,
	name string,
) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		root, err := conf.Parse(ctx, "", io.NopCloser(r),
			conf.WithLogger(log.Default()),
		)
		if err != nil {
			log.DebugContext(ctx, "ignoring configuration file",
				slog.Any("error", err),
			)

			return config{}, nil
		}

		cfg := config{}

		for _, n := range root.All() {
			if n.Name() != name || n.IsLeaf() {
				continue
			}

			for _, entry := range n.All() {
				if v, ok := entryValue(entry); ok {
					cfg[entry.Name()] = v
				}
			}
		}

		return cfg, nil
	}
}

// entryValue converts a KEY "value" or KEY("a" "b") entry to a flag value.
func entryValue(entry *conf.Node) (any, bool) {
	if entry.IsLeaf() {
		return nil, false
	}

	values := make([]any, 0, entry.Len())

	for _, c := range entry.All() {
		if !c.IsLeaf() {
			return nil, false
		}

		values = append(values, c.Name())
	}

	if len(values) == 1 {
		return values[0], true
	}

	return values, true
}

// config implements [kong.Resolver] for ConfigTree configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	// No validation needed - the config was already parsed successfully
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but ConfigTree keys
	// use underscores. Try both forms.
	name := flag.Name
	underscoreName := strings.ReplaceAll(name, "-", "_")

	// Look up the value in our config
	if value, ok := r[name]; ok {
		return value, nil
	}

	// Try underscore variant
	if value, ok := r[underscoreName]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}
