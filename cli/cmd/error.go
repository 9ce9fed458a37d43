package cmd

import "github.com/ardnew/formkit/pkg"

// Command errors. Each derives from [pkg.Error], so callers attach
// attributes with With and causes with Wrap.
//
//nolint:gochecknoglobals
var (
	ErrJSONMarshal = pkg.NewError("marshal JSON")
	ErrYAMLMarshal = pkg.NewError("marshal YAML")
	ErrWriteConfig = pkg.NewError("write configuration file")
	ErrFileExists  = pkg.NewError("file exists (use --force to overwrite)")
	ErrEvaluate    = pkg.NewError("expression evaluated to an error")
)
