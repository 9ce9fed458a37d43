package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/formkit/conf"
	"github.com/ardnew/formkit/pkg"
)

// Fmt parses a ConfigTree document and writes it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as native ConfigTree syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	Tree   Tree   `cmd:""                    help:"Format as an indented node outline."`
}

// Native formats input as native ConfigTree syntax.
type Native struct {
	EscapeAll bool `help:"Escape every rune that is not a letter or digit" short:"e"`
	Single    bool `help:"Delimit strings with single quotes"               short:"q"`

	Source string `arg:"" default:"-" help:"Source input file, URL or '-' for default stdin." name:"source"`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	root, err := load(ctx, f.Source)
	if err != nil {
		return pkg.WrapError(err).
			With(slog.String("format", "native"))
	}

	opts := []conf.SerializeOption{conf.ChildrenOnly()}
	if f.EscapeAll {
		opts = append(opts, conf.EscapeAll())
	}

	if f.Single {
		opts = append(opts, conf.Quote('\''))
	}

	_, err = fmt.Fprintln(stdout, root.Serialize(opts...))

	return err
}

// JSON parses input and outputs it as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file, URL or '-' for default stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	root, err := load(ctx, j.Source)
	if err != nil {
		return pkg.WrapError(err).
			With(slog.String("format", "json"))
	}

	if err := root.FormatJSON(ctx, stdout, j.Indent); err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	return nil
}

// YAML parses input and outputs it as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output (0 selects flow style)" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file, URL or '-' for default stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	root, err := load(ctx, y.Source)
	if err != nil {
		return pkg.WrapError(err).
			With(slog.String("format", "yaml"))
	}

	if err := root.FormatYAML(ctx, stdout, y.Indent); err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// Tree prints one node per line, indented by depth.
type Tree struct {
	Source string `arg:"" default:"-" help:"Source input file, URL or '-' for default stdin." name:"source"`
}

// Run executes the tree command.
func (a *Tree) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	root, err := load(ctx, a.Source)
	if err != nil {
		return pkg.WrapError(err).
			With(slog.String("format", "tree"))
	}

	return root.Tree(stdout)
}
