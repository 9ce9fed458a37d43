package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/formkit/conf"
	"github.com/ardnew/formkit/log"
	"github.com/ardnew/formkit/profile"
)

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	text := i.buildConfig(ctx).Serialize() + "\n"

	if err := os.WriteFile(confPath, []byte(text), 0o600); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// buildConfig constructs the config node from current flag values. Flag
// names are written with underscores so that each is a valid key.
func (i *Init) buildConfig(ctx context.Context) *conf.Node {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ktx := kongContextFrom(ctx)

	var entries []*conf.Node

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		val := i.flagValue(ctx, flag.Name)
		if val != nil {
			key := strings.ReplaceAll(flag.Name, "-", "_")
			entries = append(entries, conf.NewNode(key, val...))
		}
	}

	return conf.NewNode(ConfigIdentifier, entries...)
}

// flagValue returns the leaves holding the value of a CLI flag, or nil if
// unset.
func (i *Init) flagValue(ctx context.Context, name string) []*conf.Node {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ktx := kongContextFrom(ctx)

	idx := slices.IndexFunc(ktx.Model.Flags, func(flag *kong.Flag) bool {
		return flag.Name == name
	})
	if idx == -1 {
		return nil
	}

	val := ktx.FlagValue(ktx.Model.Flags[idx])
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case bool:
		return leaves(strconv.FormatBool(v))

	case string:
		if v == "" {
			return nil
		}

		return leaves(v)

	case []string:
		if len(v) == 0 {
			return nil
		}

		return leaves(v...)

	case []int:
		return leavesOf(v)

	case []int64:
		return leavesOf(v)

	case []float64:
		return leavesOf(v)

	case []bool:
		return leavesOf(v)

	default:
		return leaves(fmt.Sprint(v))
	}
}

func leaves(values ...string) []*conf.Node {
	out := make([]*conf.Node, len(values))
	for i, v := range values {
		out[i] = conf.Leaf(v)
	}

	return out
}

func leavesOf[T any](values []T) []*conf.Node {
	if len(values) == 0 {
		return nil
	}

	out := make([]*conf.Node, len(values))
	for i, v := range values {
		out[i] = conf.Leaf(fmt.Sprint(v))
	}

	return out
}
