package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/formkit/conf"
	"github.com/ardnew/formkit/form"
	"github.com/ardnew/formkit/function"
	"github.com/ardnew/formkit/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type includePathKey struct{}

// WithIncludePath returns a new context.Context carrying the directories
// searched for relative %include directives.
func WithIncludePath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, includePathKey{}, dirs)
}

func includePathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(includePathKey{}).([]string)

	return dirs
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdin is read for [stdinSource]; tests replace it.
//
//nolint:gochecknoglobals
var stdin io.Reader = os.Stdin

// stdout receives command output; tests replace it.
//
//nolint:gochecknoglobals
var stdout io.Writer = os.Stdout

// parseOptions returns the parser options shared by every command.
func parseOptions(ctx context.Context) []conf.Option {
	return []conf.Option{
		conf.WithLogger(log.Default()),
		conf.WithSearchPath(includePathFrom(ctx)...),
	}
}

// load parses the ConfigTree document named by source, which is a path, a
// URL or "-" for stdin.
func load(ctx context.Context, source string) (*conf.Node, error) {
	if source == stdinSource {
		return conf.Parse(ctx, "", io.NopCloser(stdin), parseOptions(ctx)...)
	}

	return conf.Load(ctx, source, parseOptions(ctx)...)
}

// loadFunctions reads the Functions sections of every source into one
// library, in order. Sources naming the same file are read once.
func loadFunctions(ctx context.Context, sources []string) (*function.Library, error) {
	lib := function.NewLibrary(nil)

	for _, src := range uniqueSources(sources) {
		root, err := load(ctx, src)
		if err != nil {
			return nil, err
		}

		if lib, err = function.ParseFunctions(
			root, lib, function.WithLogger(log.Default()),
		); err != nil {
			return nil, err
		}

		log.DebugContext(ctx, "loaded functions",
			slog.String("source", src),
			slog.Int("count", lib.Len()),
		)
	}

	return lib, nil
}

// assignments parses each "id=value" pair. Later pairs override earlier
// ones.
func assignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))

	for _, s := range pairs {
		id, value, err := form.ParsePreset(s)
		if err != nil {
			return nil, err
		}

		out[id] = value
	}

	return out, nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// uniqueSources returns sources in order, dropping every local file that
// resolves to a file already listed. Stdin, URLs and paths that cannot be
// inspected are kept as given.
func uniqueSources(sources []string) []string {
	out := make([]string, 0, len(sources))
	seen := make(map[fileKey]struct{})
	stdinSeen := false

	for _, src := range sources {
		if src == stdinSource {
			if !stdinSeen {
				out = append(out, src)
			}

			stdinSeen = true

			continue
		}

		key, ok := statFile(src)
		if ok {
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		out = append(out, src)
	}

	return out
}

// statFile resolves path to its device and inode pair.
func statFile(path string) (fileKey, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
