package tui

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/formkit/log"
)

const defaultEditor = "vi"

// editorCommand returns the editor named by $VISUAL or $EDITOR.
func editorCommand() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if e := strings.TrimSpace(os.Getenv(env)); e != "" {
			return e
		}
	}

	return defaultEditor
}

// editValueCommand implements [tea.ExecCommand]. It writes the value of a
// control to a temporary file, opens the user's editor on it and reads the
// result back.
type editValueCommand struct {
	ctx    context.Context
	logger log.Logger
	id     string
	value  string
	edited string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editValueCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editValueCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editValueCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run opens the editor. The edited value is the file content with one
// trailing newline removed.
func (c *editValueCommand) Run() error {
	f, err := os.CreateTemp(os.TempDir(), "formkit-value-*.txt")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if _, err := f.WriteString(c.value); err != nil {
		f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	data, err := runEditor(c.ctx, c.stdin, c.stdout, c.stderr, path)
	if err != nil {
		return err
	}

	c.edited = trimEditorText(string(data))

	c.logger.TraceContext(c.ctx, "editor closed",
		slog.String("id", c.id),
		slog.Int("length", len(c.edited)),
	)

	return nil
}

// trimEditorText removes the final line break most editors append.
func trimEditorText(s string) string {
	if t, ok := strings.CutSuffix(s, "\r\n"); ok {
		return t
	}

	return strings.TrimSuffix(s, "\n")
}

// runEditor launches the user's editor on the given file path and returns the
// edited file content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	args := strings.Fields(editorCommand())

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
