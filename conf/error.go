package conf

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/formkit/pkg"
)

// SyntaxError reports malformed ConfigTree text.
type SyntaxError struct {
	URL      string // source document
	Line     int    // 1-based
	Column   int    // 1-based, in runes
	Fragment string // source line containing the error
	Msg      string
}

// Error renders the location followed by a snippet of the offending line
// with a caret under the column.
func (e *SyntaxError) Error() string {
	var sb strings.Builder

	sb.WriteString("syntax error")

	if e.URL != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.URL)
	}

	sb.WriteString(" at line ")
	sb.WriteString(strconv.Itoa(e.Line))
	sb.WriteString(", column ")
	sb.WriteString(strconv.Itoa(e.Column))
	sb.WriteString(": ")
	sb.WriteString(e.Msg)

	if snippet := e.Snippet(); snippet != "" {
		sb.WriteByte('\n')
		sb.WriteString(snippet)
	}

	return sb.String()
}

// Snippet returns the offending line prefixed by its line number, followed by
// a line with a caret under the error column.
func (e *SyntaxError) Snippet() string {
	if e.Fragment == "" || e.Line <= 0 {
		return ""
	}

	var sb strings.Builder

	num := strconv.Itoa(e.Line)

	sb.WriteString("  ")
	sb.WriteString(num)
	sb.WriteString(" | ")
	sb.WriteString(e.Fragment)
	sb.WriteByte('\n')

	// 2 leading spaces + " | "
	pad := len(num) + 5
	if e.Column > 0 {
		pad += e.Column - 1
	}

	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString("^")

	return sb.String()
}

// Unwrap returns [pkg.ErrSyntax] so that errors.Is matches it.
func (e *SyntaxError) Unwrap() error { return pkg.ErrSyntax }

// LogValue implements [slog.LogValuer].
func (e *SyntaxError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Msg),
		slog.String("url", e.URL),
		slog.Int("line", e.Line),
		slog.Int("column", e.Column),
		slog.String("fragment", e.Fragment),
	)
}

// maxFragment bounds fragments quoted in configuration errors.
const maxFragment = 100

// Fragment returns the serialized form of n truncated to a length suitable
// for error messages.
func Fragment(n *Node) string {
	if n == nil {
		return ""
	}

	s := n.Serialize()
	if r := []rune(s); len(r) > maxFragment {
		return string(r[:maxFragment])
	}

	return s
}
