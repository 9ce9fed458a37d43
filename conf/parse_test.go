package conf

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/ardnew/formkit/pkg"
)

// sexpr renders the children of n compactly: leaves quoted, interior nodes
// as name[children].
func sexpr(n *Node) string {
	parts := make([]string, 0, n.Len())
	for _, c := range n.All() {
		parts = append(parts, sexprNode(c))
	}

	return strings.Join(parts, " ")
}

func sexprNode(n *Node) string {
	if n.IsLeaf() {
		return strconv.Quote(n.Name())
	}

	return n.Name() + "[" + sexpr(n) + "]"
}

func mustParse(t testing.TB, src string, opts ...Option) *Node {
	t.Helper()

	root, err := ParseString(context.Background(), "file:///test.cfg", src, opts...)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}

	return root
}

func TestParse_Grammar(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", ""},
		{"shorthand", `A "x"`, `A["x"]`},
		{"list", `A("x", 'y'; "z")`, `A["x" "y" "z"]`},
		{"anonymous", `"bare" ("anon" B "1")`, `"bare" ["anon" B["1"]]`},
		{"comment", "A \"x\" # comment ( \"\nB(\"y\")", `A["x"] B["y"]`},
		{"comment after key", "A # note\n(\"x\")\nB # note\n\"y\"", `A["x"] B["y"]`},
		{"percent", `A "50%% off%nnow"`, `A["50% off\nnow"]`},
		{"doubled single", `B 'it''s'`, `B["it's"]`},
		{"doubled double", `B """"`, `B["\""]`},
		{"unicode", `C "%u00e9%x"`, `C["é%x"]`},
		{"surrogates", `C "%uD83D%uDE00"`, `C["😀"]`},
		{"bom", "\uFEFFA \"x\"", `A["x"]`},
		{"crlf", "A(\r\n\"x\"\r\n)\r\n", `A["x"]`},
		{"empty node", `A() ()`, `"A" ""`},
		{"multiline", "Form(\n  TITLE \"T\"\n  Tabs(Main(\"m\"))\n)", `Form[TITLE["T"] Tabs[Main["m"]]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sexpr(mustParse(t, tt.src)); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestParse_DeepNesting(t *testing.T) {
	const depth = 100_000

	src := strings.Repeat("A(", depth) + `"leaf"` + strings.Repeat(")", depth)
	root := mustParse(t, src)

	n, levels := root, 0
	for !n.IsLeaf() {
		c, err := n.First()
		if err != nil {
			t.Fatal(err)
		}

		n = c
		levels++
	}

	if levels != depth+1 || n.Name() != "leaf" {
		t.Errorf("got %d levels ending in %q", levels, n.Name())
	}

	if root.String() != "leaf" {
		t.Errorf("String() = %q", root.String())
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		col  int
		msg  string
	}{
		{"unmatched close", `A "x")`, 1, 6, "unmatched ')'"},
		{"unclosed", "A(\n B(", 2, 3, "unclosed '('"},
		{"key without value", `A B`, 1, 3, "expected string or '('"},
		{"key at end", `A`, 1, 1, "found end of input"},
		{"key before comment at end", "A # note", 1, 1, "found end of input"},
		{"unterminated", `A "abc`, 1, 3, "unterminated string"},
		{"bad char", `A $`, 1, 3, "unexpected character '$'"},
		{"bad percent", `%foo`, 1, 1, "unexpected '%'"},
		{"include key", `%include A`, 1, 10, "expected string after %include"},
		{"include prefix", `%includes "x"`, 1, 1, "unexpected '%'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), "file:///bad.cfg", tt.src)
			if !errors.Is(err, pkg.ErrSyntax) {
				t.Fatalf("expected syntax error, got %v", err)
			}

			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %T", err)
			}

			if se.Line != tt.line || se.Column != tt.col {
				t.Errorf("location = %d:%d, want %d:%d",
					se.Line, se.Column, tt.line, tt.col)
			}

			if !strings.Contains(se.Msg, tt.msg) {
				t.Errorf("msg = %q, want substring %q", se.Msg, tt.msg)
			}

			if se.URL != "file:///bad.cfg" {
				t.Errorf("url = %q", se.URL)
			}
		})
	}
}

func TestSyntaxError_Snippet(t *testing.T) {
	_, err := ParseString(context.Background(), "file:///bad.cfg", `A "x")`)

	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}

	want := "  1 | A \"x\")\n" + strings.Repeat(" ", 11) + "^"
	if se.Snippet() != want {
		t.Errorf("snippet:\n%s\nwant:\n%s", se.Snippet(), want)
	}

	if !strings.HasSuffix(se.Error(), want) {
		t.Errorf("Error() does not end with snippet: %q", se.Error())
	}
}

// closeTracker records whether Close was called.
type closeTracker struct {
	io.Reader

	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true

	return nil
}

func TestParse_ClosesReader(t *testing.T) {
	for _, src := range []string{`A "ok"`, `A )`} {
		r := &closeTracker{Reader: strings.NewReader(src)}

		_, _ = Parse(context.Background(), "file:///x.cfg", r)

		if !r.closed {
			t.Errorf("reader not closed after parsing %q", src)
		}
	}
}

var includeFS = fstest.MapFS{
	"forms/main.cfg":      {Data: []byte("Form(\n  %include \"parts/a b.cfg\"\n  Z \"3\"\n)")},
	"forms/parts/a b.cfg": {Data: []byte(`X "1" Y "2"`)},
	"forms/twice.cfg":     {Data: []byte(`A(%include "parts/a b.cfg") B(%include "parts/a b.cfg")`)},
	"forms/missing.cfg":   {Data: []byte(`%include "nope.cfg"`)},
	"forms/commented.cfg": {Data: []byte("%include # shared\n\"parts/a b.cfg\"")},
	"forms/search.cfg":    {Data: []byte(`%include "common.cfg"`)},
	"lib/common.cfg":      {Data: []byte(`Common "yes"`)},
	"cycle/a.cfg":         {Data: []byte(`%include "b.cfg"`)},
	"cycle/b.cfg":         {Data: []byte(`%include "a.cfg"`)},
	"deep/d1.cfg":         {Data: []byte(`%include "d2.cfg"`)},
	"deep/d2.cfg":         {Data: []byte(`%include "d3.cfg"`)},
	"deep/d3.cfg":         {Data: []byte(`%include "d4.cfg"`)},
	"deep/d4.cfg":         {Data: []byte(`Bottom "4"`)},
	"broken/main.cfg":     {Data: []byte(`%include "inner.cfg"`)},
	"broken/inner.cfg":    {Data: []byte("A(\n")},
	"absolute/main.cfg":   {Data: []byte(`%include "/lib/common.cfg"`)},
}

func loadFS(t *testing.T, name string, opts ...Option) (*Node, error) {
	t.Helper()
	t.Setenv(pkg.IncludePathEnv, "")

	opts = append([]Option{WithLoader(FSLoader(includeFS))}, opts...)

	return Load(context.Background(), "file:///"+name, opts...)
}

func TestLoad_Include(t *testing.T) {
	root, err := loadFS(t, "forms/main.cfg")
	if err != nil {
		t.Fatal(err)
	}

	if got, want := sexpr(root), `Form[X["1"] Y["2"] Z["3"]]`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestLoad_IncludeAfterComment(t *testing.T) {
	root, err := loadFS(t, "forms/commented.cfg")
	if err != nil {
		t.Fatal(err)
	}

	if got, want := sexpr(root), `X["1"] Y["2"]`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestLoad_IncludeSplicesCopies(t *testing.T) {
	root, err := loadFS(t, "forms/twice.cfg")
	if err != nil {
		t.Fatal(err)
	}

	a, err := root.Get("A")
	if err != nil {
		t.Fatal(err)
	}

	x, _ := a.First()
	x.SetName("changed")

	if got, want := sexpr(root), `A[changed["1"] Y["2"]] B[X["1"] Y["2"]]`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestLoad_IncludeSearchPath(t *testing.T) {
	if _, err := loadFS(t, "forms/search.cfg"); !errors.Is(err, pkg.ErrIO) {
		t.Fatalf("expected io error without search path, got %v", err)
	}

	root, err := loadFS(t, "forms/search.cfg", WithSearchPath("/lib"))
	if err != nil {
		t.Fatal(err)
	}

	if got := sexpr(root); got != `Common["yes"]` {
		t.Errorf("got %s", got)
	}
}

func TestLoad_IncludeAbsolute(t *testing.T) {
	root, err := loadFS(t, "absolute/main.cfg")
	if err != nil {
		t.Fatal(err)
	}

	if got := sexpr(root); got != `Common["yes"]` {
		t.Errorf("got %s", got)
	}
}

func TestLoad_IncludeErrors(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		opts   []Option
		target error
		msg    string
	}{
		{"missing", "forms/missing.cfg", nil, pkg.ErrIO, "nope.cfg"},
		{"cycle", "cycle/a.cfg", nil, pkg.ErrSyntax, "include cycle"},
		{"depth", "deep/d1.cfg", []Option{WithMaxIncludeDepth(2)}, pkg.ErrSyntax, "include nesting exceeds 2"},
		{"nested syntax", "broken/main.cfg", nil, pkg.ErrSyntax, "inner.cfg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFS(t, tt.file, tt.opts...)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}

			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}

	if _, err := loadFS(t, "deep/d1.cfg"); err != nil {
		t.Errorf("default include depth: %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, "file:///forms/main.cfg", WithLoader(FSLoader(includeFS)))
	if !errors.Is(err, pkg.ErrIO) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled io error, got %v", err)
	}
}

func TestResolveURL(t *testing.T) {
	base, err := ParseURL("file:///forms/main.cfg")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		ref  string
		want string
	}{
		{"parts/a b.cfg", "file:///forms/parts/a%20b.cfg"},
		{"../lib/x.cfg", "file:///lib/x.cfg"},
		{"/abs.cfg", "file:///abs.cfg"},
		{"http://example.com/c.cfg", "http://example.com/c.cfg"},
	}

	for _, tt := range tests {
		u, err := ResolveURL(base, tt.ref)
		if err != nil {
			t.Fatalf("%s: %v", tt.ref, err)
		}

		if u.String() != tt.want {
			t.Errorf("ResolveURL(%q) = %s, want %s", tt.ref, u, tt.want)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	var sb strings.Builder

	sb.WriteString("Form(Tabs(Main(Controls(\n")

	for i := range 500 {
		sb.WriteString(`(ID "C`)
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(`" TYPE "textfield" AUTOFILL(CAT(VALUE "A" " Inc.")))`)
		sb.WriteByte('\n')
	}

	sb.WriteString("))))")

	src := sb.String()

	for b.Loop() {
		if _, err := ParseString(context.Background(), "file:///bench.cfg", src); err != nil {
			b.Fatal(err)
		}
	}
}
