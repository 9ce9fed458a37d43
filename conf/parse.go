package conf

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/formkit/log"
	"github.com/ardnew/formkit/pkg"
)

// DefaultMaxIncludeDepth bounds the nesting of %include directives.
const DefaultMaxIncludeDepth = 32

// Option configures parsing.
type Option func(*options)

type options struct {
	logger          log.Logger
	loader          Loader
	aliases         *Aliases
	searchDirs      []string
	maxIncludeDepth int
}

func makeOptions(opts ...Option) options {
	o := options{
		loader:          DefaultLoader,
		aliases:         LegacyAliases,
		maxIncludeDepth: DefaultMaxIncludeDepth,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithLogger sets the logger used to trace parsing.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithLoader sets the loader used to open documents and includes.
func WithLoader(loader Loader) Option {
	return func(o *options) {
		if loader != nil {
			o.loader = loader
		}
	}
}

// WithAliases sets the alias table attached to every parsed node.
func WithAliases(aliases *Aliases) Option {
	return func(o *options) {
		if aliases != nil {
			o.aliases = aliases
		}
	}
}

// WithSearchPath adds directories searched for relative includes that do not
// exist next to the including document.
func WithSearchPath(dirs ...string) Option {
	return func(o *options) { o.searchDirs = append(o.searchDirs, dirs...) }
}

// WithMaxIncludeDepth sets the maximum nesting of %include directives.
func WithMaxIncludeDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxIncludeDepth = depth
		}
	}
}

// Load opens the document at src (a URL or a file path) with the configured
// loader and parses it.
func Load(ctx context.Context, src string, opts ...Option) (*Node, error) {
	o := makeOptions(opts...)

	u, err := ParseURL(src)
	if err != nil {
		return nil, err
	}

	rc, err := o.loader.Open(ctx, u)
	if err != nil {
		return nil, pkg.ErrIO.Wrap(err).With(slog.String("url", u.String()))
	}

	return newParser(ctx, o).parse(u, rc, 0)
}

// Parse parses the document read from r. The URL src names the document in
// errors and is the base against which includes are resolved; an empty src
// resolves includes against the working directory.
//
// If r implements [io.Closer], it is closed before Parse returns.
func Parse(
	ctx context.Context,
	src string,
	r io.Reader,
	opts ...Option,
) (*Node, error) {
	u, err := baseURL(src)
	if err != nil {
		if c, ok := r.(io.Closer); ok {
			_ = c.Close()
		}

		return nil, err
	}

	return newParser(ctx, makeOptions(opts...)).parse(u, r, 0)
}

// ParseString parses the document s. See [Parse].
func ParseString(
	ctx context.Context,
	src, s string,
	opts ...Option,
) (*Node, error) {
	return Parse(ctx, src, strings.NewReader(s), opts...)
}

func baseURL(src string) (*url.URL, error) {
	if src != "" {
		return ParseURL(src)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, pkg.ErrIO.Wrap(err)
	}

	return &url.URL{
		Scheme: "file",
		Path:   strings.TrimSuffix(filepath.ToSlash(wd), "/") + "/",
	}, nil
}

type parser struct {
	options

	ctx        context.Context
	cache      map[uint64]*Node // included documents by URL hash
	active     []string         // URLs of the documents being parsed
	searchPath []string
}

func newParser(ctx context.Context, o options) *parser {
	if ctx == nil {
		ctx = context.Background()
	}

	return &parser{
		options: o,
		ctx:     ctx,
		cache:   map[uint64]*Node{},
	}
}

// parse tokenizes and parses one document, closing r on every path.
func (p *parser) parse(u *url.URL, r io.Reader, depth int) (*Node, error) {
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	ra := readahead.NewReader(r)
	defer ra.Close()

	name := u.String()

	t, err := tokenize(name, ra)
	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(p.ctx, "tokenized",
		slog.String("url", name),
		slog.Int("lines", len(t.lines)),
		slog.Int("tokens", len(t.tokens)),
	)

	p.active = append(p.active, name)
	defer func() { p.active = p.active[:len(p.active)-1] }()

	root := &Node{name: name, aliases: p.aliases}
	stack := []*Node{root}
	opens := []token{} // '(' tokens matching stack[1:]

	for i := 0; ; i++ {
		tok := t.tokens[i]
		top := stack[len(stack)-1]

		switch tok.kind {
		case tokKey:
			j := t.after(i)
			next := t.tokens[j]

			switch next.kind {
			case tokString:
				top.children = append(top.children, &Node{
					name:     tok.text,
					children: []*Node{{name: next.text, aliases: p.aliases}},
					aliases:  p.aliases,
				})
				i = j

			case tokOpen:
				n := &Node{name: tok.text, aliases: p.aliases}
				top.children = append(top.children, n)
				stack = append(stack, n)
				opens = append(opens, next)
				i = j

			default:
				return nil, t.errorAt(next.line, next.col,
					"expected string or '(' after key "+strconv.Quote(tok.text)+
						", found "+next.kind.String())
			}

		case tokString:
			top.children = append(top.children,
				&Node{name: tok.text, aliases: p.aliases})

		case tokOpen:
			n := &Node{aliases: p.aliases}
			top.children = append(top.children, n)
			stack = append(stack, n)
			opens = append(opens, tok)

		case tokClose:
			if len(stack) == 1 {
				return nil, t.errorAt(tok.line, tok.col, "unmatched ')'")
			}

			stack = stack[:len(stack)-1]
			opens = opens[:len(opens)-1]

		case tokInclude:
			j := t.after(i)
			next := t.tokens[j]
			if next.kind != tokString {
				return nil, t.errorAt(next.line, next.col,
					"expected string after %include, found "+next.kind.String())
			}

			children, err := p.include(t, tok, u, next.text, depth)
			if err != nil {
				return nil, err
			}

			top.children = append(top.children, children...)
			i = j

		case tokComment:

		case tokEnd:
			if len(opens) > 0 {
				open := opens[len(opens)-1]

				return nil, t.errorAt(open.line, open.col, "unclosed '('")
			}

			return root, nil
		}
	}
}

// include parses the document referenced by ref and returns copies of its
// top-level children.
func (p *parser) include(
	t *tokenizer,
	at token,
	base *url.URL,
	ref string,
	depth int,
) ([]*Node, error) {
	if err := p.ctx.Err(); err != nil {
		return nil, pkg.ErrIO.Wrap(err).With(slog.String("include", ref))
	}

	if depth+1 > p.maxIncludeDepth {
		return nil, t.errorAt(at.line, at.col,
			"include nesting exceeds "+strconv.Itoa(p.maxIncludeDepth))
	}

	u, err := ResolveURL(base, ref)
	if err != nil {
		return nil, t.errorAt(at.line, at.col,
			"invalid include URL "+strconv.Quote(ref))
	}

	doc, err := p.includeDocument(t, at, u, ref, depth)
	if err != nil {
		return nil, err
	}

	children := make([]*Node, len(doc.children))
	for i, c := range doc.children {
		children[i] = c.Copy()
	}

	return children, nil
}

func (p *parser) includeDocument(
	t *tokenizer,
	at token,
	u *url.URL,
	ref string,
	depth int,
) (*Node, error) {
	key := xxh3.HashString(u.String())
	if doc, ok := p.cache[key]; ok {
		return doc, nil
	}

	if slices.Contains(p.active, u.String()) {
		return nil, t.errorAt(at.line, at.col, "include cycle through "+u.String())
	}

	rc, found, err := p.open(u, ref)
	if err != nil {
		return nil, pkg.ErrIO.Wrap(err).With(
			slog.String("url", u.String()),
			slog.String("from", t.url),
			slog.Int("line", at.line),
		)
	}

	if found.String() != u.String() {
		if slices.Contains(p.active, found.String()) {
			_ = rc.Close()

			return nil, t.errorAt(at.line, at.col,
				"include cycle through "+found.String())
		}
	}

	p.logger.DebugContext(p.ctx, "include",
		slog.String("url", found.String()),
		slog.String("from", t.url),
		slog.Int("depth", depth+1),
	)

	doc, err := p.parse(found, rc, depth+1)
	if err != nil {
		return nil, err
	}

	p.cache[key] = doc
	p.cache[xxh3.HashString(found.String())] = doc

	return doc, nil
}

// open opens u, falling back to the include search path for relative file
// references that do not exist next to the including document.
func (p *parser) open(u *url.URL, ref string) (io.ReadCloser, *url.URL, error) {
	rc, err := p.loader.Open(p.ctx, u)
	if err == nil {
		return rc, u, nil
	}

	r, perr := url.Parse(EncodeURL(filepath.ToSlash(ref)))
	if !errors.Is(err, fs.ErrNotExist) || perr != nil ||
		(u.Scheme != "" && u.Scheme != "file") ||
		r.IsAbs() || strings.HasPrefix(r.Path, "/") {
		return nil, nil, err
	}

	if p.searchPath == nil {
		p.searchPath = SearchPath(p.searchDirs...)
	}

	for _, dir := range p.searchPath {
		cand := &url.URL{
			Scheme: "file",
			Path:   path.Join(filepath.ToSlash(dir), r.Path),
		}

		if !strings.HasPrefix(cand.Path, "/") {
			if abs, aerr := filepath.Abs(dir); aerr == nil {
				cand.Path = path.Join(filepath.ToSlash(abs), r.Path)
			}
		}

		if rc, cerr := p.loader.Open(p.ctx, cand); cerr == nil {
			return rc, cand, nil
		}
	}

	return nil, nil, err
}
