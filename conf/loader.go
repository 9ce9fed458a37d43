package conf

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/formkit/pkg"
)

// Loader opens the document identified by a resolved URL.
type Loader interface {
	Open(ctx context.Context, u *url.URL) (io.ReadCloser, error)
}

// LoaderFunc adapts a function to the [Loader] interface.
type LoaderFunc func(ctx context.Context, u *url.URL) (io.ReadCloser, error)

// Open calls f.
func (f LoaderFunc) Open(
	ctx context.Context,
	u *url.URL,
) (io.ReadCloser, error) {
	return f(ctx, u)
}

// DefaultLoader opens file URLs from the local file system and http(s) URLs
// with [http.DefaultClient].
var DefaultLoader Loader = LoaderFunc(openDefault)

func openDefault(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	switch u.Scheme {
	case "", "file":
		return os.Open(filepath.FromSlash(u.Path))

	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}

		rsp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}

		if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
			_ = rsp.Body.Close()

			if rsp.StatusCode == http.StatusNotFound {
				return nil, fs.ErrNotExist
			}

			return nil, pkg.NewError(rsp.Status)
		}

		return rsp.Body, nil

	default:
		return nil, pkg.NewError("unsupported URL scheme").
			With(slog.String("scheme", u.Scheme))
	}
}

// FSLoader returns a [Loader] that opens the paths of file URLs from fsys.
// The leading slash of absolute paths is removed.
func FSLoader(fsys fs.FS) Loader {
	return LoaderFunc(func(_ context.Context, u *url.URL) (io.ReadCloser, error) {
		if u.Scheme != "" && u.Scheme != "file" {
			return nil, pkg.NewError("unsupported URL scheme").
				With(slog.String("scheme", u.Scheme))
		}

		name := strings.TrimPrefix(path.Clean(u.Path), "/")
		if name == "" {
			name = "."
		}

		return fsys.Open(name)
	})
}

var schemeRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]+:`)

// ParseURL interprets s as an absolute URL if it starts with a scheme, and as
// a file path otherwise. Relative paths are made absolute against the working
// directory.
func ParseURL(s string) (*url.URL, error) {
	if schemeRE.MatchString(s) {
		return url.Parse(EncodeURL(s))
	}

	abs, err := filepath.Abs(s)
	if err != nil {
		return nil, pkg.ErrIO.Wrap(err).With(slog.String("path", s))
	}

	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}

// ResolveURL resolves the include reference ref against base.
// Characters that may not appear in a URL are percent-encoded first, so
// "my forms/a.cfg" becomes "my%20forms/a.cfg".
func ResolveURL(base *url.URL, ref string) (*url.URL, error) {
	r, err := url.Parse(EncodeURL(filepath.ToSlash(ref)))
	if err != nil {
		return nil, err
	}

	if base == nil {
		return r, nil
	}

	return base.ResolveReference(r), nil
}

// EncodeURL percent-encodes every byte of s that is neither unreserved nor
// reserved in RFC 3986. Existing escapes are kept.
func EncodeURL(s string) string {
	const safe = "-._~:/?#[]@!$&'()*+,;=%"

	var sb strings.Builder

	for i := range len(s) {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || strings.IndexByte(safe, c) >= 0 {
			sb.WriteByte(c)

			continue
		}

		sb.WriteByte('%')
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0xF])
	}

	return sb.String()
}

// SearchPath returns the include search path: dirs followed by the entries
// of the FORMKIT_INCLUDE_PATH environment variable, without duplicates.
func SearchPath(dirs ...string) []string {
	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(pkg.IncludePathEnv)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
		mung.WithFilter(func(s string) bool { return strings.TrimSpace(s) != "" }),
	).String()

	seen := map[string]bool{}

	var out []string

	for dir := range strings.SplitSeq(list, string(os.PathListSeparator)) {
		if dir == "" || seen[dir] {
			continue
		}

		seen[dir] = true
		out = append(out, dir)
	}

	return out
}
