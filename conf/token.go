package conf

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/ardnew/formkit/pkg"
)

type tokenKind uint8

const (
	tokKey tokenKind = iota
	tokString
	tokOpen
	tokClose
	tokInclude
	tokComment
	tokEnd
)

func (k tokenKind) String() string {
	switch k {
	case tokKey:
		return "key"
	case tokString:
		return "string"
	case tokOpen:
		return "'('"
	case tokClose:
		return "')'"
	case tokInclude:
		return "%include"
	case tokComment:
		return "comment"
	case tokEnd:
		return "end of input"
	default:
		return "unknown"
	}
}

type token struct {
	text string
	line int
	col  int
	kind tokenKind
}

// endTokens is the number of End tokens terminating every token stream,
// enough for the parser's widest lookahead.
const endTokens = 3

const includeDirective = "include"

const bom = '\uFEFF'

// tokenizer splits ConfigTree text into tokens one line at a time.
type tokenizer struct {
	url    string
	lines  []string
	tokens []token
}

func tokenize(url string, r io.Reader) (*tokenizer, error) {
	t := &tokenizer{url: url}
	br := bufio.NewReader(r)

	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 || err == nil {
			line = strings.TrimRight(line, "\r\n")
			t.lines = append(t.lines, line)

			if serr := t.scanLine(len(t.lines), []rune(line)); serr != nil {
				return nil, serr
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, pkg.ErrIO.Wrap(err).With(slog.String("url", url))
		}
	}

	for range endTokens {
		t.tokens = append(t.tokens, token{
			kind: tokEnd,
			line: len(t.lines),
			col:  1,
		})
	}

	return t, nil
}

func (t *tokenizer) emit(kind tokenKind, text string, line, col int) {
	t.tokens = append(t.tokens, token{kind: kind, text: text, line: line, col: col})
}

// after returns the index of the first token following i that is not a
// comment. The token stream always ends with tokEnd.
func (t *tokenizer) after(i int) int {
	for i++; t.tokens[i].kind == tokComment; i++ {
	}

	return i
}

func (t *tokenizer) errorAt(line, col int, msg string) *SyntaxError {
	e := &SyntaxError{URL: t.url, Line: line, Column: col, Msg: msg}
	if line > 0 && line <= len(t.lines) {
		e.Fragment = t.lines[line-1]
	}

	return e
}

func (t *tokenizer) scanLine(num int, rs []rune) error {
	for i := 0; i < len(rs); {
		c := rs[i]
		col := i + 1

		switch {
		case unicode.IsSpace(c) || c == ',' || c == ';' || c == bom:
			i++

		case c == '#':
			t.emit(tokComment, string(rs[i+1:]), num, col)
			i = len(rs)

		case c == '(':
			t.emit(tokOpen, "(", num, col)
			i++

		case c == ')':
			t.emit(tokClose, ")", num, col)
			i++

		case c == '"' || c == '\'':
			var sb strings.Builder

			j := i + 1

			for {
				if j >= len(rs) {
					return t.errorAt(num, col, "unterminated string")
				}

				if rs[j] == c {
					if j+1 < len(rs) && rs[j+1] == c {
						sb.WriteRune(c)

						j += 2

						continue
					}

					break
				}

				sb.WriteRune(rs[j])
				j++
			}

			t.emit(tokString, Unescape(sb.String()), num, col)
			i = j + 1

		case c == '%':
			end := i + 1 + len(includeDirective)
			if end <= len(rs) &&
				string(rs[i+1:end]) == includeDirective &&
				(end == len(rs) || !isIdentRune(rs[end])) {
				t.emit(tokInclude, "%"+includeDirective, num, col)
				i = end

				continue
			}

			return t.errorAt(num, col, "unexpected '%'")

		case isIdentStart(c):
			j := i + 1
			for j < len(rs) && isIdentRune(rs[j]) {
				j++
			}

			t.emit(tokKey, string(rs[i:j]), num, col)
			i = j

		default:
			return t.errorAt(num, col, "unexpected character "+quoteRune(c))
		}
	}

	return nil
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

// IsKey reports whether s can be written as a key.
func IsKey(s string) bool {
	for i, r := range s {
		if !isIdentRune(r) || (i == 0 && !isIdentStart(r)) {
			return false
		}
	}

	return s != ""
}

func quoteRune(r rune) string {
	return "'" + string(r) + "'"
}
