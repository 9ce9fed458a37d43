package conf

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

// Escape encodes s for use inside a ConfigTree string.
//
// By default only '%', newline and carriage return are escaped. If all is
// set, every rune that is not a letter or digit is written as one or two
// %uXXXX UTF-16 code units. Delimiter doubling is left to the serializer.
func Escape(s string, all bool) string {
	var sb strings.Builder

	sb.Grow(len(s))

	for _, r := range s {
		switch {
		case all && !unicode.IsLetter(r) && !unicode.IsDigit(r):
			if r1, r2 := utf16.EncodeRune(r); r1 != unicode.ReplacementChar {
				writeUnit(&sb, r1)
				writeUnit(&sb, r2)
			} else {
				writeUnit(&sb, r)
			}

		case r == '%':
			sb.WriteString("%%")

		case r == '\n':
			sb.WriteString("%n")

		case r == '\r':
			writeUnit(&sb, r)

		default:
			sb.WriteRune(r)
		}
	}

	return sb.String()
}

const hexDigits = "0123456789ABCDEF"

func writeUnit(sb *strings.Builder, r rune) {
	sb.WriteString("%u")
	sb.WriteByte(hexDigits[(r>>12)&0xF])
	sb.WriteByte(hexDigits[(r>>8)&0xF])
	sb.WriteByte(hexDigits[(r>>4)&0xF])
	sb.WriteByte(hexDigits[r&0xF])
}

// Unescape decodes the %n, %% and %uXXXX escapes in s. Surrogate pairs
// written as two consecutive %u escapes decode to a single rune. Any other
// '%' sequence is kept literally.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '%') {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '%' || i+1 >= len(s) {
			sb.WriteByte(s[i])
			i++

			continue
		}

		switch s[i+1] {
		case '%':
			sb.WriteByte('%')

			i += 2

		case 'n':
			sb.WriteByte('\n')

			i += 2

		case 'u':
			r, ok := parseUnit(s, i)
			if !ok {
				sb.WriteByte('%')
				i++

				continue
			}

			i += 6

			if utf16.IsSurrogate(r) {
				if r2, ok := parseUnit(s, i); ok {
					if dec := utf16.DecodeRune(r, r2); dec != unicode.ReplacementChar {
						r = dec
						i += 6
					}
				}
			}

			sb.WriteRune(r)

		default:
			sb.WriteByte('%')
			i++
		}
	}

	return sb.String()
}

// parseUnit parses a "%uXXXX" escape starting at s[i].
func parseUnit(s string, i int) (rune, bool) {
	if i+6 > len(s) || s[i] != '%' || s[i+1] != 'u' {
		return 0, false
	}

	var r rune

	for _, c := range []byte(s[i+2 : i+6]) {
		var d byte

		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, false
		}

		r = r<<4 | rune(d)
	}

	return r, true
}
