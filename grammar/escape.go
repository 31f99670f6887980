package grammar

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// runeScanner walks the runes of a literal.
type runeScanner struct {
	runes []rune
	pos   int
}

func newRuneScanner(s string) *runeScanner {
	return &runeScanner{runes: []rune(s)}
}

func (s *runeScanner) next() (rune, bool) {
	if s.pos >= len(s.runes) {
		return 0, false
	}
	r := s.runes[s.pos]
	s.pos++
	return r, true
}

func (s *runeScanner) peekAt(n int) (rune, bool) {
	if s.pos+n >= len(s.runes) {
		return 0, false
	}
	return s.runes[s.pos+n], true
}

func (s *runeScanner) done() bool { return s.pos >= len(s.runes) }

// unicodeEscape decodes the part of \uXXXX or \u{X...} after the 'u'.
func (s *runeScanner) unicodeEscape() (rune, error) {
	var digits string
	if r, ok := s.peekAt(0); ok && r == '{' {
		s.pos++
		var sb strings.Builder
		for {
			r, ok := s.next()
			if !ok {
				return 0, fmt.Errorf("unterminated \\u{} escape")
			}
			if r == '}' {
				break
			}
			sb.WriteRune(r)
		}
		digits = sb.String()
		if len(digits) == 0 || len(digits) > 6 {
			return 0, fmt.Errorf("invalid code point \\u{%s}", digits)
		}
	} else {
		var sb strings.Builder
		for i := 0; i < 4; i++ {
			r, ok := s.next()
			if !ok {
				return 0, fmt.Errorf("\\u escape requires four hex digits")
			}
			sb.WriteRune(r)
		}
		digits = sb.String()
	}
	n, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid code point \\u%s", digits)
	}
	if !utf8.ValidRune(rune(n)) {
		return 0, fmt.Errorf("invalid code point \\u%s", digits)
	}
	return rune(n), nil
}

// Unquote decodes a single-quoted ANTLR literal such as 'a\tb'.
func Unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return "", fmt.Errorf("literal %s is not quoted", s)
	}
	sc := newRuneScanner(s[1 : len(s)-1])
	var sb strings.Builder
	for {
		r, ok := sc.next()
		if !ok {
			return sb.String(), nil
		}
		if r != '\\' {
			sb.WriteRune(r)
			continue
		}
		r, ok = sc.next()
		if !ok {
			return "", fmt.Errorf("literal %s: unterminated escape sequence", s)
		}
		switch r {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case '\\', '\'', '"':
			sb.WriteRune(r)
		case 'u':
			u, err := sc.unicodeEscape()
			if err != nil {
				return "", fmt.Errorf("literal %s: %w", s, err)
			}
			sb.WriteRune(u)
		default:
			return "", fmt.Errorf("literal %s: invalid escape sequence \\%c", s, r)
		}
	}
}

// Quote renders s as a single-quoted ANTLR literal.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			sb.WriteString(`\'`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteString(escapeControl(r))
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

// escapeClassRune renders r for use inside a [...] character set.
func escapeClassRune(r rune) string {
	switch r {
	case ']':
		return `\]`
	case '\\':
		return `\\`
	case '-':
		return `\-`
	}
	return escapeControl(r)
}

func escapeControl(r rune) string {
	switch r {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\b':
		return `\b`
	case '\f':
		return `\f`
	}
	if !unicode.IsPrint(r) {
		if r > 0xffff {
			return fmt.Sprintf(`\u{%X}`, r)
		}
		return fmt.Sprintf(`\u%04X`, r)
	}
	return string(r)
}
