package antlr

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/synfuzz/synfuzz/grammar"
)

// isTokenName reports whether an identifier names a lexer rule.
func isTokenName(s string) bool {
	return strings.ToUpper(s[0:1]) == s[0:1]
}

// greedy drops the non-greedy marker '?' that follows another quantifier.
func greedy(quantifiers []string) []string {
	out := make([]string, 0, len(quantifiers))
	quantified := false
	for _, q := range quantifiers {
		if q == "?" && quantified {
			quantified = false
			continue
		}
		out = append(out, q)
		quantified = true
	}
	return out
}

// rangeBound decodes one quoted bound of a 'a'..'z' range.
func rangeBound(quoted string) (string, error) {
	s, err := grammar.Unquote(quoted)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(s) != 1 {
		return "", fmt.Errorf("range bound %s must be a single character", quoted)
	}
	return s, nil
}

func singleRune(s string) (rune, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return 0, false
	}
	return r, size == len(s)
}
