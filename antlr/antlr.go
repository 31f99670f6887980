// Package antlr compiles ANTLR4 grammars into synfuzz generator registries.
//
// Lexer and fragment rules compose at the character level. Parser rules join
// their elements with a delimiter, a single space by default.
//
//	reg, err := antlr.LoadFile("Expr.g4")
//	if err != nil {
//		return err
//	}
//	fuzzer, err := reg.Fuzzer("expr", synfuzz.Seed(1))
package antlr

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/synfuzz/synfuzz/antlr/ast"
	"github.com/synfuzz/synfuzz/grammar"
)

// Parse an ANTLR4 grammar from r.
func Parse(filename string, r io.Reader) (*grammar.Grammar, error) {
	file, err := ast.Parser.Parse(filename, r)
	if err != nil {
		return nil, err
	}
	return Convert(file)
}

// ParseString parses an ANTLR4 grammar from a string.
func ParseString(filename, source string) (*grammar.Grammar, error) {
	return Parse(filename, strings.NewReader(source))
}

// ParseFile parses the ANTLR4 grammar file at path.
func ParseFile(path string) (*grammar.Grammar, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer r.Close()
	return Parse(path, r)
}

// ParseFiles parses and merges grammar files, such as a parser grammar and the
// lexer grammar named by its tokenVocab option.
func ParseFiles(paths ...string) (*grammar.Grammar, error) {
	if len(paths) == 0 {
		return nil, errors.New("no grammar files given")
	}
	var merged *grammar.Grammar
	for _, path := range paths {
		g, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		merged, err = merged.Merge(g)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return merged, nil
}
