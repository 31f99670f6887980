package grammar

import (
	"fmt"

	"golang.org/x/exp/maps"
)

// QuantifierError is returned by Unroll for an unrecognised quantifier.
type QuantifierError struct {
	Quantifier string
}

func (q *QuantifierError) Error() string {
	return fmt.Sprintf("unknown quantifier %q", q.Quantifier)
}

// Unroll wraps op in one Optional, Star or Plus per postfix quantifier. The
// first quantifier written is the innermost.
func Unroll(quantifiers []string, op Operation) (Operation, error) {
	for _, q := range quantifiers {
		switch q {
		case "?":
			op = &Optional{Op: op}
		case "*":
			op = &Star{Op: op}
		case "+":
			op = &Plus{Op: op}
		default:
			return nil, &QuantifierError{Quantifier: q}
		}
	}
	return op, nil
}

// Merge combines g with other, typically a parser grammar with the lexer
// grammar named by its tokenVocab option.
//
// A nil receiver returns other.
func (g *Grammar) Merge(other *Grammar) (*Grammar, error) {
	if g == nil {
		return other, nil
	}
	if other.Kind == ParserOnly && g.Kind != ParserOnly {
		return other.Merge(g)
	}
	if g.Kind == ParserOnly {
		if vocab := g.Options["tokenVocab"]; vocab != other.Name {
			return nil, fmt.Errorf("parser %s expected lexer %s but found %s", g.Name, vocab, other.Name)
		}
	}
	ret := &Grammar{
		Name:    g.Name,
		Kind:    g.Kind,
		Options: map[string]string{},
		Tokens:  append(append([]string{}, g.Tokens...), other.Tokens...),
		Rules:   append(append([]*Rule{}, g.Rules...), other.Rules...),
	}
	if g.Kind != other.Kind {
		ret.Kind = Combined
	}
	maps.Copy(ret.Options, other.Options)
	maps.Copy(ret.Options, g.Options)
	return ret, nil
}
