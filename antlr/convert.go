package antlr

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/synfuzz/synfuzz/antlr/ast"
	"github.com/synfuzz/synfuzz/grammar"
)

// Convert an ANTLR syntax tree into a grammar.
//
// Embedded actions, predicates, labels, element options and lexer commands
// other than skip do not affect the generated language and are discarded.
func Convert(file *ast.File) (*grammar.Grammar, error) {
	g := &grammar.Grammar{
		Name:    file.Grammar.Name,
		Options: file.Options(),
		Tokens:  file.Tokens(),
	}
	switch {
	case file.Grammar.LexerOnly:
		g.Kind = grammar.LexerOnly
	case file.Grammar.ParserOnly:
		g.Kind = grammar.ParserOnly
	}
	cv := &ConvertVisitor{grammar: g}
	file.Accept(cv)
	if cv.err != nil {
		return nil, cv.err
	}
	return g, nil
}

// ConvertVisitor visits an ANTLR syntax tree to build grammar operations.
type ConvertVisitor struct {
	ast.BaseVisitor

	grammar *grammar.Grammar
	pos     lexer.Position
	result  []grammar.Operation
	err     error
}

// Visit a node and return the operations it produced.
func (cv *ConvertVisitor) Visit(n ast.Node) []grammar.Operation {
	cv.result = nil
	if cv.err == nil {
		n.Accept(cv)
	}
	return cv.result
}

func (cv *ConvertVisitor) errorf(format string, args ...interface{}) {
	if cv.err == nil {
		cv.err = participle.Errorf(cv.pos, format, args...)
	}
}

func (cv *ConvertVisitor) VisitFile(f *ast.File) {
	for _, r := range f.Rules {
		switch {
		case r.LexRule != nil:
			r.LexRule.Accept(cv)
		case r.PrsRule != nil:
			r.PrsRule.Accept(cv)
		}
		if cv.err != nil {
			return
		}
	}
}

func (cv *ConvertVisitor) VisitLexerRule(lr *ast.LexerRule) {
	cv.pos = lr.Pos
	typ := grammar.Lexer
	if lr.Fragment {
		typ = grammar.Fragment
	}
	body := cv.Visit(lr.Alt)
	if cv.err != nil {
		return
	}
	cv.grammar.Rules = append(cv.grammar.Rules, &grammar.Rule{
		Name: lr.Name,
		Type: typ,
		Body: body,
		Skip: lr.Skip(),
	})
}

func (cv *ConvertVisitor) VisitParserRule(pr *ast.ParserRule) {
	cv.pos = pr.Pos
	body := cv.Visit(pr.Alt)
	if cv.err != nil {
		return
	}
	cv.grammar.Rules = append(cv.grammar.Rules, &grammar.Rule{
		Name: pr.Name,
		Type: grammar.Parser,
		Body: body,
	})
}

// VisitAlternative flattens the chain of alternatives. A single alternative
// yields its own operations, several yield one Alternate.
func (cv *ConvertVisitor) VisitAlternative(a *ast.Alternative) {
	var alts [][]grammar.Operation
	for alt := a; alt != nil; alt = alt.Next {
		var ops []grammar.Operation
		if alt.Exp != nil {
			ops = cv.Visit(alt.Exp)
		}
		alts = append(alts, ops)
		if alt.EmptyNext {
			alts = append(alts, nil)
		}
	}
	if len(alts) == 1 {
		cv.result = alts[0]
		return
	}
	cv.result = []grammar.Operation{&grammar.Alternate{Alts: alts}}
}

func (cv *ConvertVisitor) VisitExpression(exp *ast.Expression) {
	var ops []grammar.Operation
	for ; exp != nil; exp = exp.Next {
		ops = append(ops, cv.Visit(exp.Unary)...)
	}
	cv.result = ops
}

func (cv *ConvertVisitor) VisitUnary(u *ast.Unary) {
	if u.Unary == nil {
		cv.result = cv.Visit(u.Primary)
		return
	}
	ops := cv.Visit(u.Unary)
	switch len(ops) {
	case 0:
		cv.result = nil
	case 1:
		cv.result = []grammar.Operation{&grammar.Not{Op: ops[0]}}
	default:
		cv.result = []grammar.Operation{&grammar.Not{Op: &grammar.Group{Ops: ops}}}
	}
}

func (cv *ConvertVisitor) VisitPrimary(pr *ast.Primary) {
	cv.pos = pr.Pos
	var op grammar.Operation
	switch {
	case pr.Range != nil:
		ops := cv.Visit(pr.Range)
		if len(ops) == 0 {
			return
		}
		op = ops[0]

	case pr.Str != nil:
		s, err := grammar.Unquote(*pr.Str)
		if err != nil {
			cv.errorf("%s", err)
			return
		}
		op = &grammar.StringLiteral{Value: s}

	case pr.Ident != nil:
		if isTokenName(*pr.Ident) {
			op = &grammar.TokenRef{Name: *pr.Ident}
		} else {
			op = &grammar.RuleRef{Name: *pr.Ident}
		}

	case pr.Charset != nil:
		class, err := grammar.ParseCharset(*pr.Charset)
		if err != nil {
			cv.errorf("%s", err)
			return
		}
		op = class

	case pr.Any:
		op = &grammar.Any{}

	case pr.Sub != nil:
		ops := cv.Visit(pr.Sub)
		if cv.err != nil {
			return
		}
		if len(ops) == 1 {
			if alt, ok := ops[0].(*grammar.Alternate); ok {
				op = alt
			}
		}
		if op == nil {
			op = &grammar.Group{Ops: ops}
		}

	default:
		// Actions and predicates.
		cv.result = nil
		return
	}
	op, err := grammar.Unroll(greedy(pr.Quantifiers), op)
	if err != nil {
		cv.errorf("%s", err)
		return
	}
	cv.result = []grammar.Operation{op}
}

func (cv *ConvertVisitor) VisitCharRange(cr *ast.CharRange) {
	lo, err := rangeBound(cr.Start)
	if err != nil {
		cv.errorf("%s", err)
		return
	}
	hi, err := rangeBound(cr.End)
	if err != nil {
		cv.errorf("%s", err)
		return
	}
	cv.result = []grammar.Operation{&grammar.Range{Lo: lo, Hi: hi}}
}
