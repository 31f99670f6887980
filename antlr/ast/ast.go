// Package ast is a participle grammar for ANTLR4 grammar files.
package ast

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	Lexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "comment", Pattern: `//[^\n]*`, Action: nil},
			{Name: "blockComment", Pattern: `/\*`, Action: lexer.Push("BlockComment")},
			{Name: "String", Pattern: `'(\\.|[^'\\])*'`, Action: nil},
			{Name: "Charset", Pattern: `\[(\\.|[^\]\\])*\]`, Action: nil},
			{Name: "Action", Pattern: `\{([^{}]|\{([^{}]|\{[^{}]*\})*\})*\}`, Action: nil},
			{Name: "UpperIdent", Pattern: `[A-Z][a-zA-Z_0-9]*`, Action: nil},
			{Name: "LowerIdent", Pattern: `[a-z][a-zA-Z_0-9]*`, Action: nil},
			{Name: "Int", Pattern: `[0-9]+`, Action: nil},
			{Name: "Punct", Pattern: `[-!@#$%^&*()+=|:;"<,>.?/~]`, Action: nil},
			{Name: "whitespace", Pattern: `[ \t\r\n]+`, Action: nil},
		},
		"BlockComment": {
			{Name: "end", Pattern: `\*+/`, Action: lexer.Pop()},
			{Name: "any", Pattern: `([^*]|\*+[^*/])+`, Action: nil},
		},
	})
	Parser = MustBuildParser[File]()
)

// MustBuildParser builds a parser for any node of the ANTLR grammar.
func MustBuildParser[T any]() *participle.Parser[T] {
	return participle.MustBuild[T](
		participle.Lexer(Lexer),
		participle.Elide("comment", "blockComment", "end", "any", "whitespace"),
		participle.UseLookahead(2),
	)
}

// Node is implemented by every node of the ANTLR syntax tree.
type Node interface {
	Accept(Visitor)
}

type Visitor interface {
	VisitFile(*File)
	VisitGrammarStmt(*GrammarStmt)
	VisitParserRule(*ParserRule)
	VisitLexerRule(*LexerRule)
	VisitAlternative(*Alternative)
	VisitExpression(*Expression)
	VisitUnary(*Unary)
	VisitPrimary(*Primary)
	VisitCharRange(*CharRange)
}

type BaseVisitor struct{}

func (bv *BaseVisitor) VisitFile(f *File)                {}
func (bv *BaseVisitor) VisitGrammarStmt(gs *GrammarStmt) {}
func (bv *BaseVisitor) VisitParserRule(pr *ParserRule)   {}
func (bv *BaseVisitor) VisitLexerRule(lr *LexerRule)     {}
func (bv *BaseVisitor) VisitAlternative(a *Alternative)  {}
func (bv *BaseVisitor) VisitExpression(exp *Expression)  {}
func (bv *BaseVisitor) VisitUnary(u *Unary)              {}
func (bv *BaseVisitor) VisitPrimary(pr *Primary)         {}
func (bv *BaseVisitor) VisitCharRange(cr *CharRange)     {}

// File is a whole .g4 file.
type File struct {
	Grammar  *GrammarStmt `parser:" @@ "`
	Prequels []*Prequel   `parser:" @@* "`
	Rules    []*Rule      `parser:" ( 'mode' ( UpperIdent | LowerIdent ) ';' | @@ )* "`
}

func (f *File) Accept(v Visitor) {
	v.VisitFile(f)
}

// LexRules returns the lexer and fragment rules in declaration order.
func (f *File) LexRules() []*LexerRule {
	var out []*LexerRule
	for _, r := range f.Rules {
		if r.LexRule != nil {
			out = append(out, r.LexRule)
		}
	}
	return out
}

// PrsRules returns the parser rules in declaration order.
func (f *File) PrsRules() []*ParserRule {
	var out []*ParserRule
	for _, r := range f.Rules {
		if r.PrsRule != nil {
			out = append(out, r.PrsRule)
		}
	}
	return out
}

// Options declared in options {} blocks. Quoted values are returned without quotes.
func (f *File) Options() map[string]string {
	opts := map[string]string{}
	for _, p := range f.Prequels {
		if p.Options == nil {
			continue
		}
		for _, stmt := range strings.Split(actionBody(*p.Options), ";") {
			key, value, ok := strings.Cut(stmt, "=")
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
				value = value[1 : len(value)-1]
			}
			opts[strings.TrimSpace(key)] = value
		}
	}
	return opts
}

// Tokens declared in tokens {} blocks.
func (f *File) Tokens() []string {
	var out []string
	for _, p := range f.Prequels {
		if p.Tokens == nil {
			continue
		}
		for _, tok := range strings.Split(actionBody(*p.Tokens), ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				out = append(out, tok)
			}
		}
	}
	return out
}

func actionBody(action string) string {
	return strings.TrimSuffix(strings.TrimPrefix(action, "{"), "}")
}

type GrammarStmt struct {
	LexerOnly  bool   `parser:" @'lexer'? "`
	ParserOnly bool   `parser:" @'parser'? "`
	Name       string `parser:" 'grammar' @( UpperIdent | LowerIdent ) ';' "`
}

func (gs *GrammarStmt) Accept(v Visitor) {
	v.VisitGrammarStmt(gs)
}

// Prequel is a statement between the grammar header and the first rule.
type Prequel struct {
	Options  *string  `parser:"   'options' @Action "`
	Tokens   *string  `parser:" | 'tokens' @Action "`
	Channels *string  `parser:" | 'channels' @Action "`
	Imports  []string `parser:" | 'import' @( UpperIdent | LowerIdent ) ( '=' ( UpperIdent | LowerIdent ) )? ( ',' @( UpperIdent | LowerIdent ) ( '=' ( UpperIdent | LowerIdent ) )? )* ';' "`
	Action   *string  `parser:" | '@' ( UpperIdent | LowerIdent ) ( ':' ':' ( UpperIdent | LowerIdent ) )? @Action "`
}

type Rule struct {
	LexRule *LexerRule  `parser:" ( @@ "`
	PrsRule *ParserRule `parser:" | @@ ) "`
}

type ParserRule struct {
	Pos lexer.Position

	Name     string       `parser:" @LowerIdent "`
	Args     *string      `parser:" @Charset? "`
	Returns  *string      `parser:" ( 'returns' @Charset )? "`
	Locals   *string      `parser:" ( 'locals' @Charset )? "`
	Actions  []string     `parser:" ( 'options' @Action | '@' ( UpperIdent | LowerIdent ) @Action )* "`
	Alt      *Alternative `parser:" ':' @@ ';' "`
	Handlers []string     `parser:" ( 'catch' Charset @Action | 'finally' @Action )* "`
}

func (pr *ParserRule) Accept(v Visitor) {
	v.VisitParserRule(pr)
}

type LexerRule struct {
	Pos lexer.Position

	Fragment bool         `parser:" @'fragment'? "`
	Name     string       `parser:" @UpperIdent ':' "`
	Alt      *Alternative `parser:" @@ "`
	Commands []*Command   `parser:" ( '-' '>' @@ ( ',' @@ )* )? ';' "`
}

func (lr *LexerRule) Accept(v Visitor) {
	v.VisitLexerRule(lr)
}

// Skip reports whether the rule carries a skip command.
func (lr *LexerRule) Skip() bool {
	for _, cmd := range lr.Commands {
		if cmd.Name == "skip" {
			return true
		}
	}
	return false
}

// Command is a lexer command such as skip or channel(HIDDEN).
type Command struct {
	Name string  `parser:" @( UpperIdent | LowerIdent ) "`
	Arg  *string `parser:" ( '(' @( UpperIdent | LowerIdent | Int ) ')' )? "`
}

type Alternative struct {
	Exp       *Expression  `parser:" @@? "`
	Label     *string      `parser:" ( '#' @( UpperIdent | LowerIdent ) )? "`
	Next      *Alternative `parser:" ( '|' @@ "`
	EmptyNext bool         `parser:" | @'|' (?= ';' | ')' | '-' ) )? "`
}

func (a *Alternative) Accept(v Visitor) {
	v.VisitAlternative(a)
}

type Expression struct {
	Options *string     `parser:" ( '<' @( ( UpperIdent | LowerIdent ) ( '=' ( UpperIdent | LowerIdent | Int ) )? ) '>' )? "`
	Label   *string     `parser:" ( @( UpperIdent | LowerIdent ) "`
	LabelOp *string     `parser:"   @( '=' | '+' '=' ) )? "`
	Unary   *Unary      `parser:" @@ "`
	Next    *Expression `parser:" ( @@ )? "`
}

func (exp *Expression) Accept(v Visitor) {
	v.VisitExpression(exp)
}

type Unary struct {
	Op      string   `parser:" ( @( '~' ) "`
	Unary   *Unary   `parser:"     @@   ) "`
	Primary *Primary `parser:" | @@ "`
}

func (u *Unary) Accept(v Visitor) {
	v.VisitUnary(u)
}

type Primary struct {
	Pos lexer.Position

	Range       *CharRange   `parser:" ( @@ "`
	Str         *string      `parser:" | @String "`
	Ident       *string      `parser:" | @( UpperIdent | LowerIdent ) "`
	Charset     *string      `parser:" | @Charset "`
	Any         bool         `parser:" | @'.' "`
	Sub         *Alternative `parser:" | '(' @@ ')' "`
	Action      *string      `parser:" | @Action ) "`
	Quantifiers []string     `parser:" @( '?' | '*' | '+' )* "`
}

func (pr *Primary) Accept(v Visitor) {
	v.VisitPrimary(pr)
}

type CharRange struct {
	Start string `parser:" @String '.' '.' "`
	End   string `parser:" @String "`
}

func (cr *CharRange) Accept(v Visitor) {
	v.VisitCharRange(cr)
}
