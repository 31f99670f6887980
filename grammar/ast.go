// Package grammar defines the grammar AST consumed by the generator
// compiler, along with the character set and literal escape parsers.
package grammar

import (
	"fmt"
	"strings"
)

// Kind of grammar file.
type Kind int

const (
	Combined Kind = iota
	LexerOnly
	ParserOnly
)

// Grammar is a parsed grammar file.
type Grammar struct {
	Name    string
	Kind    Kind
	Options map[string]string
	// Tokens declared in a tokens {} block.
	Tokens []string
	Rules  []*Rule
}

// Rule returns the rule called name, or nil.
func (g *Grammar) Rule(name string) *Rule {
	for _, r := range g.Rules {
		if r.Name == name {
			return r
		}
	}
	return nil
}

func (g *Grammar) String() string {
	prefix := ""
	switch g.Kind {
	case LexerOnly:
		prefix = "lexer "
	case ParserOnly:
		prefix = "parser "
	case Combined:
	}
	out := fmt.Sprintf("%sgrammar %s;\n", prefix, g.Name)
	if len(g.Tokens) > 0 {
		out += fmt.Sprintf("\ntokens { %s }\n", strings.Join(g.Tokens, ", "))
	}
	for _, r := range g.Rules {
		out += "\n" + r.String() + "\n"
	}
	return out
}

// RuleType controls how a rule composes its parts.
//
// Lexer and Fragment rules compose at the character level, Parser rules at the
// token level.
type RuleType int

const (
	Lexer RuleType = iota
	Parser
	Fragment
)

func (r RuleType) String() string {
	switch r {
	case Lexer:
		return "lexer"
	case Parser:
		return "parser"
	case Fragment:
		return "fragment"
	}
	return fmt.Sprintf("RuleType(%d)", int(r))
}

// Rule is a single named grammar rule.
type Rule struct {
	Name string
	Type RuleType
	Body []Operation
	// Skip is set for lexer rules whose tokens are discarded (-> skip).
	Skip bool
}

func (r *Rule) String() string {
	prefix := ""
	if r.Type == Fragment {
		prefix = "fragment "
	}
	var body string
	if len(r.Body) == 1 {
		if alt, ok := r.Body[0].(*Alternate); ok {
			body = alt.alternatives()
		}
	}
	if body == "" {
		body = joinOps(r.Body)
	}
	suffix := ""
	if r.Skip {
		suffix = " -> skip"
	}
	return fmt.Sprintf("%s%s: %s%s;", prefix, r.Name, body, suffix)
}

// Operation is one element of a rule body.
type Operation interface {
	String() string
	operation()
}

// Optional matches Op zero or one times (?).
type Optional struct{ Op Operation }

// Star matches Op zero or more times (*).
type Star struct{ Op Operation }

// Plus matches Op one or more times (+).
type Plus struct{ Op Operation }

// Group is a parenthesised sequence.
type Group struct{ Ops []Operation }

// Alternate is an ordered list of alternative sequences.
type Alternate struct{ Alts [][]Operation }

// TokenRef refers to a lexer rule.
type TokenRef struct{ Name string }

// RuleRef refers to a parser rule.
type RuleRef struct{ Name string }

// StringLiteral is a literal string, with escapes already decoded.
type StringLiteral struct{ Value string }

// Range is a lexical range between two single character strings ('a'..'z').
type Range struct{ Lo, Hi string }

// Any matches any single character (.).
type Any struct{}

// CharacterClass is a bracketed set of Char and CharRange choices.
type CharacterClass struct{ Choices []Operation }

// Char is a single character within a CharacterClass.
type Char struct{ Value rune }

// CharRange is a range of characters within a CharacterClass.
type CharRange struct{ Lo, Hi rune }

// Not negates Op (~).
type Not struct{ Op Operation }

func (*Optional) operation()       {}
func (*Star) operation()           {}
func (*Plus) operation()           {}
func (*Group) operation()          {}
func (*Alternate) operation()      {}
func (*TokenRef) operation()       {}
func (*RuleRef) operation()        {}
func (*StringLiteral) operation()  {}
func (*Range) operation()          {}
func (*Any) operation()            {}
func (*CharacterClass) operation() {}
func (*Char) operation()           {}
func (*CharRange) operation()      {}
func (*Not) operation()            {}

func (o *Optional) String() string { return o.Op.String() + "?" }
func (s *Star) String() string     { return s.Op.String() + "*" }
func (p *Plus) String() string     { return p.Op.String() + "+" }
func (g *Group) String() string    { return "(" + joinOps(g.Ops) + ")" }
func (t *TokenRef) String() string { return t.Name }
func (r *RuleRef) String() string  { return r.Name }
func (*Any) String() string        { return "." }
func (n *Not) String() string      { return "~" + n.Op.String() }

func (a *Alternate) String() string { return "(" + a.alternatives() + ")" }

func (a *Alternate) alternatives() string {
	alts := make([]string, len(a.Alts))
	for i, alt := range a.Alts {
		alts[i] = joinOps(alt)
	}
	return strings.Join(alts, " | ")
}

func (s *StringLiteral) String() string { return Quote(s.Value) }

func (r *Range) String() string { return Quote(r.Lo) + ".." + Quote(r.Hi) }

func (c *CharacterClass) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for _, choice := range c.Choices {
		sb.WriteString(choice.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (c *Char) String() string { return escapeClassRune(c.Value) }

func (c *CharRange) String() string {
	return escapeClassRune(c.Lo) + "-" + escapeClassRune(c.Hi)
}

func joinOps(ops []Operation) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}
