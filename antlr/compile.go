package antlr

import (
	"errors"
	"fmt"
	"io"

	"github.com/synfuzz/synfuzz"
	"github.com/synfuzz/synfuzz/grammar"
)

// An Option to modify the behaviour of Compile.
type Option func(c *compiler) error

// Delimiter sets the generator placed between the elements of parser rules.
func Delimiter(delimiter synfuzz.Generator) Option {
	return func(c *compiler) error {
		if delimiter == nil {
			return errors.New("delimiter must not be nil")
		}
		c.delimiter = delimiter
		return nil
	}
}

// Strict fails compilation when a rule name is already registered.
func Strict() Option {
	return func(c *compiler) error {
		c.strict = true
		return nil
	}
}

// Trace writes each compiled rule to w.
func Trace(w io.Writer) Option {
	return func(c *compiler) error {
		c.trace = w
		return nil
	}
}

type compiler struct {
	registry  *synfuzz.Registry
	delimiter synfuzz.Generator
	strict    bool
	trace     io.Writer
}

// Compile every rule of g into reg, registered under the rule name.
//
// Names declared in a tokens {} block without a rule of their own generate the
// token name, and EOF generates nothing unless the registry already defines it.
func Compile(reg *synfuzz.Registry, g *grammar.Grammar, options ...Option) error {
	c := &compiler{registry: reg, delimiter: synfuzz.Byte(' ')}
	for _, option := range options {
		if err := option(c); err != nil {
			return err
		}
	}
	for _, rule := range g.Rules {
		gen, err := c.rule(rule)
		if err != nil {
			return fmt.Errorf("%s: %w", rule.Name, err)
		}
		if err := c.register(rule.Name, gen); err != nil {
			return err
		}
		if c.trace != nil {
			fmt.Fprintf(c.trace, "%s %s = %s\n", rule.Type, rule.Name, gen)
		}
	}
	for _, token := range g.Tokens {
		if g.Rule(token) != nil {
			continue
		}
		if _, ok := reg.ID(token); ok {
			continue
		}
		if err := c.register(token, synfuzz.String(token)); err != nil {
			return err
		}
	}
	if _, ok := reg.ID("EOF"); !ok && g.Rule("EOF") == nil {
		if _, err := reg.Register("EOF", synfuzz.String("")); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) register(name string, gen synfuzz.Generator) error {
	var err error
	if c.strict {
		_, err = c.registry.Define(name, gen)
	} else {
		_, err = c.registry.Register(name, gen)
	}
	return err
}

func (c *compiler) rule(rule *grammar.Rule) (synfuzz.Generator, error) {
	return c.sequence(rule.Type == grammar.Parser, rule.Body)
}

// sequence composes ops with the parser delimiter or by plain concatenation.
func (c *compiler) sequence(parser bool, ops []grammar.Operation) (synfuzz.Generator, error) {
	gens := make([]synfuzz.Generator, 0, len(ops))
	for _, op := range ops {
		gen, err := c.operation(parser, op)
		if err != nil {
			return nil, err
		}
		gens = append(gens, gen)
	}
	switch {
	case len(gens) == 1:
		return gens[0], nil
	case parser && len(gens) > 1:
		return synfuzz.JoinWith(c.delimiter, gens...), nil
	}
	return synfuzz.Seq(gens...), nil
}

func (c *compiler) operation(parser bool, op grammar.Operation) (synfuzz.Generator, error) {
	switch op := op.(type) {
	case *grammar.Optional:
		child, err := c.operation(parser, op.Op)
		if err != nil {
			return nil, err
		}
		return synfuzz.Optional(child), nil

	case *grammar.Star:
		child, err := c.operation(parser, op.Op)
		if err != nil {
			return nil, err
		}
		if parser {
			return synfuzz.SepBy(c.delimiter, child), nil
		}
		return synfuzz.Many(child), nil

	case *grammar.Plus:
		child, err := c.operation(parser, op.Op)
		if err != nil {
			return nil, err
		}
		if parser {
			return synfuzz.SepBy1(c.delimiter, child), nil
		}
		return synfuzz.Many1(child), nil

	case *grammar.Group:
		return c.sequence(parser, op.Ops)

	case *grammar.Alternate:
		alts := make([]synfuzz.Generator, 0, len(op.Alts))
		for _, alt := range op.Alts {
			gen, err := c.sequence(parser, alt)
			if err != nil {
				return nil, err
			}
			alts = append(alts, gen)
		}
		return synfuzz.Choice(alts...)

	case *grammar.TokenRef:
		return c.registry.Ref(op.Name), nil

	case *grammar.RuleRef:
		return c.registry.Ref(op.Name), nil

	case *grammar.StringLiteral:
		if r, ok := singleRune(op.Value); ok {
			return synfuzz.Char(r), nil
		}
		return synfuzz.String(op.Value), nil

	case *grammar.Range:
		lo, ok := singleRune(op.Lo)
		if !ok {
			return nil, fmt.Errorf("range bound %s must be a single character", grammar.Quote(op.Lo))
		}
		hi, ok := singleRune(op.Hi)
		if !ok {
			return nil, fmt.Errorf("range bound %s must be a single character", grammar.Quote(op.Hi))
		}
		return synfuzz.CharRange(lo, hi)

	case *grammar.Any:
		return synfuzz.Any(), nil

	case *grammar.CharacterClass:
		choices := make([]synfuzz.Generator, 0, len(op.Choices))
		for _, choice := range op.Choices {
			gen, err := c.operation(parser, choice)
			if err != nil {
				return nil, err
			}
			choices = append(choices, gen)
		}
		return synfuzz.Choice(choices...)

	case *grammar.Char:
		return synfuzz.Char(op.Value), nil

	case *grammar.CharRange:
		return synfuzz.CharRange(op.Lo, op.Hi)

	case *grammar.Not:
		child, err := c.operation(parser, op.Op)
		if err != nil {
			return nil, err
		}
		return synfuzz.Not(child), nil
	}
	return nil, fmt.Errorf("unsupported operation %T", op)
}

// Load parses and merges the grammar files in paths and compiles the result
// into reg.
func Load(reg *synfuzz.Registry, paths []string, options ...Option) error {
	g, err := ParseFiles(paths...)
	if err != nil {
		return err
	}
	return Compile(reg, g, options...)
}

// LoadFile compiles the grammar file at path into a new Registry.
func LoadFile(path string, options ...Option) (*synfuzz.Registry, error) {
	reg := synfuzz.NewRegistry()
	if err := Load(reg, []string{path}, options...); err != nil {
		return nil, err
	}
	return reg, nil
}
