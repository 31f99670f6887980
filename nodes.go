package synfuzz

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// A Generator produces byte sequences according to a fragment of a grammar.
//
// The set of generators is closed: they are constructed with the functions in
// this package and driven by a Fuzzer.
type Generator interface {
	// String renders the generator in an EBNF-like notation.
	String() string

	// generate a value matching the generator.
	generate(ctx *genContext) ([]byte, error)
	// negate produces a value the generator would not produce, where supported.
	negate(ctx *genContext) ([]byte, error)
	// minDepth is the smallest number of nested rule references needed to
	// produce a value. t is non-nil while the registry computes its fixed point.
	minDepth(t *depthTable) int
}

// Must panics if err is non-nil, otherwise returns g.
//
// It is intended for statically assembled grammars.
func Must(g Generator, err error) Generator {
	if err != nil {
		panic(err)
	}
	return g
}

const anyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Printable ASCII, the alphabet negated characters and strings are drawn from.
const (
	printableLo = 0x20
	printableHi = 0x7e
)

func randPrintable(ctx *genContext) rune {
	return rune(printableLo + ctx.rand.Intn(printableHi-printableLo+1))
}

// charMatcher is implemented by generators that produce exactly one character
// from a known set. Such generators can be negated as a character complement.
type charMatcher interface {
	matchRune(r rune) bool
}

func asCharMatcher(g Generator) (charMatcher, bool) {
	switch g := g.(type) {
	case *charLiteral:
		return g, true
	case *charRange:
		return g, true
	case *choice:
		if g.charset {
			return g, true
		}
	}
	return nil, false
}

// sampleRune draws a character that m does not match.
func sampleRune(ctx *genContext, m charMatcher) (rune, bool) {
	for i := 0; i < maxNegateAttempts; i++ {
		if r := randPrintable(ctx); !m.matchRune(r) {
			return r, true
		}
	}
	for r := rune(printableLo); r <= printableHi; r++ {
		if !m.matchRune(r) {
			return r, true
		}
	}
	for r := rune(0xa0); r <= 0xfffd; r++ {
		if r >= 0xd800 && r <= 0xdfff {
			continue
		}
		if !m.matchRune(r) {
			return r, true
		}
	}
	return 0, false
}

func encodeRune(r rune) []byte {
	return utf8.AppendRune(nil, r)
}

func unsupported(g Generator) error {
	return &NegationError{Node: g.String()}
}

// Byte generates a single fixed byte.
func Byte(b byte) Generator { return &byteLiteral{b: b} }

type byteLiteral struct {
	b byte
}

func (l *byteLiteral) String() string { return fmt.Sprintf("0x%02x", l.b) }

func (l *byteLiteral) generate(ctx *genContext) ([]byte, error) {
	return ctx.emit([]byte{l.b}), nil
}

func (l *byteLiteral) negate(ctx *genContext) ([]byte, error) {
	for i := 0; i < maxNegateAttempts; i++ {
		if b := byte(ctx.rand.Intn(256)); b != l.b {
			return ctx.emit([]byte{b}), nil
		}
	}
	return ctx.emit([]byte{^l.b}), nil
}

func (l *byteLiteral) minDepth(*depthTable) int { return 0 }

// Char generates the UTF-8 encoding of a single character.
func Char(r rune) Generator { return &charLiteral{r: r} }

type charLiteral struct {
	r rune
}

func (l *charLiteral) String() string { return strconv.QuoteRune(l.r) }

func (l *charLiteral) generate(ctx *genContext) ([]byte, error) {
	return ctx.emit(encodeRune(l.r)), nil
}

func (l *charLiteral) negate(ctx *genContext) ([]byte, error) {
	r, ok := sampleRune(ctx, l)
	if !ok {
		return nil, unsupported(l)
	}
	return ctx.emit(encodeRune(r)), nil
}

func (l *charLiteral) matchRune(r rune) bool { return r == l.r }

func (l *charLiteral) minDepth(*depthTable) int { return 0 }

// String generates a fixed string.
func String(s string) Generator { return &stringLiteral{s: s} }

type stringLiteral struct {
	s string
}

func (l *stringLiteral) String() string { return strconv.Quote(l.s) }

func (l *stringLiteral) generate(ctx *genContext) ([]byte, error) {
	return ctx.emit([]byte(l.s)), nil
}

func (l *stringLiteral) negate(ctx *genContext) ([]byte, error) {
	var sb strings.Builder
	for i := 0; i < maxNegateAttempts; i++ {
		sb.Reset()
		n := ctx.rand.Intn(ctx.maxRepeat + 1)
		for j := 0; j < n; j++ {
			sb.WriteRune(randPrintable(ctx))
		}
		if sb.String() != l.s {
			return ctx.emit([]byte(sb.String())), nil
		}
	}
	return ctx.emit([]byte(l.s + string(randPrintable(ctx)))), nil
}

func (l *stringLiteral) minDepth(*depthTable) int { return 0 }

// CharRange generates one character in the closed interval [lo, hi].
func CharRange(lo, hi rune) (Generator, error) {
	if lo > hi {
		return nil, invalidf("character range %q..%q is empty", lo, hi)
	}
	if !utf8.ValidRune(lo) || !utf8.ValidRune(hi) {
		return nil, invalidf("character range %U..%U has an invalid bound", lo, hi)
	}
	return &charRange{lo: lo, hi: hi}, nil
}

type charRange struct {
	lo, hi rune
}

func (c *charRange) String() string {
	return fmt.Sprintf("%s..%s", strconv.QuoteRune(c.lo), strconv.QuoteRune(c.hi))
}

func (c *charRange) generate(ctx *genContext) ([]byte, error) {
	for i := 0; i < maxNegateAttempts; i++ {
		r := c.lo + rune(ctx.rand.Int63n(int64(c.hi-c.lo)+1))
		if utf8.ValidRune(r) {
			return ctx.emit(encodeRune(r)), nil
		}
	}
	return ctx.emit(encodeRune(c.lo)), nil
}

func (c *charRange) negate(ctx *genContext) ([]byte, error) {
	r, ok := sampleRune(ctx, c)
	if !ok {
		return nil, unsupported(c)
	}
	return ctx.emit(encodeRune(r)), nil
}

func (c *charRange) matchRune(r rune) bool { return r >= c.lo && r <= c.hi }

func (c *charRange) minDepth(*depthTable) int { return 0 }

// Any generates a single alphanumeric character. It cannot be negated.
func Any() Generator { return anyChar{} }

type anyChar struct{}

func (anyChar) String() string { return "." }

func (anyChar) generate(ctx *genContext) ([]byte, error) {
	return ctx.emit([]byte{anyAlphabet[ctx.rand.Intn(len(anyAlphabet))]}), nil
}

func (a anyChar) negate(*genContext) ([]byte, error) { return nil, unsupported(a) }

func (anyChar) minDepth(*depthTable) int { return 0 }

// Seq concatenates the output of each generator in order.
func Seq(generators ...Generator) Generator { return &sequence{nodes: generators} }

type sequence struct {
	nodes []Generator
}

func (s *sequence) String() string {
	return "(" + joinStrings(s.nodes, " ") + ")"
}

func (s *sequence) generate(ctx *genContext) ([]byte, error) {
	var out []byte
	for _, n := range s.nodes {
		b, err := ctx.generate(n)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

func (s *sequence) negate(*genContext) ([]byte, error) { return nil, unsupported(s) }

func (s *sequence) minDepth(t *depthTable) int { return maxDepthOf(t, s.nodes...) }

// JoinWith concatenates the output of each generator, inserting a fresh sample
// of delimiter between consecutive generators.
func JoinWith(delimiter Generator, generators ...Generator) Generator {
	return &joinWith{delimiter: delimiter, nodes: generators}
}

type joinWith struct {
	delimiter Generator
	nodes     []Generator
}

func (j *joinWith) String() string {
	return fmt.Sprintf("join(%s; %s)", j.delimiter, joinStrings(j.nodes, " "))
}

func (j *joinWith) generate(ctx *genContext) ([]byte, error) {
	var out []byte
	for i, n := range j.nodes {
		if i > 0 {
			b, err := ctx.generate(j.delimiter)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		b, err := ctx.generate(n)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

func (j *joinWith) negate(*genContext) ([]byte, error) { return nil, unsupported(j) }

func (j *joinWith) minDepth(t *depthTable) int {
	d := maxDepthOf(t, j.nodes...)
	if len(j.nodes) > 1 {
		d = max(d, j.delimiter.minDepth(t))
	}
	return d
}

// Choice selects one of its alternatives uniformly at random.
//
// At least one alternative is required.
func Choice(alternatives ...Generator) (Generator, error) {
	if len(alternatives) == 0 {
		return nil, invalidf("choice requires at least one alternative")
	}
	c := &choice{nodes: alternatives, charset: true}
	for _, n := range alternatives {
		if _, ok := asCharMatcher(n); !ok {
			c.charset = false
			break
		}
	}
	return c, nil
}

type choice struct {
	nodes []Generator
	// All alternatives produce exactly one character from a known set.
	charset bool
}

func (c *choice) String() string {
	return "(" + joinStrings(c.nodes, " | ") + ")"
}

// pick an alternative that fits the remaining depth, falling back to the
// shallowest alternatives when none do.
func (c *choice) pick(ctx *genContext) Generator {
	if len(c.nodes) == 1 {
		return c.nodes[0]
	}
	fit := 0
	for _, n := range c.nodes {
		if ctx.fits(n) {
			fit++
		}
	}
	if fit == len(c.nodes) {
		return c.nodes[ctx.rand.Intn(len(c.nodes))]
	}
	candidates := make([]Generator, 0, len(c.nodes))
	if fit > 0 {
		for _, n := range c.nodes {
			if ctx.fits(n) {
				candidates = append(candidates, n)
			}
		}
	} else {
		shallowest := infiniteDepth
		for _, n := range c.nodes {
			shallowest = min(shallowest, ctx.minDepth(n))
		}
		for _, n := range c.nodes {
			if ctx.minDepth(n) == shallowest {
				candidates = append(candidates, n)
			}
		}
	}
	return candidates[ctx.rand.Intn(len(candidates))]
}

func (c *choice) generate(ctx *genContext) ([]byte, error) {
	return ctx.generate(c.pick(ctx))
}

func (c *choice) negate(ctx *genContext) ([]byte, error) {
	if len(c.nodes) == 1 {
		return ctx.negate(c.nodes[0])
	}
	if !c.charset {
		return nil, unsupported(c)
	}
	r, ok := sampleRune(ctx, c)
	if !ok {
		return nil, unsupported(c)
	}
	return ctx.emit(encodeRune(r)), nil
}

func (c *choice) matchRune(r rune) bool {
	for _, n := range c.nodes {
		if m, ok := asCharMatcher(n); ok && m.matchRune(r) {
			return true
		}
	}
	return false
}

func (c *choice) minDepth(t *depthTable) int {
	d := infiniteDepth
	for _, n := range c.nodes {
		d = min(d, n.minDepth(t))
	}
	return d
}

// Many repeats g zero or more times, up to the configured MaxRepeat (exclusive).
//
// Its negation repeats the negation of g the same way. This is an
// approximation rather than a strict complement.
func Many(g Generator) Generator { return &repetition{node: g, min: 0} }

// Many1 repeats g one or more times, up to the configured MaxRepeat (exclusive).
func Many1(g Generator) Generator { return &repetition{node: g, min: 1} }

type repetition struct {
	node Generator
	min  int
}

func (r *repetition) String() string {
	if r.min == 0 {
		return r.node.String() + "*"
	}
	return r.node.String() + "+"
}

func (r *repetition) generate(ctx *genContext) ([]byte, error) {
	return ctx.repeat(ctx.count(r.min, r.node), nil, func() ([]byte, error) {
		return ctx.generate(r.node)
	})
}

func (r *repetition) negate(ctx *genContext) ([]byte, error) {
	return ctx.repeat(ctx.count(r.min, r.node), nil, func() ([]byte, error) {
		return ctx.negate(r.node)
	})
}

func (r *repetition) minDepth(t *depthTable) int {
	if r.min == 0 {
		return 0
	}
	return r.node.minDepth(t)
}

// Optional generates g with probability 1/2, otherwise nothing.
func Optional(g Generator) Generator { return &optional{node: g} }

type optional struct {
	node Generator
}

func (o *optional) String() string { return o.node.String() + "?" }

func (o *optional) generate(ctx *genContext) ([]byte, error) {
	if ctx.fits(o.node) && ctx.rand.Intn(2) == 0 {
		return ctx.generate(o.node)
	}
	return nil, nil
}

func (o *optional) negate(ctx *genContext) ([]byte, error) {
	if ctx.fits(o.node) && ctx.rand.Intn(2) == 0 {
		return ctx.negate(o.node)
	}
	return nil, nil
}

func (o *optional) minDepth(*depthTable) int { return 0 }

// RepeatN repeats g exactly n times.
//
// Its negation repeats g a random number of times other than n.
func RepeatN(g Generator, n int) (Generator, error) {
	if n < 0 {
		return nil, invalidf("repeat count %d is negative", n)
	}
	return &repeatN{node: g, n: n}, nil
}

type repeatN struct {
	node Generator
	n    int
}

func (r *repeatN) String() string { return fmt.Sprintf("%s{%d}", r.node, r.n) }

func (r *repeatN) generate(ctx *genContext) ([]byte, error) {
	return ctx.repeat(r.n, nil, func() ([]byte, error) {
		return ctx.generate(r.node)
	})
}

func (r *repeatN) negate(ctx *genContext) ([]byte, error) {
	count := ctx.rand.Intn(ctx.maxRepeat)
	if count == r.n {
		count++
	}
	return ctx.repeat(count, nil, func() ([]byte, error) {
		return ctx.generate(r.node)
	})
}

func (r *repeatN) minDepth(t *depthTable) int {
	if r.n == 0 {
		return 0
	}
	return r.node.minDepth(t)
}

// Range repeats g a number of times drawn from [n, m).
func Range(g Generator, n, m int) (Generator, error) {
	if n < 0 || n >= m {
		return nil, invalidf("repeat range [%d, %d) is empty", n, m)
	}
	return &repeatRange{node: g, n: n, m: m}, nil
}

type repeatRange struct {
	node Generator
	n, m int
}

func (r *repeatRange) String() string { return fmt.Sprintf("%s{%d,%d}", r.node, r.n, r.m) }

func (r *repeatRange) generate(ctx *genContext) ([]byte, error) {
	count := r.n
	if ctx.fits(r.node) {
		count += ctx.rand.Intn(r.m - r.n)
	}
	return ctx.repeat(count, nil, func() ([]byte, error) {
		return ctx.generate(r.node)
	})
}

func (r *repeatRange) negate(*genContext) ([]byte, error) { return nil, unsupported(r) }

func (r *repeatRange) minDepth(t *depthTable) int {
	if r.n == 0 {
		return 0
	}
	return r.node.minDepth(t)
}

// SepBy repeats g zero or more times, generating sep between repetitions.
func SepBy(sep, g Generator) Generator { return &sepBy{sep: sep, node: g, min: 0} }

// SepBy1 repeats g one or more times, generating sep between repetitions.
func SepBy1(sep, g Generator) Generator { return &sepBy{sep: sep, node: g, min: 1} }

type sepBy struct {
	sep  Generator
	node Generator
	min  int
}

func (s *sepBy) String() string {
	name := "sepBy"
	if s.min > 0 {
		name = "sepBy1"
	}
	return fmt.Sprintf("%s(%s; %s)", name, s.sep, s.node)
}

func (s *sepBy) generate(ctx *genContext) ([]byte, error) {
	return ctx.repeat(ctx.count(s.min, s.node), s.sep, func() ([]byte, error) {
		return ctx.generate(s.node)
	})
}

func (s *sepBy) negate(*genContext) ([]byte, error) { return nil, unsupported(s) }

func (s *sepBy) minDepth(t *depthTable) int {
	if s.min == 0 {
		return 0
	}
	return s.node.minDepth(t)
}

// Not swaps generation and negation of g.
func Not(g Generator) Generator { return &not{node: g} }

type not struct {
	node Generator
}

func (n *not) String() string { return "~" + n.node.String() }

func (n *not) generate(ctx *genContext) ([]byte, error) { return ctx.negate(n.node) }

func (n *not) negate(ctx *genContext) ([]byte, error) { return ctx.generate(n.node) }

func (n *not) minDepth(t *depthTable) int { return n.node.minDepth(t) }

// A reference to a named rule in a Registry, resolved on every use.
type reference struct {
	registry *Registry
	name     string
}

func (r *reference) String() string { return r.name }

// enter resolves the rule and descends one level of recursion.
func (r *reference) enter(ctx *genContext) (Generator, error) {
	g, err := r.registry.Lookup(r.name)
	if err != nil {
		return nil, err
	}
	if err := ctx.checkBudget(); err != nil {
		return nil, err
	}
	ctx.depth++
	if ctx.depth > ctx.maxDepth {
		if ctx.depth > ctx.maxDepth+maxDepthOverrun || ctx.minDepth(g) >= infiniteDepth {
			ctx.depth--
			return nil, &RecursionError{Rule: r.name, Depth: ctx.depth + 1}
		}
	}
	return g, nil
}

func (r *reference) generate(ctx *genContext) ([]byte, error) {
	g, err := r.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { ctx.depth-- }()
	return ctx.generate(g)
}

func (r *reference) negate(ctx *genContext) ([]byte, error) {
	g, err := r.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { ctx.depth-- }()
	return ctx.negate(g)
}

func (r *reference) minDepth(t *depthTable) int {
	return addDepth(1, t.lookup(r.registry, r.name))
}

func joinStrings(nodes []Generator, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}

func maxDepthOf(t *depthTable, nodes ...Generator) int {
	d := 0
	for _, n := range nodes {
		d = max(d, n.minDepth(t))
	}
	return d
}
