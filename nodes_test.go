package synfuzz_test

import (
	"errors"
	"regexp"
	"testing"
	"unicode/utf8"

	require "github.com/alecthomas/assert/v2"

	"github.com/synfuzz/synfuzz"
)

func mustFuzzer(t *testing.T, g synfuzz.Generator, options ...synfuzz.Option) *synfuzz.Fuzzer {
	t.Helper()
	f, err := synfuzz.New(g, append([]synfuzz.Option{synfuzz.Seed(1)}, options...)...)
	require.NoError(t, err)
	return f
}

func generate(t *testing.T, f *synfuzz.Fuzzer) string {
	t.Helper()
	out, err := f.Generate()
	require.NoError(t, err)
	return string(out)
}

func negate(t *testing.T, f *synfuzz.Fuzzer) string {
	t.Helper()
	out, err := f.Negate()
	require.NoError(t, err)
	return string(out)
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		name     string
		gen      synfuzz.Generator
		expected string
	}{
		{"Byte", synfuzz.Byte('x'), "x"},
		{"Char", synfuzz.Char('é'), "é"},
		{"String", synfuzz.String("hello"), "hello"},
		{"EmptyString", synfuzz.String(""), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFuzzer(t, tt.gen)
			for i := 0; i < 10; i++ {
				require.Equal(t, tt.expected, generate(t, f))
			}
		})
	}
}

func TestLiteralNegation(t *testing.T) {
	tests := []struct {
		name    string
		gen     synfuzz.Generator
		literal string
	}{
		{"Byte", synfuzz.Byte('A'), "A"},
		{"Char", synfuzz.Char('a'), "a"},
		{"String", synfuzz.String("abc"), "abc"},
		{"EmptyString", synfuzz.String(""), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFuzzer(t, tt.gen)
			for i := 0; i < 200; i++ {
				require.NotEqual(t, tt.literal, negate(t, f))
			}
		})
	}
}

func TestNegatedCharIsSingleCharacter(t *testing.T) {
	f := mustFuzzer(t, synfuzz.Char('q'))
	for i := 0; i < 200; i++ {
		out := negate(t, f)
		require.Equal(t, 1, utf8.RuneCountInString(out))
		require.NotEqual(t, "q", out)
	}
}

func TestCharRange(t *testing.T) {
	f := mustFuzzer(t, synfuzz.Must(synfuzz.CharRange('a', 'z')))
	for i := 0; i < 500; i++ {
		out := generate(t, f)
		require.Equal(t, 1, len(out))
		require.True(t, out[0] >= 'a' && out[0] <= 'z', "%q out of range", out)

		out = negate(t, f)
		r, _ := utf8.DecodeRuneInString(out)
		require.False(t, r >= 'a' && r <= 'z', "%q in range", out)
	}
}

func TestCharRangeSingleton(t *testing.T) {
	f := mustFuzzer(t, synfuzz.Must(synfuzz.CharRange('k', 'k')))
	require.Equal(t, "k", generate(t, f))
}

func TestConstructionErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (synfuzz.Generator, error)
	}{
		{"InvertedRange", func() (synfuzz.Generator, error) { return synfuzz.CharRange('z', 'a') }},
		{"SurrogateRange", func() (synfuzz.Generator, error) { return synfuzz.CharRange(0xd800, 0xdfff) }},
		{"EmptyChoice", func() (synfuzz.Generator, error) { return synfuzz.Choice() }},
		{"NegativeRepeat", func() (synfuzz.Generator, error) { return synfuzz.RepeatN(synfuzz.Char('x'), -1) }},
		{"EmptyRepeatRange", func() (synfuzz.Generator, error) { return synfuzz.Range(synfuzz.Char('x'), 3, 3) }},
		{"NegativeRepeatRange", func() (synfuzz.Generator, error) { return synfuzz.Range(synfuzz.Char('x'), -1, 2) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.fn()
			require.Error(t, err)
			require.True(t, errors.Is(err, synfuzz.ErrInvalidGenerator))
			require.True(t, g == nil)
		})
	}
}

func TestMustPanics(t *testing.T) {
	require.Panics(t, func() { synfuzz.Must(synfuzz.Choice()) })
}

func TestAny(t *testing.T) {
	f := mustFuzzer(t, synfuzz.Any())
	alnum := regexp.MustCompile(`^[a-zA-Z0-9]$`)
	for i := 0; i < 200; i++ {
		out := generate(t, f)
		require.True(t, alnum.MatchString(out), "%q", out)
	}
	_, err := f.Negate()
	var nerr *synfuzz.NegationError
	require.True(t, errors.As(err, &nerr))
	require.Equal(t, ".", nerr.Node)
}

func TestSeq(t *testing.T) {
	f := mustFuzzer(t, synfuzz.Seq(synfuzz.String("a"), synfuzz.Char('b'), synfuzz.Byte('c')))
	require.Equal(t, "abc", generate(t, f))
	_, err := f.Negate()
	require.True(t, errors.Is(err, synfuzz.ErrNegationUnsupported))

	require.Equal(t, "", generate(t, mustFuzzer(t, synfuzz.Seq())))
}

func TestJoinWith(t *testing.T) {
	tests := []struct {
		name     string
		gen      synfuzz.Generator
		expected string
	}{
		{"Three", synfuzz.JoinWith(synfuzz.Byte(','), synfuzz.String("a"), synfuzz.String("b"), synfuzz.String("c")), "a,b,c"},
		{"One", synfuzz.JoinWith(synfuzz.Byte(','), synfuzz.String("a")), "a"},
		{"None", synfuzz.JoinWith(synfuzz.Byte(',')), ""},
		{"EmptyChild", synfuzz.JoinWith(synfuzz.Byte(' '), synfuzz.String("a"), synfuzz.String(""), synfuzz.String("b")), "a  b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFuzzer(t, tt.gen)
			require.Equal(t, tt.expected, generate(t, f))
			_, err := f.Negate()
			require.True(t, errors.Is(err, synfuzz.ErrNegationUnsupported))
		})
	}
}

func TestJoinWithFreshDelimiter(t *testing.T) {
	delim := synfuzz.Must(synfuzz.Choice(synfuzz.Char(','), synfuzz.Char(';')))
	parts := make([]synfuzz.Generator, 20)
	for i := range parts {
		parts[i] = synfuzz.Char('x')
	}
	f := mustFuzzer(t, synfuzz.JoinWith(delim, parts...))
	seen := map[rune]bool{}
	for _, r := range generate(t, f) {
		if r != 'x' {
			seen[r] = true
		}
	}
	require.Equal(t, map[rune]bool{',': true, ';': true}, seen)
}

func TestChoiceDistribution(t *testing.T) {
	f := mustFuzzer(t, synfuzz.Must(synfuzz.Choice(synfuzz.String("a"), synfuzz.String("b"))))
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		counts[generate(t, f)]++
	}
	require.Equal(t, 2, len(counts))
	require.True(t, counts["a"] > 800 && counts["a"] < 1200, "%v", counts)
	require.True(t, counts["b"] > 800 && counts["b"] < 1200, "%v", counts)
}

func TestChoiceNegation(t *testing.T) {
	t.Run("SingleAlternative", func(t *testing.T) {
		f := mustFuzzer(t, synfuzz.Must(synfuzz.Choice(synfuzz.String("abc"))))
		for i := 0; i < 50; i++ {
			require.NotEqual(t, "abc", negate(t, f))
		}
	})

	t.Run("CharacterSet", func(t *testing.T) {
		digits := synfuzz.Must(synfuzz.CharRange('0', '9'))
		f := mustFuzzer(t, synfuzz.Must(synfuzz.Choice(synfuzz.Char('a'), digits)))
		for i := 0; i < 500; i++ {
			out := negate(t, f)
			require.Equal(t, 1, utf8.RuneCountInString(out))
			r, _ := utf8.DecodeRuneInString(out)
			require.False(t, r == 'a' || (r >= '0' && r <= '9'), "%q", out)
		}
	})

	t.Run("NestedCharacterSet", func(t *testing.T) {
		inner := synfuzz.Must(synfuzz.Choice(synfuzz.Char('x'), synfuzz.Char('y')))
		f := mustFuzzer(t, synfuzz.Must(synfuzz.Choice(inner, synfuzz.Char('z'))))
		for i := 0; i < 200; i++ {
			out := negate(t, f)
			require.NotEqual(t, "x", out)
			require.NotEqual(t, "y", out)
			require.NotEqual(t, "z", out)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		f := mustFuzzer(t, synfuzz.Must(synfuzz.Choice(synfuzz.String("ab"), synfuzz.Char('c'))))
		_, err := f.Negate()
		require.True(t, errors.Is(err, synfuzz.ErrNegationUnsupported))
	})
}

func TestMany(t *testing.T) {
	tests := []struct {
		name    string
		gen     synfuzz.Generator
		options []synfuzz.Option
		min     int
		max     int
	}{
		{"Many", synfuzz.Many(synfuzz.Char('x')), nil, 0, 20},
		{"Many1", synfuzz.Many1(synfuzz.Char('x')), nil, 1, 20},
		{"ManyMaxRepeat", synfuzz.Many(synfuzz.Char('x')), []synfuzz.Option{synfuzz.MaxRepeat(5)}, 0, 5},
		{"Many1MaxRepeatOne", synfuzz.Many1(synfuzz.Char('x')), []synfuzz.Option{synfuzz.MaxRepeat(1)}, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFuzzer(t, tt.gen, tt.options...)
			lengths := map[int]bool{}
			for i := 0; i < 1000; i++ {
				out := generate(t, f)
				require.True(t, len(out) >= tt.min && len(out) < tt.max, "length %d", len(out))
				require.Equal(t, regexp.MustCompile(`^x*$`).MatchString(out), true)
				lengths[len(out)] = true
			}
			require.True(t, lengths[tt.min], "minimum count never drawn")
		})
	}
}

func TestManyNegation(t *testing.T) {
	f := mustFuzzer(t, synfuzz.Many1(synfuzz.Char('x')))
	for i := 0; i < 200; i++ {
		out := negate(t, f)
		n := utf8.RuneCountInString(out)
		require.True(t, n >= 1 && n < 20, "count %d", n)
		for _, r := range out {
			require.NotEqual(t, 'x', r)
		}
	}
}

func TestOptional(t *testing.T) {
	f := mustFuzzer(t, synfuzz.Optional(synfuzz.String("yes")))
	present := 0
	for i := 0; i < 1000; i++ {
		switch out := generate(t, f); out {
		case "yes":
			present++
		case "":
		default:
			t.Fatalf("unexpected output %q", out)
		}
	}
	require.True(t, present > 400 && present < 600, "present %d/1000", present)

	for i := 0; i < 100; i++ {
		require.NotEqual(t, "yes", negate(t, f))
	}
}

func TestRepeatN(t *testing.T) {
	f := mustFuzzer(t, synfuzz.Must(synfuzz.RepeatN(synfuzz.Char('x'), 3)))
	for i := 0; i < 20; i++ {
		require.Equal(t, "xxx", generate(t, f))
	}
	for i := 0; i < 200; i++ {
		out := negate(t, f)
		require.NotEqual(t, 3, len(out))
		require.True(t, regexp.MustCompile(`^x*$`).MatchString(out), "%q", out)
	}
	require.Equal(t, "", generate(t, mustFuzzer(t, synfuzz.Must(synfuzz.RepeatN(synfuzz.Char('x'), 0)))))
}

func TestRange(t *testing.T) {
	f := mustFuzzer(t, synfuzz.Must(synfuzz.Range(synfuzz.Char('x'), 2, 5)))
	lengths := map[int]bool{}
	for i := 0; i < 500; i++ {
		lengths[len(generate(t, f))] = true
	}
	require.Equal(t, map[int]bool{2: true, 3: true, 4: true}, lengths)
	_, err := f.Negate()
	require.True(t, errors.Is(err, synfuzz.ErrNegationUnsupported))
}

func TestSepBy(t *testing.T) {
	tests := []struct {
		name    string
		gen     synfuzz.Generator
		pattern string
	}{
		{"SepBy", synfuzz.SepBy(synfuzz.Byte(','), synfuzz.Char('a')), `^(a(,a)*)?$`},
		{"SepBy1", synfuzz.SepBy1(synfuzz.Byte(','), synfuzz.Char('a')), `^a(,a)*$`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFuzzer(t, tt.gen)
			re := regexp.MustCompile(tt.pattern)
			for i := 0; i < 300; i++ {
				out := generate(t, f)
				require.True(t, re.MatchString(out), "%q", out)
			}
			_, err := f.Negate()
			require.True(t, errors.Is(err, synfuzz.ErrNegationUnsupported))
		})
	}
}

func TestNot(t *testing.T) {
	lit := synfuzz.String("abc")

	f := mustFuzzer(t, synfuzz.Not(synfuzz.Not(lit)))
	require.Equal(t, "abc", generate(t, f))

	f = mustFuzzer(t, synfuzz.Not(lit))
	for i := 0; i < 100; i++ {
		require.NotEqual(t, "abc", generate(t, f))
	}
	require.Equal(t, "abc", negate(t, f))
}

func TestNotNotIsIdentity(t *testing.T) {
	g := synfuzz.Many(synfuzz.Must(synfuzz.CharRange('a', 'f')))
	plain := mustFuzzer(t, g, synfuzz.Seed(99))
	doubled := mustFuzzer(t, synfuzz.Not(synfuzz.Not(g)), synfuzz.Seed(99))
	for i := 0; i < 50; i++ {
		require.Equal(t, generate(t, plain), generate(t, doubled))
	}
}

func TestGeneratorString(t *testing.T) {
	reg := synfuzz.NewRegistry()
	tests := []struct {
		gen      synfuzz.Generator
		expected string
	}{
		{synfuzz.Byte(0), `0x00`},
		{synfuzz.Char('a'), `'a'`},
		{synfuzz.String("a\"b"), `"a\"b"`},
		{synfuzz.Must(synfuzz.CharRange('a', 'z')), `'a'..'z'`},
		{synfuzz.Any(), `.`},
		{synfuzz.Seq(synfuzz.String("a"), synfuzz.Char('b')), `("a" 'b')`},
		{synfuzz.JoinWith(synfuzz.Byte(' '), synfuzz.Char('a'), synfuzz.Char('b')), `join(0x20; 'a' 'b')`},
		{synfuzz.Must(synfuzz.Choice(synfuzz.String("a"), synfuzz.String("b"))), `("a" | "b")`},
		{synfuzz.Many(synfuzz.Char('x')), `'x'*`},
		{synfuzz.Many1(synfuzz.Char('x')), `'x'+`},
		{synfuzz.Optional(reg.Ref("rule")), `rule?`},
		{synfuzz.Must(synfuzz.RepeatN(synfuzz.Char('x'), 3)), `'x'{3}`},
		{synfuzz.Must(synfuzz.Range(synfuzz.Char('x'), 1, 4)), `'x'{1,4}`},
		{synfuzz.SepBy(synfuzz.Byte(','), synfuzz.Any()), `sepBy(0x2c; .)`},
		{synfuzz.SepBy1(synfuzz.Byte(','), synfuzz.Any()), `sepBy1(0x2c; .)`},
		{synfuzz.Not(synfuzz.Char('a')), `~'a'`},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, tt.gen.String())
	}
}
