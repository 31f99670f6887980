package synfuzz

import (
	"io"
	"math/rand"
	"time"
)

// Defaults for Fuzzer limits.
const (
	DefaultMaxRepeat = 20
	DefaultMaxDepth  = 16
	DefaultMaxSize   = 1 << 20
)

// A Fuzzer generates values from a root Generator.
//
// Randomness is drawn from a single source guarded by a mutex, so a Fuzzer may
// be shared between goroutines. Output is only reproducible for a fixed seed
// when calls are made sequentially.
type Fuzzer struct {
	root      Generator
	rand      *rand.Rand
	maxRepeat int
	maxDepth  int
	maxSize   int
	trace     io.Writer
}

// New creates a Fuzzer rooted at root.
//
// Without a Seed, Source or FromBytes option the Fuzzer is seeded from the
// current time and its output is not reproducible.
func New(root Generator, options ...Option) (*Fuzzer, error) {
	if root == nil {
		return nil, invalidf("nil root generator")
	}
	f := &Fuzzer{
		root:      root,
		maxRepeat: DefaultMaxRepeat,
		maxDepth:  DefaultMaxDepth,
		maxSize:   DefaultMaxSize,
	}
	for _, option := range options {
		if err := option(f); err != nil {
			return nil, err
		}
	}
	if f.rand == nil {
		f.rand = rand.New(newLockedSource(rand.NewSource(time.Now().UnixNano())))
	}
	return f, nil
}

// MustNew is like New but panics on error.
func MustNew(root Generator, options ...Option) *Fuzzer {
	f, err := New(root, options...)
	if err != nil {
		panic(err)
	}
	return f
}

// Root generator of the Fuzzer.
func (f *Fuzzer) Root() Generator { return f.root }

// Generate a value matching the root generator.
func (f *Fuzzer) Generate() ([]byte, error) {
	ctx := f.context()
	out, err := ctx.generate(f.root)
	if err != nil {
		return nil, err
	}
	if err := ctx.checkBudget(); err != nil {
		return nil, err
	}
	return normalise(out), nil
}

// Negate generates a value the root generator would not produce.
//
// Negation is exact for literals and Not, approximate for repetitions and
// optionals, and unsupported (ErrNegationUnsupported) for sequences, ranges,
// separated repetitions, Any and choices that are not character sets.
func (f *Fuzzer) Negate() ([]byte, error) {
	ctx := f.context()
	out, err := ctx.negate(f.root)
	if err != nil {
		return nil, err
	}
	if err := ctx.checkBudget(); err != nil {
		return nil, err
	}
	return normalise(out), nil
}

func (f *Fuzzer) context() *genContext {
	return &genContext{
		rand:      f.rand,
		maxRepeat: f.maxRepeat,
		maxDepth:  f.maxDepth,
		maxSize:   f.maxSize,
		trace:     f.trace,
	}
}

func normalise(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
