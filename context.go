package synfuzz

import (
	"io"
	"math/rand"
)

// Maximum number of rejection samples drawn before a literal falls back to a
// deterministic negation.
const maxNegateAttempts = 64

// Depth beyond MaxDepth at which generation aborts regardless of the
// derivation estimates.
const maxDepthOverrun = 1024

// genContext carries the per-call state of a single Generate or Negate.
type genContext struct {
	rand      *rand.Rand
	maxRepeat int
	maxDepth  int
	maxSize   int

	depth  int
	size   int
	depths map[Generator]int

	trace  io.Writer
	indent int
}

// emit accounts for literal output against the size budget.
func (ctx *genContext) emit(b []byte) []byte {
	ctx.size += len(b)
	return b
}

func (ctx *genContext) checkBudget() error {
	if ctx.maxSize > 0 && ctx.size > ctx.maxSize {
		return &BudgetError{Limit: ctx.maxSize}
	}
	return nil
}

// minDepth of g, memoised for the duration of the call.
func (ctx *genContext) minDepth(g Generator) int {
	if d, ok := ctx.depths[g]; ok {
		return d
	}
	d := g.minDepth(nil)
	if ctx.depths == nil {
		ctx.depths = map[Generator]int{}
	}
	ctx.depths[g] = d
	return d
}

// fits reports whether g can complete within the remaining recursion depth.
func (ctx *genContext) fits(g Generator) bool {
	return ctx.minDepth(g) <= ctx.maxDepth-ctx.depth
}

// count draws a repetition count in [lo, MaxRepeat), or lo when child cannot
// fit in the remaining depth.
func (ctx *genContext) count(lo int, child Generator) int {
	if !ctx.fits(child) || ctx.maxRepeat <= lo {
		return lo
	}
	return lo + ctx.rand.Intn(ctx.maxRepeat-lo)
}

// repeat runs fn n times, concatenating results and checking the budget
// between iterations. sep, if non-nil, is generated between iterations.
func (ctx *genContext) repeat(n int, sep Generator, fn func() ([]byte, error)) ([]byte, error) {
	var out []byte
	for i := 0; i < n; i++ {
		if err := ctx.checkBudget(); err != nil {
			return nil, err
		}
		if i > 0 && sep != nil {
			b, err := ctx.generate(sep)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		b, err := fn()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}
