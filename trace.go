package synfuzz

import (
	"fmt"
	"strings"
)

// generate dispatches to g, tracing the visit if enabled.
func (ctx *genContext) generate(g Generator) ([]byte, error) {
	if ctx.trace != nil {
		fmt.Fprintf(ctx.trace, "%s%s\n", strings.Repeat(" ", ctx.indent), g)
		ctx.indent += 2
		defer func() { ctx.indent -= 2 }()
	}
	return g.generate(ctx)
}

// negate dispatches to g's negation, tracing the visit if enabled.
func (ctx *genContext) negate(g Generator) ([]byte, error) {
	if ctx.trace != nil {
		fmt.Fprintf(ctx.trace, "%s~%s\n", strings.Repeat(" ", ctx.indent), g)
		ctx.indent += 2
		defer func() { ctx.indent -= 2 }()
	}
	return g.negate(ctx)
}
