// Package synfuzz generates byte strings from composable grammar generators.
//
// Generators are built from literals and combinators:
//
//	- `Byte`, `Char`, `String` Fixed values.
//	- `CharRange`, `Any` A single character.
//	- `Seq`, `JoinWith` Concatenation, optionally delimited.
//	- `Choice` One alternative, picked uniformly.
//	- `Many`, `Many1`, `RepeatN`, `Range`, `SepBy`, `SepBy1` Repetition.
//	- `Optional` Zero or one.
//	- `Not` Swap generation and negation.
//
// Rules are registered by name in a Registry and referenced with
// Registry.Ref, which is how recursive and forward-referenced grammars are
// expressed:
//
//	reg := synfuzz.NewRegistry()
//	digit := synfuzz.Must(synfuzz.CharRange('0', '9'))
//	reg.Register("number", synfuzz.Many1(digit))
//	reg.Register("expr", synfuzz.Seq(
//		reg.Ref("number"),
//		synfuzz.Optional(synfuzz.Seq(synfuzz.Char('+'), reg.Ref("expr"))),
//	))
//	fuzzer, err := reg.Fuzzer("expr", synfuzz.Seed(1))
//	out, err := fuzzer.Generate()
//
// Every random decision is drawn from the Fuzzer's source; pass Seed or
// Source to make output reproducible, or FromBytes to let a fuzzing engine
// drive generation.
//
// Negation produces a value the generator would not produce. It is exact for
// literals, character ranges, character-set choices and Not, approximate for
// Many, Many1, Optional and RepeatN, and returns ErrNegationUnsupported
// elsewhere.
package synfuzz
