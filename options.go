package synfuzz

import (
	"fmt"
	"io"
	"math/rand"
)

// An Option to modify the behaviour of the Fuzzer.
type Option func(f *Fuzzer) error

// Seed the Fuzzer's random source, making sequential output reproducible.
func Seed(seed int64) Option {
	return Source(rand.NewSource(seed))
}

// Source sets the random source every probabilistic decision is drawn from.
//
// The source is wrapped with a mutex and need not be safe for concurrent use.
func Source(src rand.Source) Option {
	return func(f *Fuzzer) error {
		if src == nil {
			return fmt.Errorf("%w: nil random source", ErrInvalidGenerator)
		}
		f.rand = rand.New(newLockedSource(src))
		return nil
	}
}

// FromBytes draws randomness from data, as supplied by a fuzzing engine.
//
// Once data is exhausted every draw returns zero, which selects the first
// alternative and the minimum repetition count, so generation terminates.
func FromBytes(data []byte) Option {
	return Source(&bytesSource{data: data})
}

// MaxRepeat sets the exclusive upper bound on repetition counts. Default is 20.
func MaxRepeat(n int) Option {
	return func(f *Fuzzer) error {
		if n < 1 {
			return fmt.Errorf("%w: MaxRepeat(%d) must be at least 1", ErrInvalidGenerator, n)
		}
		f.maxRepeat = n
		return nil
	}
}

// MaxDepth bounds the nesting of rule references. Past this depth only the
// shallowest derivations are chosen. Default is 16.
func MaxDepth(n int) Option {
	return func(f *Fuzzer) error {
		if n < 0 {
			return fmt.Errorf("%w: MaxDepth(%d) is negative", ErrInvalidGenerator, n)
		}
		f.maxDepth = n
		return nil
	}
}

// MaxSize bounds the size in bytes of generated output. Zero disables the
// bound. Default is 1MiB.
func MaxSize(n int) Option {
	return func(f *Fuzzer) error {
		if n < 0 {
			return fmt.Errorf("%w: MaxSize(%d) is negative", ErrInvalidGenerator, n)
		}
		f.maxSize = n
		return nil
	}
}

// Trace generation to "w".
func Trace(w io.Writer) Option {
	return func(f *Fuzzer) error {
		f.trace = w
		return nil
	}
}
