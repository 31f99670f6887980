package synfuzz_test

import (
	"errors"
	"fmt"
	"testing"

	require "github.com/alecthomas/assert/v2"

	"github.com/synfuzz/synfuzz"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		expected string
	}{
		{&synfuzz.NegationError{Node: "."}, synfuzz.ErrNegationUnsupported, `negation unsupported for .`},
		{&synfuzz.UnknownRuleError{Name: "expr"}, synfuzz.ErrUnknownRule, `unknown rule "expr"`},
		{&synfuzz.RecursionError{Rule: "expr", Depth: 17}, synfuzz.ErrRecursionLimit, `rule "expr": recursion limit exceeded at depth 17`},
		{&synfuzz.BudgetError{Limit: 1024}, synfuzz.ErrBudgetExceeded, `generated output exceeded 1024 bytes`},
		{&synfuzz.DuplicateRuleError{Name: "r"}, synfuzz.ErrDuplicateRule, `rule "r" already registered`},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.EqualError(t, tt.err, tt.expected)
			require.True(t, errors.Is(tt.err, tt.sentinel))
			require.True(t, errors.Is(fmt.Errorf("wrapped: %w", tt.err), tt.sentinel))
		})
	}
}

func TestErrorsDoNotCrossMatch(t *testing.T) {
	err := &synfuzz.UnknownRuleError{Name: "x"}
	require.False(t, errors.Is(err, synfuzz.ErrRecursionLimit))
	require.False(t, errors.Is(err, synfuzz.ErrNegationUnsupported))
	require.False(t, errors.Is(err, synfuzz.ErrDuplicateRule))
	require.False(t, errors.Is(&synfuzz.DuplicateRuleError{Name: "x"}, synfuzz.ErrUnknownRule))
}
