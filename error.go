package synfuzz

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGenerator is returned when a generator is constructed with invalid arguments.
	ErrInvalidGenerator = errors.New("invalid generator")
	// ErrNegationUnsupported is returned when negating a construct with no defined complement.
	ErrNegationUnsupported = errors.New("negation unsupported")
	// ErrUnknownRule is returned when a rule name is not registered.
	ErrUnknownRule = errors.New("unknown rule")
	// ErrDuplicateRule is returned when a strict registration reuses a rule name.
	ErrDuplicateRule = errors.New("duplicate rule")
	// ErrRecursionLimit is returned when a rule cannot terminate within the depth bound.
	ErrRecursionLimit = errors.New("recursion limit exceeded")
	// ErrBudgetExceeded is returned when generated output grows past the configured size.
	ErrBudgetExceeded = errors.New("generation budget exceeded")
)

// NegationError is returned by Negate when a node has no supported negation.
type NegationError struct {
	// Node is the String() form of the offending generator.
	Node string
}

func (n *NegationError) Error() string {
	return fmt.Sprintf("negation unsupported for %s", n.Node)
}

func (n *NegationError) Is(target error) bool { return target == ErrNegationUnsupported }

// UnknownRuleError is returned when resolving a rule that was never registered.
type UnknownRuleError struct {
	Name string
}

func (u *UnknownRuleError) Error() string {
	return fmt.Sprintf("unknown rule %q", u.Name)
}

func (u *UnknownRuleError) Is(target error) bool { return target == ErrUnknownRule }

// DuplicateRuleError is returned by Registry.Define when the name is already taken.
type DuplicateRuleError struct {
	Name string
}

func (d *DuplicateRuleError) Error() string {
	return fmt.Sprintf("rule %q already registered", d.Name)
}

func (d *DuplicateRuleError) Is(target error) bool { return target == ErrDuplicateRule }

// RecursionError is returned when generation nests deeper than the recursion
// bound and the rule being entered has no terminating derivation.
type RecursionError struct {
	Rule  string
	Depth int
}

func (r *RecursionError) Error() string {
	return fmt.Sprintf("rule %q: recursion limit exceeded at depth %d", r.Rule, r.Depth)
}

func (r *RecursionError) Is(target error) bool { return target == ErrRecursionLimit }

// BudgetError is returned when generated output exceeds the configured maximum size.
type BudgetError struct {
	Limit int
}

func (b *BudgetError) Error() string {
	return fmt.Sprintf("generated output exceeded %d bytes", b.Limit)
}

func (b *BudgetError) Is(target error) bool { return target == ErrBudgetExceeded }

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidGenerator, fmt.Sprintf(format, args...))
}
