package rulekit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateRule is returned when a name is declared or
	// defined twice
	ErrDuplicateRule = errors.New("rule already exists")

	// ErrUnknownRule is returned when an expression references a
	// name that was never declared nor defined, and by Scan when
	// the root rule doesn't exist
	ErrUnknownRule = errors.New("unknown rule")

	// ErrUndefinedRule is returned by Compile for names that were
	// declared but never received an expression
	ErrUndefinedRule = errors.New("rule declared but not defined")

	// ErrMalformedExpr is returned when the meta grammar can't
	// recognize a rule expression
	ErrMalformedExpr = errors.New("malformed expression")

	// ErrInvalidClause is returned for expressions that parse but
	// can't be compiled, like `$+` or `[z-a]`
	ErrInvalidClause = errors.New("invalid clause")
)

// RuleError is one failure recorded while scanning.  Offset counts
// unicode code points from the start of the input.  Trail lists the
// named rules that were being scanned, outermost first.
type RuleError struct {
	Offset  int
	Message string
	Trail   []string
}

func (e RuleError) String() string {
	return fmt.Sprintf("%s @ %d", e.Message, e.Offset)
}

// Path renders the trail as `a => b => c`
func (e RuleError) Path() string {
	return strings.Join(e.Trail, " => ")
}

// ScanError is returned when the input doesn't match.  All entries in
// Errors share the same offset, which is the furthest one the scanner
// reached before giving up.
type ScanError struct {
	Errors []RuleError
}

func newScanError(errs []RuleError, limit int) *ScanError {
	if limit > 0 && len(errs) > limit {
		errs = errs[:limit]
	}
	out := make([]RuleError, len(errs))
	copy(out, errs)
	return &ScanError{Errors: out}
}

// Offset returns the position in which the scanner failed
func (e *ScanError) Offset() int {
	if len(e.Errors) == 0 {
		return 0
	}
	return e.Errors[0].Offset
}

func (e *ScanError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, re := range e.Errors {
		msgs[i] = re.Message
	}
	return fmt.Sprintf("%s @ %d", strings.Join(msgs, "; "), e.Offset())
}

// ThrownError is raised when input fails to match after a
// no-backtrack cut.  It can't be handled by alternation or
// repetition, so the scan ends right away.
type ThrownError struct {
	Message string
	Offset  int
}

func (e ThrownError) Error() string {
	return fmt.Sprintf("%s @ %d", e.Message, e.Offset)
}

func isthrown(err error) bool {
	_, ok := err.(ThrownError)
	return ok
}

// ActionError wraps the error returned by a branch function
type ActionError struct {
	Offset int
	Lexeme string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action failed on `%s` @ %d: %s", e.Lexeme, e.Offset, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// CompileError is the single error reported for a grammar that can't
// be built.  Err wraps one of the sentinel errors declared above.
type CompileError struct {
	Rule string
	Expr string
	Err  error
}

func (e *CompileError) Error() string {
	if e.Expr == "" {
		return fmt.Sprintf("rule `%s`: %s", e.Rule, e.Err)
	}
	return fmt.Sprintf("rule `%s` (%q): %s", e.Rule, e.Expr, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }
