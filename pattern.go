package rulekit

import (
	"fmt"
	"math"
)

// Unbounded is the maximum count of a repetition without upper limit
const Unbounded uint64 = math.MaxUint64

// BranchFn receives the outputs produced by the steps of a pattern,
// the text they consumed, and the value shared by the whole scan.
// What it returns replaces those outputs in the caller.
type BranchFn[T, S any] func(branches []T, lexeme string, shared S) ([]T, error)

// AlterText is one find/replace pair of an Alter step.  The text
// consumed is Find, but the lexeme receives Replace.
type AlterText struct {
	Find    string
	Replace string
}

// CharRange is an inclusive interval of code points
type CharRange struct {
	Start rune
	End   rune
}

func (r CharRange) contains(c rune) bool { return c >= r.Start && c <= r.End }

type stepKind int

const (
	stepAll stepKind = iota
	stepAllExcept
	stepAlter
	stepAnyOf
	stepCall
	stepCharIn
	stepEOF
	stepLiteral
	stepNoBacktrack
	stepNot
	stepRanges
	stepRepeat
)

func (k stepKind) String() string {
	return [...]string{
		"all", "all_except", "alter", "any_of", "call", "char_in", "eof",
		"literal", "no_backtrack", "not", "ranges", "repeat",
	}[k]
}

type alterPair struct {
	find    []rune
	replace string
}

type step[T, S any] struct {
	kind     stepKind
	text     []rune
	chars    []rune
	ranges   []CharRange
	alter    []alterPair
	patterns []*Pattern[T, S]
	sub      *Pattern[T, S]
	min, max uint64
	message  string
}

// Pattern is a sequence of steps that either all match, one after
// the other, or fail together.  Patterns are built by chaining the
// methods below and can reference each other, including themselves,
// which allows recursive grammars.
type Pattern[T, S any] struct {
	steps    []step[T, S]
	branchFn BranchFn[T, S]
	name     string
}

// NewPattern creates an empty pattern.  fn may be nil, in which case
// the outputs of the steps are passed along to the caller untouched.
func NewPattern[T, S any](fn BranchFn[T, S]) *Pattern[T, S] {
	return &Pattern[T, S]{branchFn: fn}
}

// Named labels the pattern.  Errors found while the pattern is being
// scanned carry the labels of every named pattern they happened in.
func (p *Pattern[T, S]) Named(name string) *Pattern[T, S] {
	p.name = name
	return p
}

// Name returns the label given by Named
func (p *Pattern[T, S]) Name() string { return p.name }

func (p *Pattern[T, S]) push(s step[T, S]) *Pattern[T, S] {
	p.steps = append(p.steps, s)
	return p
}

func mustPattern[T, S any](op string, sub *Pattern[T, S]) {
	if sub == nil {
		panic(fmt.Sprintf("rulekit: %s needs a pattern", op))
	}
}

// All matches any character
func (p *Pattern[T, S]) All() *Pattern[T, S] {
	return p.push(step[T, S]{kind: stepAll})
}

// AllExcept matches any character not listed in exclude
func (p *Pattern[T, S]) AllExcept(exclude ...rune) *Pattern[T, S] {
	if len(exclude) == 0 {
		panic("rulekit: list of excluded characters is empty")
	}
	return p.push(step[T, S]{kind: stepAllExcept, chars: exclude})
}

// Alter tries each pair in order and matches the first Find found
// under the cursor, writing its Replace to the lexeme
func (p *Pattern[T, S]) Alter(pairs ...AlterText) *Pattern[T, S] {
	if len(pairs) == 0 {
		panic("rulekit: alter list is empty")
	}
	compiled := make([]alterPair, len(pairs))
	for i, pair := range pairs {
		if pair.Find == "" {
			panic("rulekit: alter text to find can't be empty")
		}
		compiled[i] = alterPair{find: []rune(pair.Find), replace: pair.Replace}
	}
	return p.push(step[T, S]{kind: stepAlter, alter: compiled})
}

// AnyOf matches the first pattern, in the given order, that succeeds
func (p *Pattern[T, S]) AnyOf(patterns ...*Pattern[T, S]) *Pattern[T, S] {
	if len(patterns) == 0 {
		panic("rulekit: any_of needs at least one pattern")
	}
	for _, sub := range patterns {
		mustPattern("any_of", sub)
	}
	return p.push(step[T, S]{kind: stepAnyOf, patterns: patterns})
}

// CharIn matches a character between min and max, both inclusive
func (p *Pattern[T, S]) CharIn(min, max rune) *Pattern[T, S] {
	if min > max {
		panic(fmt.Sprintf("rulekit: invalid char range %q-%q", min, max))
	}
	return p.push(step[T, S]{kind: stepCharIn, ranges: []CharRange{{min, max}}})
}

// Ranges matches a character that falls within any of the ranges
func (p *Pattern[T, S]) Ranges(ranges ...CharRange) *Pattern[T, S] {
	if len(ranges) == 0 {
		panic("rulekit: ranges list is empty")
	}
	for _, r := range ranges {
		if r.Start > r.End {
			panic(fmt.Sprintf("rulekit: invalid char range %q-%q", r.Start, r.End))
		}
	}
	return p.push(step[T, S]{kind: stepRanges, ranges: ranges})
}

// EOF matches the end of the input without consuming anything
func (p *Pattern[T, S]) EOF() *Pattern[T, S] {
	return p.push(step[T, S]{kind: stepEOF})
}

// Literal matches text exactly
func (p *Pattern[T, S]) Literal(text string) *Pattern[T, S] {
	if text == "" {
		panic("rulekit: literal text can't be empty")
	}
	return p.push(step[T, S]{kind: stepLiteral, text: []rune(text)})
}

// Not succeeds without consuming input when sub doesn't match
func (p *Pattern[T, S]) Not(sub *Pattern[T, S]) *Pattern[T, S] {
	mustPattern("not", sub)
	return p.push(step[T, S]{kind: stepNot, sub: sub})
}

// NoBacktrack turns any failure of the steps that follow it within
// this pattern into a ThrownError carrying message
func (p *Pattern[T, S]) NoBacktrack(message string) *Pattern[T, S] {
	return p.push(step[T, S]{kind: stepNoBacktrack, message: message})
}

// One runs sub exactly once.  Unlike the repetitions below, outputs
// of a sub pattern that matches the empty string are kept.
func (p *Pattern[T, S]) One(sub *Pattern[T, S]) *Pattern[T, S] {
	mustPattern("one", sub)
	return p.push(step[T, S]{kind: stepCall, sub: sub})
}

func (p *Pattern[T, S]) Maybe(sub *Pattern[T, S]) *Pattern[T, S] {
	return p.Between(0, 1, sub)
}

func (p *Pattern[T, S]) NoneOrMany(sub *Pattern[T, S]) *Pattern[T, S] {
	return p.Between(0, Unbounded, sub)
}

func (p *Pattern[T, S]) AtLeast(count uint64, sub *Pattern[T, S]) *Pattern[T, S] {
	return p.Between(count, Unbounded, sub)
}

func (p *Pattern[T, S]) AtMost(count uint64, sub *Pattern[T, S]) *Pattern[T, S] {
	return p.Between(0, count, sub)
}

func (p *Pattern[T, S]) Exact(count uint64, sub *Pattern[T, S]) *Pattern[T, S] {
	return p.Between(count, count, sub)
}

// Between repeats sub at least min and at most max times
func (p *Pattern[T, S]) Between(min, max uint64, sub *Pattern[T, S]) *Pattern[T, S] {
	mustPattern("repetition", sub)
	if min > max {
		panic(fmt.Sprintf("rulekit: invalid repetition {%d,%d}", min, max))
	}
	return p.push(step[T, S]{kind: stepRepeat, sub: sub, min: min, max: max})
}

// Clear removes all the steps, keeping the branch function
func (p *Pattern[T, S]) Clear() *Pattern[T, S] {
	p.steps = nil
	return p
}

// Scan matches the whole code against the pattern and returns the
// outputs of the outermost branch function.  On failure the error is
// a *ScanError, a ThrownError or an *ActionError.
func (p *Pattern[T, S]) Scan(code string, shared S) ([]T, error) {
	return p.scan(code, shared, 0)
}
