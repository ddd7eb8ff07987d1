package rulekit

import (
	"fmt"
	"strings"
)

// noMatch is the progress reported by steps that fail.  Any other
// value is the number of characters consumed.
const noMatch = -1

// scanState holds what doesn't change while a single scan runs
type scanState[S any] struct {
	input  []rune
	shared S
}

// scanCtx is the state threaded through the steps.  Speculative
// attempts work on a branch of the context that is merged back when
// they succeed.
type scanCtx[T, S any] struct {
	state    *scanState[S]
	pos      int
	lexeme   strings.Builder
	branches []T
	// errs only holds errors found at the furthest offset seen so
	// far.  The slice is shared with branches and must never be
	// appended to in place.
	errs []RuleError
	// trail holds the names of the rules being scanned, outermost
	// first.  Like errs, it is shared and copied on append.
	trail []string
}

func (p *Pattern[T, S]) scan(code string, shared S, maxErrors int) ([]T, error) {
	ctx := &scanCtx[T, S]{state: &scanState[S]{input: []rune(code), shared: shared}}
	n, err := p.run(ctx)
	if err != nil {
		return nil, err
	}
	if n == noMatch {
		if len(ctx.errs) == 0 {
			ctx.fail("No match")
		}
		return nil, newScanError(ctx.errs, maxErrors)
	}
	if ctx.pos < len(ctx.state.input) {
		ctx.fail(fmt.Sprintf("Expected EOF but got `%c`", ctx.state.input[ctx.pos]))
		return nil, newScanError(ctx.errs, maxErrors)
	}
	return ctx.branches, nil
}

// branch creates a child context at the same position with an empty
// lexeme and no outputs
func (c *scanCtx[T, S]) branch() *scanCtx[T, S] {
	return &scanCtx[T, S]{state: c.state, pos: c.pos, errs: c.errs, trail: c.trail}
}

// enter pushes the name of a rule onto the trail of c
func (c *scanCtx[T, S]) enter(name string) {
	trail := make([]string, len(c.trail), len(c.trail)+1)
	copy(trail, c.trail)
	c.trail = append(trail, name)
}

// merge folds a child context that succeeded into c and returns how
// far it moved
func (c *scanCtx[T, S]) merge(child *scanCtx[T, S]) int {
	n := child.pos - c.pos
	c.pos = child.pos
	c.errs = child.errs
	c.lexeme.WriteString(child.lexeme.String())
	c.branches = append(c.branches, child.branches...)
	return n
}

// discard drops a child context that failed, keeping its errors.  A
// child starts with the errors of its parent and can only replace
// them with deeper ones.
func (c *scanCtx[T, S]) discard(child *scanCtx[T, S]) {
	c.errs = child.errs
}

func (c *scanCtx[T, S]) peek() (rune, bool) {
	if c.pos >= len(c.state.input) {
		return 0, false
	}
	return c.state.input[c.pos], true
}

func (c *scanCtx[T, S]) advance(r rune) int {
	c.lexeme.WriteRune(r)
	c.pos++
	return 1
}

func (c *scanCtx[T, S]) fail(msg string) int {
	return c.failAt(c.pos, msg)
}

// failAt records an error at offset unless a deeper one is already
// known.  Errors at the same offset are accumulated.
func (c *scanCtx[T, S]) failAt(offset int, msg string) int {
	if len(c.errs) > 0 {
		at := c.errs[0].Offset
		if offset < at {
			return noMatch
		}
		if offset > at {
			c.errs = nil
		}
	}
	errs := make([]RuleError, len(c.errs), len(c.errs)+1)
	copy(errs, c.errs)
	c.errs = append(errs, RuleError{Offset: offset, Message: msg, Trail: c.trail})
	return noMatch
}

// joinErrs combines two error lists following the rules of failAt
func joinErrs(a, b []RuleError) []RuleError {
	switch {
	case len(a) == 0:
		return b
	case len(b) == 0:
		return a
	case a[0].Offset > b[0].Offset:
		return a
	case a[0].Offset < b[0].Offset:
		return b
	}
	errs := make([]RuleError, 0, len(a)+len(b))
	return append(append(errs, a...), b...)
}

// errorOffset is where a failure in this context should be reported
func (c *scanCtx[T, S]) errorOffset() int {
	if len(c.errs) > 0 && c.errs[0].Offset > c.pos {
		return c.errs[0].Offset
	}
	return c.pos
}

// run evaluates the steps of p on a branch of ctx.  The branch is
// merged back, and the branch function applied, only after every
// step matched.
func (p *Pattern[T, S]) run(ctx *scanCtx[T, S]) (int, error) {
	if len(p.steps) == 0 {
		panic("rulekit: pattern has no steps")
	}

	b := ctx.branch()
	if p.name != "" {
		b.enter(p.name)
	}

	// Errors found before a cut are kept apart so the cut is only
	// reported where the steps after it failed.
	cut, hasCut := "", false
	var precut []RuleError

	for i := range p.steps {
		s := &p.steps[i]
		if s.kind == stepNoBacktrack {
			cut, hasCut = s.message, true
			precut = joinErrs(precut, b.errs)
			b.errs = nil
			continue
		}
		n, err := s.run(b)
		if err != nil {
			return noMatch, err
		}
		if n == noMatch {
			if hasCut {
				offset := b.errorOffset()
				b.errs = joinErrs(precut, b.errs)
				ctx.discard(b)
				return noMatch, ThrownError{Message: cut, Offset: offset}
			}
			ctx.discard(b)
			return noMatch, nil
		}
	}
	if hasCut {
		b.errs = joinErrs(precut, b.errs)
	}

	if p.branchFn == nil {
		return ctx.merge(b), nil
	}

	start := ctx.pos
	lexeme := b.lexeme.String()
	out, err := p.branchFn(b.branches, lexeme, ctx.state.shared)
	if err != nil {
		return noMatch, &ActionError{Offset: start, Lexeme: lexeme, Err: err}
	}
	b.branches = out
	return ctx.merge(b), nil
}

func (s *step[T, S]) run(ctx *scanCtx[T, S]) (int, error) {
	switch s.kind {
	case stepAll:
		c, ok := ctx.peek()
		if !ok {
			return ctx.fail("Unexpected EOF"), nil
		}
		return ctx.advance(c), nil

	case stepAllExcept:
		c, ok := ctx.peek()
		if !ok {
			return ctx.fail("Unexpected EOF"), nil
		}
		for _, e := range s.chars {
			if c == e {
				return ctx.fail(fmt.Sprintf("Unexpected `%c`", c)), nil
			}
		}
		return ctx.advance(c), nil

	case stepCharIn, stepRanges:
		c, ok := ctx.peek()
		if !ok {
			return ctx.fail(fmt.Sprintf("Expected %s but got EOF", fmtRanges(s.ranges))), nil
		}
		for _, r := range s.ranges {
			if r.contains(c) {
				return ctx.advance(c), nil
			}
		}
		return ctx.fail(fmt.Sprintf("Expected %s but got `%c`", fmtRanges(s.ranges), c)), nil

	case stepLiteral:
		input := ctx.state.input
		for i, r := range s.text {
			at := ctx.pos + i
			if at >= len(input) || input[at] != r {
				return ctx.failAt(at, fmt.Sprintf("Missing `%s`", string(s.text))), nil
			}
		}
		ctx.pos += len(s.text)
		ctx.lexeme.WriteString(string(s.text))
		return len(s.text), nil

	case stepAlter:
		for _, pair := range s.alter {
			if hasPrefixAt(ctx.state.input, ctx.pos, pair.find) {
				ctx.pos += len(pair.find)
				ctx.lexeme.WriteString(pair.replace)
				return len(pair.find), nil
			}
		}
		return ctx.fail("Expected " + fmtAlter(s.alter)), nil

	case stepEOF:
		if c, ok := ctx.peek(); ok {
			return ctx.fail(fmt.Sprintf("Expected EOF but got `%c`", c)), nil
		}
		return 0, nil

	case stepCall:
		return s.sub.run(ctx)

	case stepAnyOf:
		return s.anyOf(ctx)

	case stepNot:
		return s.not(ctx)

	case stepRepeat:
		return s.repeat(ctx)

	default:
		panic(fmt.Sprintf("rulekit: unknown step %s", s.kind))
	}
}

func (s *step[T, S]) anyOf(ctx *scanCtx[T, S]) (int, error) {
	for _, p := range s.patterns {
		b := ctx.branch()
		n, err := p.run(b)
		if err != nil {
			return noMatch, err
		}
		if n != noMatch {
			return ctx.merge(b), nil
		}
		ctx.discard(b)
	}
	return noMatch, nil
}

// not runs the sub pattern on a throwaway branch.  Cuts don't escape
// it: a ThrownError only means the sub pattern didn't match.
func (s *step[T, S]) not(ctx *scanCtx[T, S]) (int, error) {
	n, err := s.sub.run(ctx.branch())
	if err != nil && !isthrown(err) {
		return noMatch, err
	}
	if err != nil || n == noMatch {
		return 0, nil
	}
	return ctx.fail("Unexpected match"), nil
}

// repeat runs the sub pattern on a single branch until it fails or
// max is reached.  An iteration that matches without consuming input
// would loop forever, so it ends the step right away with no progress
// and without touching ctx.
func (s *step[T, S]) repeat(ctx *scanCtx[T, S]) (int, error) {
	b := ctx.branch()
	var count uint64
	for count < s.max {
		n, err := s.sub.run(b)
		if err != nil {
			return noMatch, err
		}
		if n == noMatch {
			break
		}
		if n == 0 {
			return 0, nil
		}
		count++
	}
	if count < s.min {
		ctx.discard(b)
		return noMatch, nil
	}
	return ctx.merge(b), nil
}

func hasPrefixAt(input []rune, pos int, prefix []rune) bool {
	if pos+len(prefix) > len(input) {
		return false
	}
	for i, r := range prefix {
		if input[pos+i] != r {
			return false
		}
	}
	return true
}

func fmtRanges(ranges []CharRange) string {
	var sb strings.Builder
	sb.WriteRune('`')
	for _, r := range ranges {
		sb.WriteRune(r.Start)
		if r.End != r.Start {
			sb.WriteRune('-')
			sb.WriteRune(r.End)
		}
	}
	sb.WriteRune('`')
	return sb.String()
}

func fmtAlter(pairs []alterPair) string {
	items := make([]string, len(pairs))
	for i, pair := range pairs {
		items[i] = "`" + string(pair.find) + "`"
	}
	return strings.Join(items, ", ")
}
