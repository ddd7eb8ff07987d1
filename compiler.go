package rulekit

import (
	"fmt"
)

// wsRuleName is the entry of the rule table holding the whitespace
// rule used by `_` and ` `
const wsRuleName = "_"

// compiler generates the pattern of each rule from its sentence.
// Patterns of all rules are allocated before code generation starts,
// so references are resolved by a lookup in rules regardless of the
// order in which rules were defined.
type compiler[T, S any] struct {
	rules  map[string]*Pattern[T, S]
	target *Pattern[T, S]
}

func newCompiler[T, S any](rules map[string]*Pattern[T, S]) *compiler[T, S] {
	return &compiler[T, S]{rules: rules}
}

// emit appends the steps of sentence to p
func (c *compiler[T, S]) emit(p *Pattern[T, S], sentence []Clause) error {
	saved := c.target
	c.target = p
	defer func() { c.target = saved }()
	return WalkSentence(c, sentence)
}

// anonymous compiles sentence into a new pattern without a branch
// function
func (c *compiler[T, S]) anonymous(sentence []Clause) (*Pattern[T, S], error) {
	p := NewPattern[T, S](nil)
	if err := c.emit(p, sentence); err != nil {
		return nil, err
	}
	return p, nil
}

// decorate emits the step built by bare as it is when d is plain.
// Otherwise the bare step is wrapped in a repetition and then in a
// negation, so `!x{2,3}` fails whenever x matches two or three times.
func (c *compiler[T, S]) decorate(d Decoration, bare func(*Pattern[T, S])) {
	if d.IsPlain() {
		bare(c.target)
		return
	}
	inner := NewPattern[T, S](nil)
	bare(inner)
	c.wrap(d, inner)
}

// wrap is decorate for clauses that already have a pattern
func (c *compiler[T, S]) wrap(d Decoration, inner *Pattern[T, S]) {
	if d.Min != 1 || d.Max != 1 {
		if !d.Not {
			c.target.Between(d.Min, d.Max, inner)
			return
		}
		inner = NewPattern[T, S](nil).Between(d.Min, d.Max, inner)
	}
	if d.Not {
		c.target.Not(inner)
		return
	}
	c.target.One(inner)
}

func (c *compiler[T, S]) VisitLiteralClause(n *LiteralClause) error {
	if n.Value == "" {
		return fmt.Errorf("%w: empty literal", ErrInvalidClause)
	}
	c.decorate(n.Decoration, func(p *Pattern[T, S]) { p.Literal(n.Value) })
	return nil
}

func (c *compiler[T, S]) VisitAnyCharClause(n *AnyCharClause) error {
	c.decorate(n.Decoration, func(p *Pattern[T, S]) { p.All() })
	return nil
}

func (c *compiler[T, S]) VisitAnyCharExceptClause(n *AnyCharExceptClause) error {
	if len(n.Chars) == 0 {
		return fmt.Errorf("%w: empty set of excluded chars", ErrInvalidClause)
	}
	c.decorate(n.Decoration, func(p *Pattern[T, S]) { p.AllExcept(n.Chars...) })
	return nil
}

func (c *compiler[T, S]) VisitCharRangesClause(n *CharRangesClause) error {
	if len(n.Ranges) == 0 {
		return fmt.Errorf("%w: empty set of char ranges", ErrInvalidClause)
	}
	for _, r := range n.Ranges {
		if r.Start > r.End {
			return fmt.Errorf("%w: char range `%c-%c` is reversed", ErrInvalidClause, r.Start, r.End)
		}
	}
	c.decorate(n.Decoration, func(p *Pattern[T, S]) {
		if len(n.Ranges) == 1 {
			p.CharIn(n.Ranges[0].Start, n.Ranges[0].End)
			return
		}
		p.Ranges(n.Ranges...)
	})
	return nil
}

func (c *compiler[T, S]) VisitAlterClause(n *AlterClause) error {
	if len(n.Pairs) == 0 {
		return fmt.Errorf("%w: empty alter list", ErrInvalidClause)
	}
	for _, pair := range n.Pairs {
		if pair.Find == "" {
			return fmt.Errorf("%w: alter text to find can't be empty", ErrInvalidClause)
		}
	}
	c.decorate(n.Decoration, func(p *Pattern[T, S]) { p.Alter(n.Pairs...) })
	return nil
}

func (c *compiler[T, S]) VisitAnyOfClause(n *AnyOfClause) error {
	if len(n.Sentences) == 0 {
		return fmt.Errorf("%w: empty alternation", ErrInvalidClause)
	}
	alternatives := make([]*Pattern[T, S], len(n.Sentences))
	for i, sentence := range n.Sentences {
		if len(sentence) == 0 {
			return fmt.Errorf("%w: empty alternative", ErrInvalidClause)
		}
		p, err := c.anonymous(sentence)
		if err != nil {
			return err
		}
		alternatives[i] = p
	}
	c.decorate(n.Decoration, func(p *Pattern[T, S]) { p.AnyOf(alternatives...) })
	return nil
}

func (c *compiler[T, S]) VisitRuleRefClause(n *RuleRefClause) error {
	p, ok := c.rules[n.Name]
	if !ok {
		return fmt.Errorf("%w: `%s`", ErrUnknownRule, n.Name)
	}
	if n.IsPlain() {
		c.target.One(p)
		return nil
	}
	c.wrap(n.Decoration, p)
	return nil
}

func (c *compiler[T, S]) VisitEOFClause(*EOFClause) error {
	c.target.EOF()
	return nil
}

func (c *compiler[T, S]) VisitWhitespaceClause(n *WhitespaceClause) error {
	ws, ok := c.rules[wsRuleName]
	if !ok {
		return fmt.Errorf("%w: whitespace rule", ErrUnknownRule)
	}
	c.target.Between(n.Min, n.Max, ws)
	return nil
}

func (c *compiler[T, S]) VisitNoBacktrackClause(n *NoBacktrackClause) error {
	c.target.NoBacktrack(n.Message)
	return nil
}
