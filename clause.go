package rulekit

import (
	"fmt"
	"strings"
)

// Clause is one instruction of a rule expression, as produced by the
// meta grammar and consumed by the compiler
type Clause interface {
	// Accept calls the method of the visitor that handles the
	// concrete clause type
	Accept(ClauseVisitor) error

	// Text returns the clause written back in the expression
	// syntax, decorations included
	Text() string

	// String returns a short description used for debugging
	String() string
}

// Decoration is the negation and repetition attached to a clause.
// The zero value isn't valid, clauses start with plainDecoration.
type Decoration struct {
	Not bool
	Min uint64
	Max uint64
}

var plainDecoration = Decoration{Min: 1, Max: 1}

// IsPlain is true for clauses that match exactly once and aren't
// negated
func (d Decoration) IsPlain() bool { return !d.Not && d.Min == 1 && d.Max == 1 }

func (d *Decoration) decorate(n Decoration) { *d = n }

func (d Decoration) prefix() string {
	if d.Not {
		return "!"
	}
	return ""
}

func (d Decoration) suffix() string {
	switch {
	case d.Min == 1 && d.Max == 1:
		return ""
	case d.Min == 0 && d.Max == 1:
		return "?"
	case d.Min == 0 && d.Max == Unbounded:
		return "*"
	case d.Min == 1 && d.Max == Unbounded:
		return "+"
	case d.Max == Unbounded:
		return fmt.Sprintf("{%d,}", d.Min)
	case d.Min == 0:
		return fmt.Sprintf("{,%d}", d.Max)
	case d.Min == d.Max:
		return fmt.Sprintf("{%d}", d.Min)
	default:
		return fmt.Sprintf("{%d,%d}", d.Min, d.Max)
	}
}

func (d Decoration) String() string { return d.prefix() + d.suffix() }

func (d Decoration) wrap(s string) string { return d.prefix() + s + d.suffix() }

// decorated is implemented by the clauses that accept `!` and ranges
type decorated interface {
	Clause
	decorate(Decoration)
}

// Clause Type: Literal

type LiteralClause struct {
	Decoration
	Value string
}

func NewLiteralClause(v string) *LiteralClause {
	return &LiteralClause{Decoration: plainDecoration, Value: v}
}

func (c *LiteralClause) Accept(v ClauseVisitor) error { return v.VisitLiteralClause(c) }
func (c *LiteralClause) Text() string                 { return c.wrap(escapeExpr(c.Value, literalCtrl)) }
func (c *LiteralClause) String() string               { return fmt.Sprintf("Literal(%s)%s", c.Value, c.Decoration) }

// Clause Type: AnyChar

type AnyCharClause struct {
	Decoration
}

func NewAnyCharClause() *AnyCharClause {
	return &AnyCharClause{Decoration: plainDecoration}
}

func (c *AnyCharClause) Accept(v ClauseVisitor) error { return v.VisitAnyCharClause(c) }
func (c *AnyCharClause) Text() string                 { return c.wrap(".") }
func (c *AnyCharClause) String() string               { return "AnyChar" + c.Decoration.String() }

// Clause Type: AnyCharExcept

type AnyCharExceptClause struct {
	Decoration
	Chars []rune
}

func NewAnyCharExceptClause(chars []rune) *AnyCharExceptClause {
	return &AnyCharExceptClause{Decoration: plainDecoration, Chars: chars}
}

func (c *AnyCharExceptClause) Accept(v ClauseVisitor) error { return v.VisitAnyCharExceptClause(c) }

func (c *AnyCharExceptClause) Text() string {
	return c.wrap("[^" + escapeExpr(string(c.Chars), "]") + "]")
}

func (c *AnyCharExceptClause) String() string {
	return fmt.Sprintf("AnyCharExcept(%s)%s", string(c.Chars), c.Decoration)
}

// Clause Type: AnyOf

type AnyOfClause struct {
	Decoration
	Sentences [][]Clause
}

func NewAnyOfClause(sentences [][]Clause) *AnyOfClause {
	return &AnyOfClause{Decoration: plainDecoration, Sentences: sentences}
}

func (c *AnyOfClause) Accept(v ClauseVisitor) error { return v.VisitAnyOfClause(c) }

func (c *AnyOfClause) Text() string {
	items := make([]string, len(c.Sentences))
	for i, sentence := range c.Sentences {
		items[i] = SentenceText(sentence)
	}
	return c.wrap("(" + strings.Join(items, "|") + ")")
}

func (c *AnyOfClause) String() string {
	return fmt.Sprintf("AnyOf(%d)%s", len(c.Sentences), c.Decoration)
}

// Clause Type: CharRanges

type CharRangesClause struct {
	Decoration
	Ranges []CharRange
}

func NewCharRangesClause(ranges []CharRange) *CharRangesClause {
	return &CharRangesClause{Decoration: plainDecoration, Ranges: ranges}
}

func (c *CharRangesClause) Accept(v ClauseVisitor) error { return v.VisitCharRangesClause(c) }

func (c *CharRangesClause) Text() string {
	var sb strings.Builder
	sb.WriteString("[")
	for _, r := range c.Ranges {
		sb.WriteString(escapeExpr(string(r.Start), "-]"))
		sb.WriteString("-")
		sb.WriteString(escapeExpr(string(r.End), "-]"))
	}
	sb.WriteString("]")
	return c.wrap(sb.String())
}

func (c *CharRangesClause) String() string {
	return fmt.Sprintf("CharRanges(%s)%s", strings.Trim(fmtRanges(c.Ranges), "`"), c.Decoration)
}

// Clause Type: RuleRef

type RuleRefClause struct {
	Decoration
	Name string
}

func NewRuleRefClause(name string) *RuleRefClause {
	return &RuleRefClause{Decoration: plainDecoration, Name: name}
}

func (c *RuleRefClause) Accept(v ClauseVisitor) error { return v.VisitRuleRefClause(c) }
func (c *RuleRefClause) Text() string                 { return c.wrap("<" + escapeExpr(c.Name, ">") + ">") }
func (c *RuleRefClause) String() string               { return fmt.Sprintf("RuleRef(%s)%s", c.Name, c.Decoration) }

// Clause Type: Alter

type AlterClause struct {
	Decoration
	Pairs []AlterText
}

func NewAlterClause(pairs []AlterText) *AlterClause {
	return &AlterClause{Decoration: plainDecoration, Pairs: pairs}
}

func (c *AlterClause) Accept(v ClauseVisitor) error { return v.VisitAlterClause(c) }

func (c *AlterClause) Text() string {
	items := make([]string, len(c.Pairs))
	for i, pair := range c.Pairs {
		items[i] = escapeExpr(pair.Find, ",") + "," + escapeExpr(pair.Replace, "|)")
	}
	return c.wrap("(~" + strings.Join(items, "|") + ")")
}

func (c *AlterClause) String() string {
	return fmt.Sprintf("Alter(%d)%s", len(c.Pairs), c.Decoration)
}

// Clause Type: EOF

type EOFClause struct{}

func NewEOFClause() *EOFClause { return &EOFClause{} }

func (c *EOFClause) Accept(v ClauseVisitor) error { return v.VisitEOFClause(c) }
func (c *EOFClause) Text() string                 { return "$" }
func (c *EOFClause) String() string               { return "EOF" }

// Clause Type: Whitespace

type WhitespaceClause struct {
	Min uint64
	Max uint64
}

func NewWhitespaceClause(min, max uint64) *WhitespaceClause {
	return &WhitespaceClause{Min: min, Max: max}
}

func (c *WhitespaceClause) Accept(v ClauseVisitor) error { return v.VisitWhitespaceClause(c) }

func (c *WhitespaceClause) Text() string {
	if c.Min == 0 {
		return " "
	}
	return "_"
}

func (c *WhitespaceClause) String() string {
	return "Whitespace" + Decoration{Min: c.Min, Max: c.Max}.String()
}

// Clause Type: NoBacktrack

type NoBacktrackClause struct {
	Message string
}

func NewNoBacktrackClause(msg string) *NoBacktrackClause {
	return &NoBacktrackClause{Message: msg}
}

func (c *NoBacktrackClause) Accept(v ClauseVisitor) error { return v.VisitNoBacktrackClause(c) }
func (c *NoBacktrackClause) Text() string                 { return "@" + escapeExpr(c.Message, "@") + "@" }
func (c *NoBacktrackClause) String() string               { return fmt.Sprintf("NoBacktrack(%s)", c.Message) }

// SentenceText writes a sequence of clauses back in the expression
// syntax
func SentenceText(sentence []Clause) string {
	var sb strings.Builder
	for _, c := range sentence {
		sb.WriteString(c.Text())
	}
	return sb.String()
}

// literalCtrl lists the characters that can't appear unescaped in a
// literal
const literalCtrl = "<{()|[+?*.$ _!@"

// escapeExpr escapes the characters of s found in ctrl.  Only the
// characters with an escape sequence are handled, the others are
// written as they are.
func escapeExpr(s, ctrl string) string {
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(ctrl, r) && strings.ContainsRune(escapable, r) {
			sb.WriteRune('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
