package rulekit

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// escapable lists the characters that can be escaped with a
// backslash within expressions
const escapable = `<>{}()[]^~-,|+?*.$ _!@`

var escapedCtrlChars = func() []AlterText {
	pairs := make([]AlterText, 0, len(escapable))
	for _, r := range escapable {
		pairs = append(pairs, AlterText{Find: `\` + string(r), Replace: string(r)})
	}
	return pairs
}()

type metaKind int

const (
	metaClause metaKind = iota
	metaSentence
	metaText
	metaInteger
	metaRange
	metaNot
	metaAlterText
	metaCharRange
)

// metaNode is the output type of the meta grammar.  Only the fields
// matching kind are set.
type metaNode struct {
	kind     metaKind
	clause   Clause
	sentence []Clause
	text     string
	integer  uint64
	rng      Decoration
	alter    AlterText
	chars    CharRange
}

type metaPattern = Pattern[metaNode, struct{}]

// metaFn builds a branch function that always returns a single node
func metaFn(fn func(b []metaNode, lexeme string) (metaNode, error)) BranchFn[metaNode, struct{}] {
	return func(b []metaNode, lexeme string, _ struct{}) ([]metaNode, error) {
		n, err := fn(b, lexeme)
		if err != nil {
			return nil, err
		}
		return []metaNode{n}, nil
	}
}

func clauseNode(c Clause) metaNode { return metaNode{kind: metaClause, clause: c} }

func textNode(_ []metaNode, lexeme string) (metaNode, error) {
	return metaNode{kind: metaText, text: lexeme}, nil
}

func rangeOf(min, max uint64) metaNode {
	return metaNode{kind: metaRange, rng: Decoration{Min: min, Max: max}}
}

func rangeNode(min, max uint64) func([]metaNode, string) (metaNode, error) {
	return func([]metaNode, string) (metaNode, error) { return rangeOf(min, max), nil }
}

func newMeta(fn func([]metaNode, string) (metaNode, error)) *metaPattern {
	if fn == nil {
		return NewPattern[metaNode, struct{}](nil)
	}
	return NewPattern(metaFn(fn))
}

// newMetaGrammar assembles, from the engine primitives, the pattern
// that recognizes rule expressions.  Each match of its root is one
// decorated clause.
func newMetaGrammar() *metaPattern {
	escaped := newMeta(nil).Alter(escapedCtrlChars...)

	// charExcept matches one escaped char or anything not in
	// exclude
	charExcept := func(exclude ...rune) *metaPattern {
		return newMeta(nil).AnyOf(escaped, newMeta(nil).AllExcept(exclude...))
	}

	clause := newMeta(buildClause)

	// Instructions

	anyChar := newMeta(func([]metaNode, string) (metaNode, error) {
		return clauseNode(NewAnyCharClause()), nil
	}).Literal(".")

	atLeastOneWS := newMeta(func([]metaNode, string) (metaNode, error) {
		return clauseNode(NewWhitespaceClause(1, Unbounded)), nil
	}).Literal("_")

	noneOrManyWS := newMeta(func([]metaNode, string) (metaNode, error) {
		return clauseNode(NewWhitespaceClause(0, Unbounded)), nil
	}).Literal(" ")

	eof := newMeta(func([]metaNode, string) (metaNode, error) {
		return clauseNode(NewEOFClause()), nil
	}).Literal("$")

	alterLeft := newMeta(textNode).AtLeast(1, charExcept(','))
	alterRight := newMeta(textNode).AtLeast(1, charExcept('|', ')'))
	alterTuple := newMeta(func(b []metaNode, _ string) (metaNode, error) {
		return metaNode{kind: metaAlterText, alter: AlterText{Find: b[0].text, Replace: b[1].text}}, nil
	}).One(alterLeft).Literal(",").One(alterRight)
	alter := newMeta(func(b []metaNode, _ string) (metaNode, error) {
		pairs := make([]AlterText, len(b))
		for i, n := range b {
			pairs[i] = n.alter
		}
		return clauseNode(NewAlterClause(pairs)), nil
	}).
		Literal("(~").
		One(alterTuple).
		NoneOrMany(newMeta(nil).Literal("|").One(alterTuple)).
		Literal(")")

	exceptChars := newMeta(func(_ []metaNode, lexeme string) (metaNode, error) {
		return clauseNode(NewAnyCharExceptClause([]rune(lexeme))), nil
	}).AtLeast(1, charExcept(']'))
	anyCharExcept := newMeta(nil).Literal("[^").One(exceptChars).Literal("]")

	rangeChar := charExcept('-', ']')
	charRange := newMeta(func(_ []metaNode, lexeme string) (metaNode, error) {
		chars := []rune(lexeme)
		return metaNode{kind: metaCharRange, chars: CharRange{Start: chars[0], End: chars[2]}}, nil
	}).One(rangeChar).Literal("-").One(rangeChar)
	charRanges := newMeta(func(b []metaNode, _ string) (metaNode, error) {
		ranges := make([]CharRange, len(b))
		for i, n := range b {
			if n.chars.Start > n.chars.End {
				return metaNode{}, fmt.Errorf("%w: char range `%c-%c` is reversed", ErrInvalidClause, n.chars.Start, n.chars.End)
			}
			ranges[i] = n.chars
		}
		return clauseNode(NewCharRangesClause(ranges)), nil
	}).Literal("[").AtLeast(1, charRange).Literal("]")

	idName := newMeta(func(_ []metaNode, lexeme string) (metaNode, error) {
		return clauseNode(NewRuleRefClause(lexeme)), nil
	}).AtLeast(1, charExcept('>'))
	id := newMeta(nil).Literal("<").One(idName).Literal(">")

	sentence := newMeta(func(b []metaNode, _ string) (metaNode, error) {
		return metaNode{kind: metaSentence, sentence: clausesOf(b)}, nil
	}).AtLeast(1, clause)
	anyOf := newMeta(func(b []metaNode, _ string) (metaNode, error) {
		sentences := make([][]Clause, len(b))
		for i, n := range b {
			sentences[i] = n.sentence
		}
		return clauseNode(NewAnyOfClause(sentences)), nil
	}).
		Literal("(").
		One(sentence).
		NoneOrMany(newMeta(nil).Literal("|").One(sentence)).
		Literal(")")

	cutMessage := newMeta(textNode).AtLeast(1, charExcept('@'))
	cut := newMeta(func(b []metaNode, _ string) (metaNode, error) {
		return clauseNode(NewNoBacktrackClause(b[0].text)), nil
	}).Literal("@").One(cutMessage).Literal("@")

	literal := newMeta(func(_ []metaNode, lexeme string) (metaNode, error) {
		return clauseNode(NewLiteralClause(lexeme)), nil
	}).AtLeast(1, charExcept([]rune(literalCtrl)...))

	instr := newMeta(nil).AnyOf(
		anyChar, atLeastOneWS, noneOrManyWS, eof, alter, anyCharExcept,
		charRanges, id, anyOf, cut, literal,
	)

	// Ranges

	integer := newMeta(func(_ []metaNode, lexeme string) (metaNode, error) {
		v, err := strconv.ParseUint(lexeme, 10, 64)
		if err != nil {
			return metaNode{}, fmt.Errorf("%w: %s", ErrInvalidClause, err)
		}
		return metaNode{kind: metaInteger, integer: v}, nil
	}).AtLeast(1, newMeta(nil).CharIn('0', '9'))

	atLeast := newMeta(func(b []metaNode, _ string) (metaNode, error) {
		return rangeOf(b[0].integer, Unbounded), nil
	}).Literal("{").One(integer).Literal(",}")

	atMost := newMeta(func(b []metaNode, _ string) (metaNode, error) {
		return rangeOf(0, b[0].integer), nil
	}).Literal("{,").One(integer).Literal("}")

	between := newMeta(func(b []metaNode, _ string) (metaNode, error) {
		if b[0].integer > b[1].integer {
			return metaNode{}, fmt.Errorf("%w: range {%d,%d} has min above max", ErrInvalidClause, b[0].integer, b[1].integer)
		}
		return rangeOf(b[0].integer, b[1].integer), nil
	}).Literal("{").One(integer).Literal(",").One(integer).Literal("}")

	exact := newMeta(func(b []metaNode, _ string) (metaNode, error) {
		return rangeOf(b[0].integer, b[0].integer), nil
	}).Literal("{").One(integer).Literal("}")

	ranges := newMeta(nil).AnyOf(
		atLeast,
		newMeta(rangeNode(1, Unbounded)).Literal("+"),
		atMost,
		between,
		exact,
		newMeta(rangeNode(0, 1)).Literal("?"),
		newMeta(rangeNode(0, Unbounded)).Literal("*"),
	)

	not := newMeta(func([]metaNode, string) (metaNode, error) {
		return metaNode{kind: metaNot}, nil
	}).Literal("!")

	clause.Maybe(not).One(instr).Maybe(ranges)

	return newMeta(nil).NoneOrMany(clause)
}

// buildClause applies the optional `!` and range around an
// instruction to the clause it produced
func buildClause(b []metaNode, _ string) (metaNode, error) {
	d := plainDecoration
	var instr Clause
	for _, n := range b {
		switch n.kind {
		case metaNot:
			d.Not = true
		case metaRange:
			d.Min, d.Max = n.rng.Min, n.rng.Max
		case metaClause:
			instr = n.clause
		}
	}
	if d.IsPlain() {
		return clauseNode(instr), nil
	}
	dc, ok := instr.(decorated)
	if !ok {
		return metaNode{}, fmt.Errorf("%w: `%s` can't be decorated with `%s`", ErrInvalidClause, instr.Text(), d)
	}
	dc.decorate(d)
	return clauseNode(dc), nil
}

func clausesOf(b []metaNode) []Clause {
	out := make([]Clause, len(b))
	for i, n := range b {
		out[i] = n.clause
	}
	return out
}

var metaGrammar = sync.OnceValue(newMetaGrammar)

// ParseExpr parses a rule expression into its sentence of clauses
// without registering it anywhere
func ParseExpr(expr string) ([]Clause, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrMalformedExpr)
	}
	out, err := metaGrammar().Scan(expr, struct{}{})
	if err != nil {
		var actionErr *ActionError
		if errors.As(err, &actionErr) {
			return nil, actionErr.Err
		}
		var scanErr *ScanError
		if errors.As(err, &scanErr) {
			return nil, fmt.Errorf("%w: %s", ErrMalformedExpr, unexpectedAt(expr, scanErr.Offset()))
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedExpr, err)
	}
	return clausesOf(out), nil
}

// unexpectedAt describes the character of expr found at offset
func unexpectedAt(expr string, offset int) string {
	chars := []rune(expr)
	if offset >= len(chars) {
		return fmt.Sprintf("unexpected end of expression @ %d", offset)
	}
	return fmt.Sprintf("unexpected `%c` @ %d", chars[offset], offset)
}
