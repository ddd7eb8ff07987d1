package rulekit

import (
	"fmt"
	"strings"
)

type ClauseFormatToken int

const (
	ClauseFormatToken_None ClauseFormatToken = iota
	ClauseFormatToken_Decoration
	ClauseFormatToken_Literal
	ClauseFormatToken_Operator
	ClauseFormatToken_Operand
)

// clausePrinterTheme is a map from the tokens available for pretty
// printing clauses to an ASCII color.  These colors are supposed to
// fair well on both dark and light terminal settings
var clausePrinterTheme = map[ClauseFormatToken]string{
	ClauseFormatToken_None:       "\033[0m",          // reset
	ClauseFormatToken_Decoration: "\033[1;31;5;228m", // orange
	ClauseFormatToken_Literal:    "\033[1;38;5;245m", // gray
	ClauseFormatToken_Operator:   "\033[1;38;5;99m",  // purple
	ClauseFormatToken_Operand:    "\033[1;38;5;127m", // pink
}

// PrettyString returns the tree of a sentence without colors
func PrettyString(sentence []Clause) string {
	return printSentence(sentence, func(input string, _ ClauseFormatToken) string {
		return input
	})
}

// HighlightPrettyString returns the tree of a sentence colored with
// ANSI escape sequences
func HighlightPrettyString(sentence []Clause) string {
	return printSentence(sentence, func(input string, token ClauseFormatToken) string {
		return clausePrinterTheme[token] + input + clausePrinterTheme[ClauseFormatToken_None]
	})
}

func printSentence(sentence []Clause, format FormatFunc[ClauseFormatToken]) string {
	cp := &clausePrinter{newTreePrinter(format)}
	cp.sentence(sentence)
	return cp.String()
}

type clausePrinter struct {
	*treePrinter[ClauseFormatToken]
}

func (cp *clausePrinter) sentence(sentence []Clause) {
	cp.writeOperator("Sentence")
	cp.children(len(sentence), func(i int) {
		// the printer itself never fails
		_ = sentence[i].Accept(cp)
	})
}

func (cp *clausePrinter) VisitLiteralClause(c *LiteralClause) error {
	cp.writeOperator("Literal")
	cp.write(cp.format("[", ClauseFormatToken_Operator))
	cp.write(cp.format(`"`+escapeLiteral(c.Value)+`"`, ClauseFormatToken_Literal))
	cp.write(cp.format("]", ClauseFormatToken_Operator))
	cp.writeDecoration(c.Decoration)
	return nil
}

func (cp *clausePrinter) VisitAnyCharClause(c *AnyCharClause) error {
	cp.writeOperator("AnyChar")
	cp.writeDecoration(c.Decoration)
	return nil
}

func (cp *clausePrinter) VisitAnyCharExceptClause(c *AnyCharExceptClause) error {
	cp.writeOperatorWithOneRand("AnyCharExcept", escapeLiteral(string(c.Chars)))
	cp.writeDecoration(c.Decoration)
	return nil
}

func (cp *clausePrinter) VisitAnyOfClause(c *AnyOfClause) error {
	cp.writeOperator("AnyOf")
	cp.writeDecoration(c.Decoration)
	cp.children(len(c.Sentences), func(i int) {
		cp.sentence(c.Sentences[i])
	})
	return nil
}

func (cp *clausePrinter) VisitCharRangesClause(c *CharRangesClause) error {
	items := make([]string, len(c.Ranges))
	for i, r := range c.Ranges {
		items[i] = fmt.Sprintf("%c-%c", r.Start, r.End)
	}
	cp.writeOperatorWithOneRand("CharRanges", strings.Join(items, ", "))
	cp.writeDecoration(c.Decoration)
	return nil
}

func (cp *clausePrinter) VisitRuleRefClause(c *RuleRefClause) error {
	cp.writeOperatorWithOneRand("RuleRef", c.Name)
	cp.writeDecoration(c.Decoration)
	return nil
}

func (cp *clausePrinter) VisitAlterClause(c *AlterClause) error {
	cp.writeOperator("Alter")
	cp.writeDecoration(c.Decoration)
	cp.children(len(c.Pairs), func(i int) {
		pair := c.Pairs[i]
		cp.write(cp.format(`"`+escapeLiteral(pair.Find)+`"`, ClauseFormatToken_Literal))
		cp.writeOperator(" -> ")
		cp.write(cp.format(`"`+escapeLiteral(pair.Replace)+`"`, ClauseFormatToken_Literal))
	})
	return nil
}

func (cp *clausePrinter) VisitEOFClause(*EOFClause) error {
	cp.writeOperator("EOF")
	return nil
}

func (cp *clausePrinter) VisitWhitespaceClause(c *WhitespaceClause) error {
	cp.writeOperator("Whitespace")
	cp.writeDecoration(Decoration{Min: c.Min, Max: c.Max})
	return nil
}

func (cp *clausePrinter) VisitNoBacktrackClause(c *NoBacktrackClause) error {
	cp.writeOperatorWithOneRand("NoBacktrack", c.Message)
	return nil
}

func (cp *clausePrinter) writeOperator(op string) {
	cp.write(cp.format(op, ClauseFormatToken_Operator))
}

func (cp *clausePrinter) writeOperatorWithOneRand(rator, rand string) {
	cp.write(cp.format(rator, ClauseFormatToken_Operator))
	cp.write(cp.format("[", ClauseFormatToken_Operator))
	cp.write(cp.format(rand, ClauseFormatToken_Operand))
	cp.write(cp.format("]", ClauseFormatToken_Operator))
}

func (cp *clausePrinter) writeDecoration(d Decoration) {
	if s := d.String(); s != "" {
		cp.write(cp.format(" "+s, ClauseFormatToken_Decoration))
	}
}
