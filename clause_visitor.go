package rulekit

type ClauseVisitor interface {
	VisitLiteralClause(*LiteralClause) error
	VisitAnyCharClause(*AnyCharClause) error
	VisitAnyCharExceptClause(*AnyCharExceptClause) error
	VisitAnyOfClause(*AnyOfClause) error
	VisitCharRangesClause(*CharRangesClause) error
	VisitRuleRefClause(*RuleRefClause) error
	VisitAlterClause(*AlterClause) error
	VisitEOFClause(*EOFClause) error
	VisitWhitespaceClause(*WhitespaceClause) error
	VisitNoBacktrackClause(*NoBacktrackClause) error
}

// WalkSentence visits each clause of a sentence in order, stopping at
// the first error
func WalkSentence(v ClauseVisitor, sentence []Clause) error {
	for _, c := range sentence {
		if err := c.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

// RuleRefs returns the names referenced by a sentence, including the
// ones nested within alternations, in the order they appear
func RuleRefs(sentence []Clause) []string {
	rc := &refCollector{}
	_ = WalkSentence(rc, sentence)
	return rc.names
}

type refCollector struct {
	names []string
}

func (rc *refCollector) VisitRuleRefClause(c *RuleRefClause) error {
	rc.names = append(rc.names, c.Name)
	return nil
}

func (rc *refCollector) VisitAnyOfClause(c *AnyOfClause) error {
	for _, sentence := range c.Sentences {
		if err := WalkSentence(rc, sentence); err != nil {
			return err
		}
	}
	return nil
}

func (rc *refCollector) VisitLiteralClause(*LiteralClause) error             { return nil }
func (rc *refCollector) VisitAnyCharClause(*AnyCharClause) error             { return nil }
func (rc *refCollector) VisitAnyCharExceptClause(*AnyCharExceptClause) error { return nil }
func (rc *refCollector) VisitCharRangesClause(*CharRangesClause) error       { return nil }
func (rc *refCollector) VisitAlterClause(*AlterClause) error                 { return nil }
func (rc *refCollector) VisitEOFClause(*EOFClause) error                     { return nil }
func (rc *refCollector) VisitWhitespaceClause(*WhitespaceClause) error       { return nil }
func (rc *refCollector) VisitNoBacktrackClause(*NoBacktrackClause) error     { return nil }
