package rulekit

import (
	"fmt"

	"go.uber.org/zap"
)

// defaultWhitespace matches a single space, tab, line feed or carriage
// return
const defaultWhitespace = "(\\ |\t|\n|\r)"

// MapFn is a branch function that always produces exactly one output
type MapFn[T, S any] func(branches []T, lexeme string, shared S) (T, error)

type ruleEntry[T, S any] struct {
	name     string
	expr     string
	sentence []Clause
	fn       BranchFn[T, S]
	defined  bool
}

// Grammar collects rules written in the expression language and
// compiles them into patterns.  Rules may reference each other in any
// order, as long as every name is defined by the time Compile runs.
type Grammar[T, S any] struct {
	config  *Config
	logger  *zap.Logger
	entries map[string]*ruleEntry[T, S]
	order   []string
}

// New creates a grammar with the default whitespace rule
func New[T, S any]() *Grammar[T, S] {
	g, err := NewWithConfig[T, S](NewConfig())
	if err != nil {
		panic(err)
	}
	return g
}

// NewWithWS creates a grammar whose `_` and ` ` tokens match expr
// instead of the default whitespace
func NewWithWS[T, S any](expr string) (*Grammar[T, S], error) {
	cfg := NewConfig()
	cfg.SetString("grammar.whitespace", expr)
	return NewWithConfig[T, S](cfg)
}

func NewWithConfig[T, S any](cfg *Config) (*Grammar[T, S], error) {
	g := &Grammar[T, S]{
		config:  cfg,
		logger:  zap.NewNop(),
		entries: make(map[string]*ruleEntry[T, S]),
	}
	ws := cfg.GetString("grammar.whitespace")
	if ws == "" {
		ws = defaultWhitespace
	}
	if err := g.define(wsRuleName, ws, nil); err != nil {
		return nil, err
	}
	return g, nil
}

// SetLogger replaces the logger, which discards everything by default
func (g *Grammar[T, S]) SetLogger(logger *zap.Logger) {
	g.logger = logger
}

// Declare reserves names that are referenced before being defined.
// Each name must be defined later with Rule, Map or Add.
// Nothing is declared when any of the names is taken.
func (g *Grammar[T, S]) Declare(names ...string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		_, declared := g.entries[name]
		_, repeated := seen[name]
		if declared || repeated {
			return g.fail(&CompileError{Rule: name, Err: ErrDuplicateRule})
		}
		seen[name] = struct{}{}
	}
	for _, name := range names {
		g.entries[name] = &ruleEntry[T, S]{name: name}
		g.order = append(g.order, name)
		g.logger.Debug("rule declared", zap.String("rule", name))
	}
	return nil
}

// Rule defines a rule that passes its outputs along untouched
func (g *Grammar[T, S]) Rule(name, expr string) error {
	return g.define(name, expr, nil)
}

// Map defines a rule whose matches are turned into a single output
func (g *Grammar[T, S]) Map(name, expr string, fn MapFn[T, S]) error {
	if fn == nil {
		return g.define(name, expr, nil)
	}
	return g.define(name, expr, func(branches []T, lexeme string, shared S) ([]T, error) {
		v, err := fn(branches, lexeme, shared)
		if err != nil {
			return nil, err
		}
		return []T{v}, nil
	})
}

// Add defines a rule with a branch function that may return any
// number of outputs
func (g *Grammar[T, S]) Add(name, expr string, fn BranchFn[T, S]) error {
	return g.define(name, expr, fn)
}

func (g *Grammar[T, S]) define(name, expr string, fn BranchFn[T, S]) error {
	entry, ok := g.entries[name]
	if ok && entry.defined {
		return g.fail(&CompileError{Rule: name, Expr: expr, Err: ErrDuplicateRule})
	}
	sentence, err := ParseExpr(expr)
	if err != nil {
		return g.fail(&CompileError{Rule: name, Expr: expr, Err: err})
	}
	if !ok {
		entry = &ruleEntry[T, S]{name: name}
		g.entries[name] = entry
		g.order = append(g.order, name)
	}
	entry.expr = expr
	entry.sentence = sentence
	entry.fn = fn
	entry.defined = true
	g.logger.Debug("rule defined", zap.String("rule", name), zap.String("expr", expr))
	return nil
}

// Clauses returns the parsed sentence of a defined rule
func (g *Grammar[T, S]) Clauses(name string) ([]Clause, bool) {
	entry, ok := g.entries[name]
	if !ok || !entry.defined {
		return nil, false
	}
	return entry.sentence, true
}

// Names lists the rules in the order they were declared or defined,
// leaving out the whitespace rule
func (g *Grammar[T, S]) Names() []string {
	names := make([]string, 0, len(g.order))
	for _, name := range g.order {
		if name != wsRuleName {
			names = append(names, name)
		}
	}
	return names
}

// Compile generates one pattern per rule.  The grammar can still be
// changed and compiled again afterwards without affecting the
// patterns already returned.
func (g *Grammar[T, S]) Compile() (*CompiledGrammar[T, S], error) {
	rules := make(map[string]*Pattern[T, S], len(g.entries))
	for _, name := range g.order {
		entry := g.entries[name]
		if !entry.defined {
			return nil, g.fail(&CompileError{Rule: name, Err: ErrUndefinedRule})
		}
		rules[name] = NewPattern(entry.fn).Named(name)
	}

	c := newCompiler(rules)
	debug := g.config.GetBool("compiler.debug")
	for _, name := range g.order {
		entry := g.entries[name]
		if err := c.emit(rules[name], entry.sentence); err != nil {
			return nil, g.fail(&CompileError{Rule: name, Expr: entry.expr, Err: err})
		}
		if debug {
			g.logger.Debug("rule compiled",
				zap.String("rule", name),
				zap.Strings("refs", RuleRefs(entry.sentence)),
				zap.String("clauses", "\n"+PrettyString(entry.sentence)))
		}
	}

	g.logger.Debug("grammar compiled", zap.Int("rules", len(rules)))
	return &CompiledGrammar[T, S]{
		rules:     rules,
		maxErrors: g.config.GetInt("scan.max_errors"),
	}, nil
}

func (g *Grammar[T, S]) fail(err *CompileError) error {
	g.logger.Error("grammar error",
		zap.String("rule", err.Rule),
		zap.String("expr", err.Expr),
		zap.Error(err.Err))
	return err
}

// CompiledGrammar is the read-only result of Compile.  It may be
// scanned from many goroutines at once, as long as each scan gets its
// own shared value or the caller synchronizes access to it.
type CompiledGrammar[T, S any] struct {
	rules     map[string]*Pattern[T, S]
	maxErrors int
}

// Scan matches the whole text against the rule called name
func (cg *CompiledGrammar[T, S]) Scan(name, text string, shared S) ([]T, error) {
	p, ok := cg.rules[name]
	if !ok {
		return nil, fmt.Errorf("%w: `%s`", ErrUnknownRule, name)
	}
	return p.scan(text, shared, cg.maxErrors)
}

// Rule returns the pattern generated for name, which can be embedded
// in hand built patterns
func (cg *CompiledGrammar[T, S]) Rule(name string) (*Pattern[T, S], bool) {
	p, ok := cg.rules[name]
	return p, ok
}
