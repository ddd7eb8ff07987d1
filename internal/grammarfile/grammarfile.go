// Package grammarfile loads grammars written as YAML documents, so
// they can be scanned without writing any Go code.  Rules marked with
// capture produce a Node holding the text they matched and the nodes
// of the captured rules they reference.
package grammarfile

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rulekit/rulekit"
)

var ErrNoRules = errors.New("grammar file has no rules")

type Rule struct {
	Name    string `yaml:"name"`
	Expr    string `yaml:"expr"`
	Capture bool   `yaml:"capture"`
}

type File struct {
	// Whitespace replaces the expression of the whitespace rule
	Whitespace string `yaml:"whitespace"`
	// MaxErrors caps the messages reported for a failed scan
	MaxErrors int `yaml:"max_errors"`
	// Start is the rule scans begin with.  Defaults to the first
	// rule in the file.
	Start   string   `yaml:"start"`
	Declare []string `yaml:"declare"`
	Rules   []Rule   `yaml:"rules"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Rules) == 0 {
		return nil, ErrNoRules
	}
	for i, r := range f.Rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule #%d has no name", i+1)
		}
	}
	return &f, nil
}

// Root returns the name of the rule scans start from
func (f *File) Root() string {
	if f.Start != "" {
		return f.Start
	}
	return f.Rules[0].Name
}

// Grammar is a compiled grammar file
type Grammar struct {
	root     string
	compiled *rulekit.CompiledGrammar[Node, struct{}]
}

// Build compiles the rules of the file.  Every rule is logged at debug
// level when the logger isn't nil.
func (f *File) Build(logger *zap.Logger) (*Grammar, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := rulekit.NewConfig()
	cfg.SetString("grammar.whitespace", f.Whitespace)
	cfg.SetInt("scan.max_errors", f.MaxErrors)
	cfg.SetBool("compiler.debug", logger.Core().Enabled(zap.DebugLevel))

	g, err := rulekit.NewWithConfig[Node, struct{}](cfg)
	if err != nil {
		return nil, err
	}
	g.SetLogger(logger)

	if err := g.Declare(f.Declare...); err != nil {
		return nil, err
	}
	for _, r := range f.Rules {
		if !r.Capture {
			err = g.Rule(r.Name, r.Expr)
		} else {
			err = g.Map(r.Name, r.Expr, capture(r.Name))
		}
		if err != nil {
			return nil, err
		}
	}

	compiled, err := g.Compile()
	if err != nil {
		return nil, err
	}
	if _, ok := compiled.Rule(f.Root()); !ok {
		return nil, fmt.Errorf("%w: start rule `%s`", rulekit.ErrUnknownRule, f.Root())
	}
	logger.Info("grammar loaded", zap.String("start", f.Root()), zap.Int("rules", len(f.Rules)))
	return &Grammar{root: f.Root(), compiled: compiled}, nil
}

// Scan matches input against the start rule
func (g *Grammar) Scan(input string) ([]Node, error) {
	return g.compiled.Scan(g.root, input, struct{}{})
}

// ScanRule matches input against any rule of the grammar
func (g *Grammar) ScanRule(name, input string) ([]Node, error) {
	return g.compiled.Scan(name, input, struct{}{})
}

func capture(name string) rulekit.MapFn[Node, struct{}] {
	return func(children []Node, lexeme string, _ struct{}) (Node, error) {
		return Node{Rule: name, Text: lexeme, Children: children}, nil
	}
}

// Node is the output of a captured rule
type Node struct {
	Rule     string
	Text     string
	Children []Node
}

// String prints the node and its children as an indented tree
func (n Node) String() string {
	return rulekit.PrettyTree(n,
		func(n Node) string { return fmt.Sprintf("%s %q", n.Rule, n.Text) },
		func(n Node) []Node { return n.Children })
}
