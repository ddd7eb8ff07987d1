package rulekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpr(t *testing.T) {
	tests := []struct {
		Name     string
		Expr     string
		Expected string
	}{
		{
			Name:     "Literal",
			Expr:     "monkey",
			Expected: `Sentence
└── Literal["monkey"]`,
		},
		{
			Name: "Escaped literal",
			Expr: `\(<expr>\)`,
			Expected: `Sentence
├── Literal["("]
├── RuleRef[expr]
└── Literal[")"]`,
		},
		{
			Name: "Negated range",
			Expr: "!monkey{2,3}gorilla",
			Expected: `Sentence
├── Literal["monkey"] !{2,3}
└── Literal["gorilla"]`,
		},
		{
			Name: "Whitespace",
			Expr: "<a> <b>_<c>",
			Expected: `Sentence
├── RuleRef[a]
├── Whitespace *
├── RuleRef[b]
├── Whitespace +
└── RuleRef[c]`,
		},
		{
			Name: "Any char",
			Expr: `.?[^abc]*\.$`,
			Expected: `Sentence
├── AnyChar ?
├── AnyCharExcept[abc] *
├── Literal["."]
└── EOF`,
		},
		{
			Name: "Char ranges",
			Expr: "[a-z0-9]{2,}[😀-🙏]{,4}",
			Expected: `Sentence
├── CharRanges[a-z, 0-9] {2,}
└── CharRanges[😀-🙏] {,4}`,
		},
		{
			Name: "Alternation",
			Expr: "a(c|d+)",
			Expected: `Sentence
├── Literal["a"]
└── AnyOf
    ├── Sentence
    │   └── Literal["c"]
    └── Sentence
        └── Literal["d"] +`,
		},
		{
			Name: "Nested alternation",
			Expr: "((a|b)c|d)*",
			Expected: `Sentence
└── AnyOf *
    ├── Sentence
    │   ├── AnyOf
    │   │   ├── Sentence
    │   │   │   └── Literal["a"]
    │   │   └── Sentence
    │   │       └── Literal["b"]
    │   └── Literal["c"]
    └── Sentence
        └── Literal["d"]`,
		},
		{
			Name: "Alter",
			Expr: `(~\<,<|æ±,AAA){7}`,
			Expected: `Sentence
└── Alter {7}
    ├── "<" -> "<"
    └── "æ±" -> "AAA"`,
		},
		{
			Name: "No backtrack",
			Expr: "let@expected name@_<name>",
			Expected: `Sentence
├── Literal["let"]
├── NoBacktrack[expected name]
├── Whitespace +
└── RuleRef[name]`,
		},
		{
			Name: "Raw control characters",
			Expr: "(\\ |\t|\n|\r)",
			Expected: `Sentence
└── AnyOf
    ├── Sentence
    │   └── Literal[" "]
    ├── Sentence
    │   └── Literal["\t"]
    ├── Sentence
    │   └── Literal["\n"]
    └── Sentence
        └── Literal["\r"]`,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			sentence, err := ParseExpr(test.Expr)
			require.NoError(t, err)
			assert.Equal(t, test.Expected, PrettyString(sentence))
		})
	}
}

func TestParseExprText(t *testing.T) {
	for _, expr := range []string{
		"monkey",
		"!monkey{2,3}",
		"a{,3}b{3}c{3,}d+e?f*",
		"<a> <b>_<c>",
		`.?[^abc]*$`,
		"[a-z0-9]{2,}",
		"(a|b|c+)",
		"(~ab,c|x,yz)",
		"@oops@",
		`\(<expr>\)`,
		`<num>(\*<mul>)?`,
		"(\\ |\t|\n|\r)",
		`\<\{\(\)\|\[\+\?\*\.\$\ \_\!\@`,
		`a>b]c^d~e-f,g}h`,
	} {
		t.Run(expr, func(t *testing.T) {
			sentence, err := ParseExpr(expr)
			require.NoError(t, err)
			assert.Equal(t, expr, SentenceText(sentence))
		})
	}
}

func TestParseExprErrors(t *testing.T) {
	tests := []struct {
		Name string
		Expr string
		Err  error
	}{
		{"Empty", "", ErrMalformedExpr},
		{"Unclosed alternation", "(a|b", ErrMalformedExpr},
		{"Unclosed reference", "<abc", ErrMalformedExpr},
		{"Unclosed range", "a{2", ErrMalformedExpr},
		{"Lone negation", "!", ErrMalformedExpr},
		{"Empty alternative", "(a|)", ErrMalformedExpr},
		{"Decorated EOF", "$+", ErrInvalidClause},
		{"Negated EOF", "!$", ErrInvalidClause},
		{"Decorated whitespace", "_?", ErrInvalidClause},
		{"Decorated cut", "@stop@*", ErrInvalidClause},
		{"Reversed char range", "[z-a]", ErrInvalidClause},
		{"Reversed repetition", "a{3,2}", ErrInvalidClause},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			_, err := ParseExpr(test.Expr)
			assert.ErrorIs(t, err, test.Err)
		})
	}
}

func TestRuleRefs(t *testing.T) {
	sentence, err := ParseExpr("<a>(<b>|x<c>*)!<d>")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, RuleRefs(sentence))
}
