package rulekit

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"testing/quick"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type empty = struct{}

func newP(fn BranchFn[string, empty]) *Pattern[string, empty] {
	return NewPattern(fn)
}

// emit returns a branch function that ignores its input and outputs v
func emit(v string) BranchFn[string, empty] {
	return func([]string, string, empty) ([]string, error) { return []string{v}, nil }
}

// wrapJoin outputs the joined branches between left and right
func wrapJoin(left, right string) BranchFn[string, empty] {
	return func(b []string, _ string, _ empty) ([]string, error) {
		return []string{left + strings.Join(b, ",") + right}, nil
	}
}

func requireScanError(t *testing.T, err error) *ScanError {
	t.Helper()
	var scanErr *ScanError
	require.ErrorAs(t, err, &scanErr)
	return scanErr
}

func TestPatternSteps(t *testing.T) {
	tests := []struct {
		name    string
		pattern *Pattern[string, empty]
		ok      []string
		fail    []string
	}{
		{
			name:    "Literal",
			pattern: newP(nil).Literal("monkey"),
			ok:      []string{"monkey"},
			fail:    []string{"", "monk", "monkeys", "donkey"},
		},
		{
			name:    "All",
			pattern: newP(nil).All(),
			ok:      []string{"A", "ğ", "🐒"},
			fail:    []string{"", "AA"},
		},
		{
			name:    "AllExcept",
			pattern: newP(nil).AllExcept('A', 'B', 'C', '🐒'),
			ok:      []string{"a", "D"},
			fail:    []string{"", "A", "🐒"},
		},
		{
			name:    "CharIn",
			pattern: newP(nil).CharIn('😀', '🙏'),
			ok:      []string{"😁", "😷"},
			fail:    []string{"", "☺"},
		},
		{
			name:    "Ranges",
			pattern: newP(nil).AtLeast(1, newP(nil).Ranges(CharRange{'a', 'z'}, CharRange{'A', 'Z'}, CharRange{'0', '9'})),
			ok:      []string{"Banana304", "Monkey80085"},
			fail:    []string{"", "Banana 304", "_"},
		},
		{
			name:    "Alter",
			pattern: newP(nil).AtLeast(1, newP(nil).Alter(AlterText{"ab", "x"}, AlterText{"a", "y"})),
			ok:      []string{"a", "ab", "aba", "aaab"},
			fail:    []string{"", "b", "abb"},
		},
		{
			name:    "EOF",
			pattern: newP(nil).Literal("a").EOF(),
			ok:      []string{"a"},
			fail:    []string{"", "aa"},
		},
		{
			name:    "Maybe",
			pattern: newP(nil).Maybe(newP(nil).Literal("Maybe")),
			ok:      []string{"", "Maybe"},
			fail:    []string{"MaybeMaybe"},
		},
		{
			name:    "NoneOrMany",
			pattern: newP(nil).NoneOrMany(newP(nil).Literal("monkey")),
			ok:      []string{"", "monkey", "monkeymonkeymonkey"},
			fail:    []string{"monkeymonk"},
		},
		{
			name:    "AtLeast",
			pattern: newP(nil).AtLeast(2, newP(nil).Literal("monkey")),
			ok:      []string{"monkeymonkey", strings.Repeat("monkey", 6)},
			fail:    []string{"", "monkey"},
		},
		{
			name:    "AtMost",
			pattern: newP(nil).AtMost(2, newP(nil).Literal("monkey")),
			ok:      []string{"", "monkey", "monkeymonkey"},
			fail:    []string{strings.Repeat("monkey", 3)},
		},
		{
			name:    "Exact",
			pattern: newP(nil).Exact(2, newP(nil).Literal("monkey")),
			ok:      []string{"monkeymonkey"},
			fail:    []string{"", "monkey", strings.Repeat("monkey", 3)},
		},
		{
			name:    "Between",
			pattern: newP(nil).Between(2, 4, newP(nil).Literal("monkey")),
			ok:      []string{"monkeymonkey", strings.Repeat("monkey", 4)},
			fail:    []string{"", "monkey", strings.Repeat("monkey", 5)},
		},
		{
			name:    "Not",
			pattern: newP(nil).Not(newP(nil).Literal("monkey")).Literal("gorilla"),
			ok:      []string{"gorilla"},
			fail:    []string{"monkey", "monkeygorilla"},
		},
		{
			name: "AnyOf",
			pattern: newP(nil).AnyOf(
				newP(nil).Literal("a"),
				newP(nil).Literal("b"),
				newP(nil).AtLeast(1, newP(nil).Literal("c")),
			),
			ok:   []string{"a", "b", "c", "cc"},
			fail: []string{"", "aa", "bb", "x"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for _, input := range test.ok {
				_, err := test.pattern.Scan(input, empty{})
				assert.NoError(t, err, "input %q", input)
			}
			for _, input := range test.fail {
				_, err := test.pattern.Scan(input, empty{})
				assert.Error(t, err, "input %q", input)
			}
		})
	}
}

func TestPatternErrors(t *testing.T) {
	t.Run("Literal mismatch is reported where it happens", func(t *testing.T) {
		_, err := newP(nil).Literal("abc").Scan("abd", empty{})
		scanErr := requireScanError(t, err)
		assert.Equal(t, []RuleError{{Offset: 2, Message: "Missing `abc`"}}, scanErr.Errors)
		assert.Equal(t, "Missing `abc` @ 2", err.Error())
	})

	t.Run("Trailing input", func(t *testing.T) {
		_, err := newP(nil).Literal("abc").Scan("abcd", empty{})
		scanErr := requireScanError(t, err)
		assert.Equal(t, 3, scanErr.Offset())
		assert.Equal(t, "Expected EOF but got `d`", scanErr.Errors[0].Message)
	})

	t.Run("Char range", func(t *testing.T) {
		_, err := newP(nil).CharIn('0', '9').Scan("x", empty{})
		assert.EqualError(t, err, "Expected `0-9` but got `x` @ 0")

		_, err = newP(nil).CharIn('0', '9').Scan("", empty{})
		assert.EqualError(t, err, "Expected `0-9` but got EOF @ 0")
	})

	t.Run("Deepest failure wins", func(t *testing.T) {
		p := newP(nil).AnyOf(
			newP(nil).Literal("abcdefg").Literal("h"),
			newP(nil).Literal("ab").Literal("c").Literal("X"),
			newP(nil).Literal("a"),
		)
		_, err := p.Scan("abcdefgX", empty{})
		scanErr := requireScanError(t, err)
		assert.Equal(t, []RuleError{{Offset: 7, Message: "Missing `h`"}}, scanErr.Errors)
	})

	t.Run("Failures at the same offset accumulate", func(t *testing.T) {
		p := newP(nil).AnyOf(newP(nil).Literal("ax"), newP(nil).Literal("ay"))
		_, err := p.Scan("az", empty{})
		scanErr := requireScanError(t, err)
		assert.Equal(t, 1, scanErr.Offset())
		assert.Len(t, scanErr.Errors, 2)
		assert.Equal(t, "Missing `ax`; Missing `ay` @ 1", err.Error())
	})

	t.Run("Failed repetition keeps its error", func(t *testing.T) {
		num := newP(nil).AtLeast(1, newP(nil).CharIn('0', '9'))
		add := newP(nil).One(num).NoneOrMany(newP(nil).Literal("+").One(num))
		_, err := add.Scan("12+", empty{})
		scanErr := requireScanError(t, err)
		assert.Equal(t, 3, scanErr.Offset())
	})

	t.Run("Not reports an unexpected match", func(t *testing.T) {
		p := newP(nil).Not(newP(nil).Literal("monkey")).All()
		_, err := p.Scan("monkey", empty{})
		assert.EqualError(t, err, "Unexpected match @ 0")
	})
}

func TestPatternOutputs(t *testing.T) {
	toInt := func(_ []int, lexeme string, _ empty) ([]int, error) {
		n, err := strconv.Atoi(lexeme)
		return []int{n}, err
	}
	digit := NewPattern[int, empty](nil).CharIn('0', '9')
	num := NewPattern(toInt).AtLeast(1, digit)
	list := NewPattern[int, empty](nil).
		One(num).
		NoneOrMany(NewPattern[int, empty](nil).Literal(",").One(num))

	t.Run("Outputs of every match are collected", func(t *testing.T) {
		out, err := list.Scan("1,22,333", empty{})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 22, 333}, out)
	})

	t.Run("Branch function replaces the outputs", func(t *testing.T) {
		sum := NewPattern(func(b []int, _ string, _ empty) ([]int, error) {
			total := 0
			for _, v := range b {
				total += v
			}
			return []int{total}, nil
		}).One(list)
		out, err := sum.Scan("1,22,333", empty{})
		require.NoError(t, err)
		assert.Equal(t, []int{356}, out)
	})

	t.Run("Lexeme of alter holds the replacements", func(t *testing.T) {
		var lexeme string
		p := newP(func(_ []string, l string, _ empty) ([]string, error) {
			lexeme = l
			return nil, nil
		}).Exact(3, newP(nil).Alter(AlterText{`\<`, "<"}, AlterText{"ğŸ’", "BBB"}))
		_, err := p.Scan(`\<ğŸ’\<`, empty{})
		require.NoError(t, err)
		assert.Equal(t, "<BBB<", lexeme)
	})

	t.Run("Failed branches leave no outputs behind", func(t *testing.T) {
		p := newP(nil).AnyOf(
			newP(nil).One(newP(emit("a")).Literal("a")).Literal("x"),
			newP(nil).One(newP(emit("b")).Literal("a")).Literal("y"),
		)
		out, err := p.Scan("ay", empty{})
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, out)
	})

	t.Run("One keeps outputs of empty matches", func(t *testing.T) {
		p := newP(nil).One(newP(emit("nothing")).Maybe(newP(nil).Literal("x")))
		out, err := p.Scan("", empty{})
		require.NoError(t, err)
		assert.Equal(t, []string{"nothing"}, out)
	})
}

func TestPatternLiteralLexeme(t *testing.T) {
	lexemeOf := func(text string) (string, error) {
		out, err := newP(func(_ []string, lexeme string, _ empty) ([]string, error) {
			return []string{lexeme}, nil
		}).Literal(text).Scan(text, empty{})
		if err != nil {
			return "", err
		}
		return out[0], nil
	}

	for _, text := range []string{
		"a", "hello world", "çà et là", "日本語", "😀🙏", "e\u0301", "\t\n\r", "a\x00b", "<>{}()[]",
	} {
		t.Run(text, func(t *testing.T) {
			lexeme, err := lexemeOf(text)
			require.NoError(t, err)
			assert.Equal(t, text, lexeme)
		})
	}

	t.Run("Any text", func(t *testing.T) {
		matches := func(text string) bool {
			if text == "" || !utf8.ValidString(text) {
				return true
			}
			lexeme, err := lexemeOf(text)
			return err == nil && lexeme == text
		}
		assert.NoError(t, quick.Check(matches, nil))
	})
}

func TestPatternErrorTrail(t *testing.T) {
	digit := newP(nil).Named("digit").CharIn('0', '9')
	number := newP(nil).Named("number").AtLeast(1, digit)
	pair := newP(nil).Named("pair").One(number).Literal(",").One(number)

	_, err := pair.Scan("12,x", empty{})
	scanErr := requireScanError(t, err)
	assert.Equal(t, []RuleError{
		{Offset: 3, Message: "Expected `0-9` but got `x`", Trail: []string{"pair", "number", "digit"}},
	}, scanErr.Errors)
	assert.Equal(t, "pair => number => digit", scanErr.Errors[0].Path())

	_, err = pair.Scan("12", empty{})
	scanErr = requireScanError(t, err)
	assert.Equal(t, "pair", scanErr.Errors[len(scanErr.Errors)-1].Path())

	t.Run("Unnamed patterns leave no trail", func(t *testing.T) {
		_, err := newP(nil).Literal("a").Scan("b", empty{})
		scanErr := requireScanError(t, err)
		assert.Nil(t, scanErr.Errors[0].Trail)
	})
}

func TestPatternAnyOfIsOrdered(t *testing.T) {
	p := newP(nil).AnyOf(newP(emit("a")).Literal("a"), newP(emit("ab")).Literal("ab"))

	_, err := p.Scan("ab", empty{})
	scanErr := requireScanError(t, err)
	assert.Equal(t, "Expected EOF but got `b`", scanErr.Errors[0].Message)

	q := newP(nil).One(p).Literal("b")
	out, err := q.Scan("ab", empty{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, out)
}

func TestPatternNotIsZeroWidth(t *testing.T) {
	p := newP(nil).Not(newP(nil).Literal("x")).Literal("abc")
	out, err := p.Scan("abc", empty{})
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = newP(nil).Not(newP(nil).Literal("x")).Scan("", empty{})
	assert.NoError(t, err)
}

func TestPatternRecursion(t *testing.T) {
	// nested := "(" nested? ")"
	nested := newP(wrapJoin("(", ")"))
	nested.Literal("(").Maybe(nested).Literal(")")

	out, err := nested.Scan("((()))", empty{})
	require.NoError(t, err)
	assert.Equal(t, []string{"((()))"}, out)

	_, err = nested.Scan("(()", empty{})
	assert.Error(t, err)
}

// Ported from the cycle detection checks that guard the repetitions
// against sub patterns matching the empty string
func TestPatternZeroWidthRepetition(t *testing.T) {
	dash := newP(emit("-")).Literal("-")
	star := newP(emit("*")).Literal("*")

	beginOfStmt := newP(nil).NoneOrMany(dash)
	endOfStmt := newP(nil).NoneOrMany(dash)

	fooStmt1 := newP(nil).One(beginOfStmt).Literal("foo").One(endOfStmt)
	fooStmt2 := newP(nil).NoneOrMany(dash).Literal("foo").NoneOrMany(dash)
	fooStmt3 := newP(nil).NoneOrMany(star).Literal("foo").NoneOrMany(dash)

	root1 := newP(nil).NoneOrMany(fooStmt1)
	root2 := newP(nil).NoneOrMany(fooStmt2)

	for _, code := range []string{"foofoo", "foo-foo", "foo-foo-"} {
		_, err := root1.Scan(code, empty{})
		assert.NoError(t, err, "root1 %q", code)
		_, err = root2.Scan(code, empty{})
		assert.NoError(t, err, "root2 %q", code)
	}
	for _, code := range []string{"foo", "*foo", "**foo", "foo--", "*foo-"} {
		_, err := fooStmt3.Scan(code, empty{})
		assert.NoError(t, err, "fooStmt3 %q", code)
	}

	dashes := newP(wrapJoin("#", "#")).NoneOrMany(dash)
	someDashes := newP(wrapJoin("[", "]")).Between(2, 4, dashes)
	someDashes2 := newP(wrapJoin("{", "}")).NoneOrMany(dashes)
	someDashes3 := newP(wrapJoin("{", "}")).NoneOrMany(someDashes2)

	for name, p := range map[string]*Pattern[string, empty]{
		"someDashes":  someDashes,
		"someDashes2": someDashes2,
		"someDashes3": someDashes3,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := p.Scan("", empty{})
			assert.NoError(t, err)
			for _, code := range []string{"-", "--", "---", "-----"} {
				_, err := p.Scan(code, empty{})
				assert.Error(t, err, "input %q", code)
			}
		})
	}

	t.Run("Empty iteration drops its outputs", func(t *testing.T) {
		out, err := someDashes.Scan("", empty{})
		require.NoError(t, err)
		assert.Equal(t, []string{"[]"}, out)
	})
}

func TestPatternNoBacktrack(t *testing.T) {
	stmt := newP(nil).Literal("let").NoBacktrack("Expected name after let").Literal(" ").
		AtLeast(1, newP(nil).CharIn('a', 'z'))
	expr := newP(nil).AtLeast(1, newP(nil).CharIn('a', 'z'))
	root := newP(nil).AnyOf(stmt, expr)

	t.Run("Matches", func(t *testing.T) {
		_, err := root.Scan("let x", empty{})
		assert.NoError(t, err)
		_, err = root.Scan("lemon", empty{})
		assert.NoError(t, err)
	})

	t.Run("Failure after the cut is fatal", func(t *testing.T) {
		// without the cut the second alternative would match "letx"
		_, err := root.Scan("letx", empty{})
		var thrown ThrownError
		require.ErrorAs(t, err, &thrown)
		assert.Equal(t, ThrownError{Message: "Expected name after let", Offset: 3}, thrown)
	})

	t.Run("Reported at the deepest failure", func(t *testing.T) {
		_, err := root.Scan("let 1", empty{})
		var thrown ThrownError
		require.ErrorAs(t, err, &thrown)
		assert.Equal(t, 4, thrown.Offset)
	})

	t.Run("Reported where the steps after the cut failed", func(t *testing.T) {
		p := newP(nil).AnyOf(
			newP(nil).Literal("abcdefX"),
			newP(nil).Literal("a").NoBacktrack("expected Z after a").Literal("Z"),
		)
		_, err := p.Scan("abcdefg", empty{})
		var thrown ThrownError
		require.ErrorAs(t, err, &thrown)
		assert.Equal(t, ThrownError{Message: "expected Z after a", Offset: 1}, thrown)
	})

	t.Run("Errors before the cut survive a match", func(t *testing.T) {
		p := newP(nil).AnyOf(
			newP(nil).Literal("abcdefX"),
			newP(nil).Literal("a").NoBacktrack("expected b").Literal("b"),
		)
		_, err := p.Scan("abcdefg", empty{})
		scanErr := requireScanError(t, err)
		assert.Equal(t, []RuleError{{Offset: 6, Message: "Missing `abcdefX`"}}, scanErr.Errors)
	})

	t.Run("Demoted within Not", func(t *testing.T) {
		p := newP(nil).Not(stmt).AtLeast(1, newP(nil).All())
		_, err := p.Scan("letx", empty{})
		assert.NoError(t, err)
	})
}

func TestPatternSharedState(t *testing.T) {
	add := func(n int) BranchFn[string, *int] {
		return func(_ []string, _ string, shared *int) ([]string, error) {
			*shared += n
			return nil, nil
		}
	}
	one := NewPattern(add(1)).Literal("one")
	two := NewPattern(add(2)).Literal("two")
	three := NewPattern(add(3)).Literal("three")
	root := NewPattern[string, *int](nil).NoneOrMany(NewPattern[string, *int](nil).AnyOf(one, two, three))

	shared := 100
	out, err := root.Scan("onetwoone", &shared)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 104, shared)

	_, err = root.Scan("threethreethreetwotwoone", &shared)
	require.NoError(t, err)
	assert.Equal(t, 118, shared)

	_, err = root.Scan("", &shared)
	require.NoError(t, err)
	assert.Equal(t, 118, shared)
}

func TestPatternActionError(t *testing.T) {
	errOdd := errors.New("odd number")
	even := NewPattern(func(_ []int, lexeme string, _ empty) ([]int, error) {
		n, _ := strconv.Atoi(lexeme)
		if n%2 != 0 {
			return nil, errOdd
		}
		return []int{n}, nil
	}).AtLeast(1, NewPattern[int, empty](nil).CharIn('0', '9'))
	root := NewPattern[int, empty](nil).Literal("n=").One(even)

	out, err := root.Scan("n=42", empty{})
	require.NoError(t, err)
	assert.Equal(t, []int{42}, out)

	_, err = root.Scan("n=41", empty{})
	require.ErrorIs(t, err, errOdd)
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, 2, actionErr.Offset)
	assert.Equal(t, "41", actionErr.Lexeme)
}

func TestPatternBuilderPanics(t *testing.T) {
	tests := map[string]func(){
		"empty literal":     func() { newP(nil).Literal("") },
		"empty except list": func() { newP(nil).AllExcept() },
		"empty alter":       func() { newP(nil).Alter() },
		"empty alter find":  func() { newP(nil).Alter(AlterText{"", "x"}) },
		"empty any of":      func() { newP(nil).AnyOf() },
		"nil sub pattern":   func() { newP(nil).One(nil) },
		"reversed char in":  func() { newP(nil).CharIn('z', 'a') },
		"reversed ranges":   func() { newP(nil).Ranges(CharRange{'z', 'a'}) },
		"reversed repeat":   func() { newP(nil).Between(3, 2, newP(nil).All()) },
		"scan without steps": func() {
			_, _ = newP(nil).Literal("a").Clear().Scan("a", empty{})
		},
	}
	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Panics(t, fn)
		})
	}
}
