package rulekit

import (
	"strings"
)

type FormatFunc[T any] func(input string, token T) string

// treePrinter writes indented trees using box drawing connectors
type treePrinter[T any] struct {
	padStr []string
	output strings.Builder
	format FormatFunc[T]
}

func newTreePrinter[T any](format FormatFunc[T]) *treePrinter[T] {
	return &treePrinter[T]{format: format}
}

func (tp *treePrinter[T]) indent(s string) {
	tp.padStr = append(tp.padStr, s)
}

func (tp *treePrinter[T]) unindent() {
	tp.padStr = tp.padStr[:len(tp.padStr)-1]
}

func (tp *treePrinter[T]) padding() {
	for _, item := range tp.padStr {
		tp.write(item)
	}
}

func (tp *treePrinter[T]) write(s string) {
	tp.output.WriteString(s)
}

func (tp *treePrinter[T]) pwrite(s string) {
	tp.padding()
	tp.write(s)
}

// children prints n child nodes below the current line, calling fn
// with the index of each one
func (tp *treePrinter[T]) children(n int, fn func(i int)) {
	for i := 0; i < n; i++ {
		tp.write("\n")
		if i == n-1 {
			tp.pwrite("└── ")
			tp.indent("    ")
		} else {
			tp.pwrite("├── ")
			tp.indent("│   ")
		}
		fn(i)
		tp.unindent()
	}
}

func (tp *treePrinter[T]) String() string {
	return tp.output.String()
}

// PrettyTree prints any tree with the connectors used by PrettyString.
// label renders a single node and children lists what goes below it.
func PrettyTree[N any](root N, label func(N) string, children func(N) []N) string {
	tp := newTreePrinter[struct{}](nil)
	var walk func(n N)
	walk = func(n N) {
		tp.write(label(n))
		kids := children(n)
		tp.children(len(kids), func(i int) { walk(kids[i]) })
	}
	walk(root)
	return tp.String()
}

var literalSanitizer = strings.NewReplacer(
	`"`, `\"`,
	`\`, `\\`,
	string('\n'), `\n`,
	string('\r'), `\r`,
	string('\t'), `\t`,
)

func escapeLiteral(s string) string {
	return literalSanitizer.Replace(s)
}
