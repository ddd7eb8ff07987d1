package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/rulekit/rulekit"
)

const tabWidth = 8

// errReported is returned by commands that already printed their
// failure
var errReported = errors.New("failure already reported")

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	lineStyle    = color.New(color.FgBlue, color.Bold)
	posStyle     = color.New(color.FgCyan, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
)

// failure extracts where a scan stopped and why, along with the rules
// being scanned at that point.  ok is false for errors that aren't
// tied to a position of the input.
func failure(err error) (offset int, message, trail string, ok bool) {
	var (
		scanErr   *rulekit.ScanError
		thrown    rulekit.ThrownError
		actionErr *rulekit.ActionError
	)
	switch {
	case errors.As(err, &scanErr):
		var msgs, paths []string
		for _, e := range scanErr.Errors {
			msgs = append(msgs, e.Message)
			if p := e.Path(); p != "" && !slices.Contains(paths, p) {
				paths = append(paths, p)
			}
		}
		return scanErr.Offset(), strings.Join(msgs, " or "), strings.Join(paths, ", "), true
	case errors.As(err, &thrown):
		return thrown.Offset, thrown.Message, "", true
	case errors.As(err, &actionErr):
		return actionErr.Offset, actionErr.Err.Error(), "", true
	}
	return 0, "", "", false
}

// formatScanError shows the line of input where err happened with a
// caret under the offending character
func formatScanError(input string, err error) string {
	offset, message, trail, ok := failure(err)
	if !ok {
		return errorStyle.Sprint("error: ") + err.Error() + "\n"
	}

	line, column, text := locate(input, offset)
	lineNumber := fmt.Sprintf("%d", line)
	padding := strings.Repeat(" ", len(lineNumber))

	var sb strings.Builder
	sb.WriteString(errorStyle.Sprint("error: ") + message + "\n")
	sb.WriteString(lineStyle.Sprint(" --> ") + posStyle.Sprintf("%d:%d", line, column) + "\n")
	sb.WriteString(lineStyle.Sprintf("%s |\n", padding))
	sb.WriteString(lineStyle.Sprintf("%s | ", lineNumber))
	sb.WriteString(expandTabs(text) + "\n")
	sb.WriteString(lineStyle.Sprintf("%s | ", padding))
	sb.WriteString(strings.Repeat(" ", visualColumn(text, column)))
	sb.WriteString(messageStyle.Sprintf("^ %s\n", message))
	if trail != "" {
		sb.WriteString(lineStyle.Sprintf("%s = ", padding))
		sb.WriteString("in " + trail + "\n")
	}
	return sb.String()
}

// locate finds the line and column, both starting at 1, of a rune
// offset, along with the text of that line
func locate(input string, offset int) (line, column int, text string) {
	lines := strings.Split(input, "\n")
	line = 1
	for _, l := range lines {
		n := len([]rune(l))
		if offset <= n {
			return line, offset + 1, l
		}
		offset -= n + 1
		line++
	}
	last := lines[len(lines)-1]
	return len(lines), len([]rune(last)) + 1, last
}

func expandTabs(line string) string {
	var sb strings.Builder
	col := 0
	for _, ch := range line {
		if ch == '\t' {
			n := tabWidth - (col % tabWidth)
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(ch)
		col++
	}
	return sb.String()
}

func visualColumn(line string, column int) int {
	col := 0
	for i, ch := range []rune(line) {
		if i+1 == column {
			break
		}
		if ch == '\t' {
			col += tabWidth - (col % tabWidth)
		} else {
			col++
		}
	}
	return col
}
