package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// truncate shortens s to max display cells with an ellipsis
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	return ansi.Truncate(s, max, "…")
}

// cutLines keeps display columns [left, left+width) of every line
func cutLines(block string, left, width int) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		lines[i] = ansi.Cut(line, left, left+width)
	}
	return strings.Join(lines, "\n")
}

// clipLines drops everything after the first n lines
func clipLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}

// ceilDiv divides rounding up; b must be positive
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
