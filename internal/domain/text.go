package domain

import "strings"

// Ellipsis is appended to truncated display strings.
const Ellipsis = "…"

// Truncate shortens s to at most n runes, appending Ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + Ellipsis
}

// CollapseWhitespace replaces runs of whitespace with single spaces and trims.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
