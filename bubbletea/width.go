package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// tabWidth is the standard terminal tab stop interval.
const tabWidth = 8

// ellipsis marks text removed by truncation.
const ellipsis = "…"

// DisplayWidth calculates the display width of a string, expanding tabs to
// the next 8-column boundary. lipgloss.Width counts a tab as zero columns.
func DisplayWidth(s string) int {
	col := 0
	for _, r := range s {
		if r == '\t' {
			col = ((col / tabWidth) + 1) * tabWidth
		} else {
			col += lipgloss.Width(string(r))
		}
	}
	return col
}

// ExpandTabs replaces tabs with the spaces needed to reach the next tab stop.
func ExpandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			next := ((col / tabWidth) + 1) * tabWidth
			sb.WriteString(strings.Repeat(" ", next-col))
			col = next
			continue
		}
		sb.WriteRune(r)
		col += lipgloss.Width(string(r))
	}
	return sb.String()
}

// TruncateLeft shortens s to at most width columns by dropping characters
// from the start, which keeps the file name of a long path visible.
func TruncateLeft(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if DisplayWidth(s) <= width {
		return s
	}
	budget := width - lipgloss.Width(ellipsis)
	runes := []rune(s)
	i := len(runes)
	used := 0
	for i > 0 {
		w := lipgloss.Width(string(runes[i-1]))
		if used+w > budget {
			break
		}
		used += w
		i--
	}
	return ellipsis + string(runes[i:])
}
