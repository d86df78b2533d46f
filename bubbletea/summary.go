package bubbletea

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	deadcode "github.com/fwojciec/deadcodehunter"
	dl "github.com/fwojciec/deadcodehunter/lipgloss"
)

// SummaryBar renders one bordered box per category with its document count,
// joined horizontally in tree order. If renderer is nil, a default renderer
// is used.
func SummaryBar(counts map[deadcode.Category]int, theme *dl.Theme, renderer *lipgloss.Renderer) string {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	if theme == nil {
		theme = dl.DefaultTheme()
	}

	boxStyle := renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	parts := make([]string, 0, len(deadcode.Categories)*2-1)
	for i, c := range deadcode.Categories {
		if i > 0 {
			parts = append(parts, " ")
		}
		deco := deadcode.Decorate(deadcode.HeaderNode(c))
		glyph, iconStyle := theme.DecorationStyle(deco, renderer)
		label := fmt.Sprintf("%s %s %d", iconStyle.Render(glyph), c.Label(), counts[c])
		parts = append(parts, boxStyle.BorderForeground(theme.Color(deco.Color)).Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}
