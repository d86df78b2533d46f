package bubbletea

import (
	"fmt"
	"strings"

	deadcode "github.com/fwojciec/deadcodehunter"
	dl "github.com/fwojciec/deadcodehunter/lipgloss"
)

// maxPreviewItems caps the diagnostics listed under the tree.
const maxPreviewItems = 5

// View renders the summary bar, the tree, the preview of the selected
// document and the help line.
func (m *Model) View() string {
	var sections []string
	sections = append(sections, SummaryBar(m.provider.Counts(), m.theme, m.renderer))

	preview := m.previewLines()
	helpView := m.help.View(m.keys)
	status := ""
	if m.status != "" {
		status = m.renderer.NewStyle().Foreground(m.theme.Color(deadcode.ColorErrorForeground)).Render(m.status)
	}

	// Rows left for the tree after the summary box (3 lines), preview,
	// status and help.
	reserved := 3 + len(preview) + strings.Count(helpView, "\n") + 1
	if status != "" {
		reserved++
	}
	sections = append(sections, m.treeLines(max(m.height-reserved, 1))...)
	sections = append(sections, preview...)
	if status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, helpView)
	return strings.Join(sections, "\n")
}

// treeLines renders at most limit rows, scrolled so the cursor is visible.
func (m *Model) treeLines(limit int) []string {
	start := 0
	if m.cursor >= limit {
		start = m.cursor - limit + 1
	}
	end := min(start+limit, len(m.rows))

	counts := m.provider.Counts()
	selStyle := m.renderer.NewStyle().Background(dl.Hex(m.theme.Selection)).Bold(true)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := m.renderRow(m.rows[i], counts)
		if i == m.cursor {
			line = selStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m *Model) renderRow(r row, counts map[deadcode.Category]int) string {
	glyph, iconStyle := m.theme.DecorationStyle(deadcode.Decorate(r.node), m.renderer)
	indent := strings.Repeat("  ", r.depth)

	switch r.node.Kind {
	case deadcode.NodeHeader:
		arrow := "▾"
		if m.collapsed[r.node.Category] || !r.node.Expanded {
			arrow = "▸"
		}
		return fmt.Sprintf("%s%s %s %s (%d)", indent, arrow, iconStyle.Render(glyph), r.node.Label, counts[r.node.Category])
	case deadcode.NodeLeaf:
		prefixWidth := DisplayWidth(indent) + 4
		label := TruncateLeft(m.displayPath(r.node.Label), m.width-prefixWidth)
		return fmt.Sprintf("%s  %s %s", indent, iconStyle.Render(glyph), label)
	default:
		return fmt.Sprintf("%s  %s %s", indent, iconStyle.Render(glyph), r.node.Label)
	}
}

// previewLines lists the diagnostics that placed the selected leaf in its
// category, each followed by its source line when the text is known.
func (m *Model) previewLines() []string {
	n, ok := m.Selected()
	if !ok || n.Kind != deadcode.NodeLeaf {
		return nil
	}
	diags := m.matching(n)
	if len(diags) == 0 {
		return nil
	}

	muted := m.renderer.NewStyle().Foreground(dl.Hex(m.theme.Muted))
	var source []string
	if m.texts != nil {
		if text, ok := m.texts.Text(n.URI); ok {
			source = strings.Split(text, "\n")
		}
	}
	language := ""
	if m.detector != nil {
		language = m.detector.DetectFromPath(n.URI.Path())
	}

	lines := []string{muted.Render(strings.Repeat("─", max(m.width, 1)))}
	for i, d := range diags {
		if i == maxPreviewItems {
			lines = append(lines, muted.Render(fmt.Sprintf("… %d more", len(diags)-i)))
			break
		}
		loc := fmt.Sprintf("%d:%d", d.Range.Start.Line+1, d.Range.Start.Character+1)
		msg := firstLineOf(d.Message)
		if d.Source != "" {
			msg = fmt.Sprintf("%s [%s]", msg, d.Source)
		}
		lines = append(lines, fmt.Sprintf("%s %s", muted.Render(loc), msg))
		if line := d.Range.Start.Line; line >= 0 && line < len(source) {
			lines = append(lines, "    "+m.highlight(language, ExpandTabs(strings.TrimRight(source[line], "\r"))))
		}
	}
	return lines
}

func (m *Model) highlight(language, src string) string {
	if m.tokenizer == nil || language == "" {
		return src
	}
	tokens := m.tokenizer.Tokenize(language, src)
	if tokens == nil {
		return src
	}
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(dl.TokenStyle(tok.Style, m.renderer).Render(tok.Text))
	}
	return sb.String()
}

func firstLineOf(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
