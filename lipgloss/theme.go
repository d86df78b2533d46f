// Package lipgloss resolves the renderer-neutral decorations of the tree
// into terminal styles.
package lipgloss

import (
	"github.com/charmbracelet/lipgloss"
	deadcode "github.com/fwojciec/deadcodehunter"
)

// Theme maps icon names and theme colour tokens to glyphs and colours.
type Theme struct {
	icons   map[string]string
	colors  map[string]string
	palette deadcode.Palette

	// Selection is the background of the row under the cursor.
	Selection string
	// Muted is used for secondary text such as counts and help.
	Muted string
}

// DefaultTheme returns a dark theme loosely based on One Dark.
func DefaultTheme() *Theme {
	return &Theme{
		icons: map[string]string{
			deadcode.IconError:   "✖",
			deadcode.IconWarning: "▲",
			deadcode.IconTrash:   "⌫",
		},
		colors: map[string]string{
			deadcode.ColorErrorForeground:   "#e06c75",
			deadcode.ColorWarningForeground: "#e5c07b",
			deadcode.ColorDeadCode:          "#c678dd",
		},
		palette: deadcode.Palette{
			Keyword:  "#c678dd",
			Comment:  "#5c6370",
			String:   "#98c379",
			Number:   "#d19a66",
			Operator: "#56b6c2",
			Builtin:  "#e5c07b",
			Function: "#61afef",
			Name:     "#abb2bf",
		},
		Selection: "#3e4451",
		Muted:     "#5c6370",
	}
}

// TestTheme returns a theme with distinct, easily recognised values.
func TestTheme() *Theme {
	return &Theme{
		icons: map[string]string{
			deadcode.IconError:   "E",
			deadcode.IconWarning: "W",
			deadcode.IconTrash:   "X",
		},
		colors: map[string]string{
			deadcode.ColorErrorForeground:   "#ff0000",
			deadcode.ColorWarningForeground: "#ffff00",
			deadcode.ColorDeadCode:          "#ff00ff",
		},
		palette: deadcode.Palette{
			Keyword:  "#000001",
			Comment:  "#000002",
			String:   "#000003",
			Number:   "#000004",
			Operator: "#000005",
			Builtin:  "#000006",
			Function: "#000007",
			Name:     "#000008",
		},
		Selection: "#111111",
		Muted:     "#222222",
	}
}

// Palette returns the syntax colours of the theme.
func (t *Theme) Palette() deadcode.Palette {
	return t.palette
}

// Icon returns the glyph for an icon name, or a space if unknown.
func (t *Theme) Icon(name string) string {
	if g, ok := t.icons[name]; ok {
		return g
	}
	return " "
}

// Color returns the colour for a theme token. Empty tokens and unknown
// tokens resolve to no colour.
func (t *Theme) Color(token string) lipgloss.TerminalColor {
	if c, ok := t.colors[token]; ok {
		return lipgloss.Color(c)
	}
	return lipgloss.NoColor{}
}

// Hex returns c as a terminal colour, or no colour if c is empty.
func Hex(c string) lipgloss.TerminalColor {
	if c == "" {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(c)
}

// DecorationStyle returns the icon glyph and its style for d.
func (t *Theme) DecorationStyle(d deadcode.Decoration, r *lipgloss.Renderer) (string, lipgloss.Style) {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return t.Icon(d.Icon), r.NewStyle().Foreground(t.Color(d.Color))
}

// TokenStyle converts a token style to a lipgloss style.
func TokenStyle(s deadcode.Style, r *lipgloss.Renderer) lipgloss.Style {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	st := r.NewStyle().Bold(s.Bold).Italic(s.Italic)
	if s.Foreground != "" {
		st = st.Foreground(lipgloss.Color(s.Foreground))
	}
	return st
}
