package lipgloss_test

import (
	"testing"

	lg "github.com/charmbracelet/lipgloss"
	deadcode "github.com/fwojciec/deadcodehunter"
	"github.com/fwojciec/deadcodehunter/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestTheme_DecorationStyle(t *testing.T) {
	t.Parallel()

	theme := lipgloss.TestTheme()
	r := lg.NewRenderer(nil, termenv.WithProfile(termenv.TrueColor))

	tests := []struct {
		name      string
		node      deadcode.Node
		wantGlyph string
		wantColor lg.TerminalColor
	}{
		{
			name:      "error",
			node:      deadcode.HeaderNode(deadcode.CategoryError),
			wantGlyph: "E",
			wantColor: lg.Color("#ff0000"),
		},
		{
			name:      "dead code",
			node:      deadcode.LeafNode(deadcode.CategoryDeadCode, "file:///a.ts"),
			wantGlyph: "W",
			wantColor: lg.Color("#ff00ff"),
		},
		{
			name:      "clear action has no colour",
			node:      deadcode.ClearNode(),
			wantGlyph: "X",
			wantColor: lg.NoColor{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			glyph, style := theme.DecorationStyle(deadcode.Decorate(tt.node), r)
			assert.Equal(t, tt.wantGlyph, glyph)
			assert.Equal(t, tt.wantColor, style.GetForeground())
		})
	}
}

func TestTheme_Icon_Unknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, " ", lipgloss.DefaultTheme().Icon("nope"))
}

func TestTokenStyle(t *testing.T) {
	t.Parallel()

	r := lg.NewRenderer(nil, termenv.WithProfile(termenv.TrueColor))

	st := lipgloss.TokenStyle(deadcode.Style{Foreground: "#123456", Bold: true}, r)
	assert.Equal(t, lg.Color("#123456"), st.GetForeground())
	assert.True(t, st.GetBold())

	plain := lipgloss.TokenStyle(deadcode.Style{}, r)
	assert.Equal(t, lg.NoColor{}, plain.GetForeground())
}
