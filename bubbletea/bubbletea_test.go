package bubbletea_test

import (
	"github.com/charmbracelet/lipgloss"
	deadcode "github.com/fwojciec/deadcodehunter"
	"github.com/fwojciec/deadcodehunter/mock"
	"github.com/muesli/termenv"
)

// asciiRenderer creates a lipgloss renderer without colours, so rendered
// output can be matched as plain text.
func asciiRenderer() *lipgloss.Renderer {
	return lipgloss.NewRenderer(nil, termenv.WithProfile(termenv.Ascii))
}

const (
	uriMain  deadcode.URI = "file:///work/main.go"
	uriUtil  deadcode.URI = "file:///work/util.go"
	uriClean deadcode.URI = "file:///work/clean.go"
)

// fixture returns a workspace where main.go has an unused variable error and
// util.go has a warning.
func fixture() *mock.Workspace {
	return mock.StaticWorkspace(
		[]deadcode.URI{uriMain, uriUtil, uriClean},
		map[deadcode.URI][]deadcode.Diagnostic{
			uriMain: {
				{
					Severity: deadcode.SeverityError,
					Message:  "declared and not used: x",
					Range:    deadcode.Range{Start: deadcode.Position{Line: 0, Character: 0}},
				},
				{
					Severity: deadcode.SeverityHint,
					Message:  "x is declared but never used",
					Range:    deadcode.Range{Start: deadcode.Position{Line: 2, Character: 1}},
					Source:   "compiler",
				},
			},
			uriUtil: {
				{Severity: deadcode.SeverityWarning, Message: "unreachable code"},
			},
		},
	)
}
